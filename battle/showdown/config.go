// Package showdown plays battles on a live Pokemon Showdown server over its
// websocket protocol.
package showdown

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultAuthURL is the login server used for every configuration.
const DefaultAuthURL = "https://play.pokemonshowdown.com/action.php?"

// ServerConfig locates the websocket endpoint and the login server.
type ServerConfig struct {
	WebsocketURL string
	AuthURL      string
}

// PublicServer is the official Showdown server.
var PublicServer = ServerConfig{
	WebsocketURL: "wss://sim3.psim.us/showdown/websocket",
	AuthURL:      DefaultAuthURL,
}

// LocalServer is a server started with `node pokemon-showdown start --no-security`.
var LocalServer = ServerConfig{
	WebsocketURL: "ws://localhost:8000/showdown/websocket",
	AuthURL:      DefaultAuthURL,
}

// Account holds login credentials. An empty password logs in without an
// assertion, which only unsecured servers accept.
type Account struct {
	Username string
	Password string
}

// ServerConfigForURL maps a user-supplied server URL to a ServerConfig.
// Hosts under psim.us or pokemonshowdown.com map to PublicServer; anything
// else keeps its host and port and gets the standard websocket path.
func ServerConfigForURL(raw string) (ServerConfig, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ServerConfig{}, fmt.Errorf("empty server url")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("parsing server url %q: %w", raw, err)
	}
	if u.Host == "" {
		return ServerConfig{}, fmt.Errorf("server url %q has no host", raw)
	}
	host := strings.ToLower(u.Hostname())
	if host == "psim.us" || strings.HasSuffix(host, ".psim.us") ||
		host == "pokemonshowdown.com" || strings.HasSuffix(host, ".pokemonshowdown.com") {
		return PublicServer, nil
	}

	scheme := "ws"
	switch strings.ToLower(u.Scheme) {
	case "https", "wss":
		scheme = "wss"
	case "http", "ws":
	default:
		return ServerConfig{}, fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	return ServerConfig{
		WebsocketURL: scheme + "://" + u.Host + "/showdown/websocket",
		AuthURL:      DefaultAuthURL,
	}, nil
}

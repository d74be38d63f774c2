package showdown

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vgc-imitation/collector/battle"
)

const loginTimeout = 30 * time.Second

// Conn is a logged-in websocket connection. Writes are serialized; reads
// belong to a single goroutine.
type Conn struct {
	ws       *websocket.Conn
	username string

	writeMu sync.Mutex
	closeMu sync.Once
}

// Dial connects to the server and logs in as acct.Username.
func Dial(ctx context.Context, cfg ServerConfig, acct Account) (*Conn, error) {
	if acct.Username == "" {
		return nil, fmt.Errorf("dialing %s: empty username", cfg.WebsocketURL)
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.WebsocketURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", cfg.WebsocketURL, err)
	}
	c := &Conn{ws: ws, username: acct.Username}

	loginCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()
	stop := context.AfterFunc(loginCtx, func() {
		_ = ws.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := c.login(loginCtx, cfg, acct); err != nil {
		c.Close()
		if ctxErr := loginCtx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("logging in as %s: %w", acct.Username, ctxErr)
		}
		return nil, fmt.Errorf("logging in as %s: %w", acct.Username, err)
	}
	stop()
	_ = ws.SetReadDeadline(time.Time{})
	logrus.Debugf("showdown: logged in as %s", acct.Username)
	return c, nil
}

func (c *Conn) login(ctx context.Context, cfg ServerConfig, acct Account) error {
	sentName := false
	for {
		frame, err := c.Read()
		if err != nil {
			return err
		}
		for _, line := range frame.Lines {
			switch line.Kind {
			case "challstr":
				if sentName {
					continue
				}
				challstr := strings.Join(line.Args, "|")
				assertion := ""
				if acct.Password != "" {
					assertion, err = fetchAssertion(ctx, cfg.AuthURL, acct, challstr)
					if err != nil {
						return err
					}
				}
				if err := c.Send("", fmt.Sprintf("/trn %s,0,%s", acct.Username, assertion)); err != nil {
					return err
				}
				sentName = true
			case "updateuser":
				if battle.ToID(line.Arg(0)) == battle.ToID(acct.Username) {
					return nil
				}
			case "popup":
				if sentName {
					return fmt.Errorf("server refused login: %s", strings.Join(line.Args, "|"))
				}
			}
		}
	}
}

// fetchAssertion exchanges credentials for a login assertion.
func fetchAssertion(ctx context.Context, authURL string, acct Account, challstr string) (string, error) {
	form := url.Values{
		"act":      {"login"},
		"name":     {acct.Username},
		"pass":     {acct.Password},
		"challstr": {challstr},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login server returned %d", resp.StatusCode)
	}
	// The body is "]" followed by JSON.
	var result struct {
		ActionSuccess bool   `json:"actionsuccess"`
		Assertion     string `json:"assertion"`
	}
	if err := json.Unmarshal([]byte(strings.TrimPrefix(string(body), "]")), &result); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if !result.ActionSuccess || result.Assertion == "" || strings.HasPrefix(result.Assertion, ";;") {
		return "", fmt.Errorf("login rejected for %s", acct.Username)
	}
	return result.Assertion, nil
}

// Username is the logged-in name.
func (c *Conn) Username() string { return c.username }

// Send writes "room|message".
func (c *Conn) Send(room, message string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(room+"|"+message)); err != nil {
		return fmt.Errorf("sending %q: %w", message, err)
	}
	return nil
}

// Read blocks for the next websocket message.
func (c *Conn) Read() (Frame, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return Frame{}, err
	}
	return ParseFrame(string(data)), nil
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() {
	c.closeMu.Do(func() {
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		if err := c.ws.Close(); err != nil {
			logrus.Debugf("showdown: closing %s: %v", c.username, err)
		}
	})
}

package showdown

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vgc-imitation/collector/battle"
)

const testFormat = "gen9doublesou"

// turnOneRequest is what p1 receives before turn 1 of every fake battle.
const turnOneRequest = `{"active":[` +
	`{"moves":[{"move":"Fake Out","id":"fakeout","pp":10,"maxpp":10,"target":"normal","disabled":false},` +
	`{"move":"Flare Blitz","id":"flareblitz","pp":15,"maxpp":15,"target":"normal","disabled":false}],"canTerastallize":"Ghost"},` +
	`{"moves":[{"move":"Spore","id":"spore","pp":15,"maxpp":15,"target":"normal","disabled":false},` +
	`{"move":"Rage Powder","id":"ragepowder","pp":20,"maxpp":20,"target":"self","disabled":false}],"canTerastallize":"Water"}],` +
	`"side":{"name":"%s","id":"p1","pokemon":[` +
	`{"ident":"p1: Incineroar","details":"Incineroar, L50, M","condition":"202/202","active":true,"moves":["fakeout","flareblitz"],"item":"safetygoggles","ability":"intimidate","teraType":"Ghost"},` +
	`{"ident":"p1: Amoonguss","details":"Amoonguss, L50, F","condition":"221/221","active":true,"moves":["spore","ragepowder"],"teraType":"Water"},` +
	`{"ident":"p1: Rillaboom","details":"Rillaboom, L50, M","condition":"175/175","active":false,"moves":["fakeout","woodhammer"],"teraType":"Fire"}]},` +
	`"rqid":2}`

const previewRequest = `{"teamPreview":true,"side":{"name":"%s","id":"%s","pokemon":[` +
	`{"ident":"%s: Incineroar","details":"Incineroar, L50, M","condition":"202/202","active":false,"moves":["fakeout"]}]},"rqid":1}`

// fakeServer speaks just enough of the Showdown protocol to run one battle
// at a time: p1 gets one move request and wins as soon as it chooses.
type fakeServer struct {
	t   *testing.T
	srv *httptest.Server

	// Behaviour switches, set before the first connection.
	rejectTeams   bool
	invalidChoice bool
	stall         bool

	mu       sync.Mutex
	conns    map[string]*fakeConn
	logins   map[string]int
	received []string
	battles  int
	tag      string
	p1, p2   string
	rejected bool
}

type fakeConn struct {
	mu   sync.Mutex
	ws   *websocket.Conn
	name string
}

func (c *fakeConn) send(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.WriteMessage(websocket.TextMessage, []byte(msg))
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{t: t, conns: map[string]*fakeConn{}, logins: map[string]int{}}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fs.serve(&fakeConn{ws: ws})
	}))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) config() ServerConfig {
	return ServerConfig{
		WebsocketURL: "ws" + strings.TrimPrefix(fs.srv.URL, "http") + "/showdown/websocket",
		AuthURL:      DefaultAuthURL,
	}
}

func (fs *fakeServer) serve(c *fakeConn) {
	defer c.ws.Close()
	c.send("|challstr|4|0123abcd")
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		room, text, _ := strings.Cut(string(data), "|")
		fs.mu.Lock()
		fs.received = append(fs.received, c.name+">"+string(data))
		fs.mu.Unlock()

		if strings.HasPrefix(text, "/trn ") {
			name, _, _ := strings.Cut(strings.TrimPrefix(text, "/trn "), ",")
			c.name = name
			fs.mu.Lock()
			fs.conns[battle.ToID(name)] = c
			fs.logins[battle.ToID(name)]++
			fs.mu.Unlock()
			c.send("|updateuser| Guest 1|0|1|{}")
			c.send(fmt.Sprintf("|updateuser| %s|1|1|{}", name))
			continue
		}
		fs.handle(c, room, text)
	}
}

func (fs *fakeServer) conn(name string) *fakeConn {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.conns[battle.ToID(name)]
}

func (fs *fakeServer) handle(c *fakeConn, room, text string) {
	fs.mu.Lock()
	p1, p2 := fs.p1, fs.p2
	fs.mu.Unlock()
	isP1 := battle.ToID(c.name) == battle.ToID(p1)

	switch {
	case strings.HasPrefix(text, "/challenge "):
		target, format, _ := strings.Cut(strings.TrimPrefix(text, "/challenge "), ", ")
		if fs.rejectTeams {
			c.send("|popup|Your team was rejected for the following reasons:||||- Rillaboom is not allowed.")
			return
		}
		if opp := fs.conn(target); opp != nil {
			opp.send(fmt.Sprintf(`|updatechallenges|{"challengesFrom":{"%s":"%s"},"challengeTo":null}`, battle.ToID(c.name), format))
		}
	case strings.HasPrefix(text, "/accept "):
		fs.startBattle(strings.TrimPrefix(text, "/accept "), c)
	case room != "" && strings.HasPrefix(text, "/team"):
		if !isP1 {
			return
		}
		c.send(fmt.Sprintf(">%s\n|request|"+turnOneRequest, room, p1))
		c.send(fmt.Sprintf(">%s\n|\n|start\n"+
			"|switch|p1a: Incineroar|Incineroar, L50, M|202/202\n"+
			"|switch|p1b: Amoonguss|Amoonguss, L50, F|221/221\n"+
			"|switch|p2a: Tornadus|Tornadus, L50, M|100/100\n"+
			"|switch|p2b: Urshifu|Urshifu-Rapid-Strike, L50, M|100/100\n"+
			"|turn|1", room))
	case room != "" && strings.HasPrefix(text, "/choose"):
		if !isP1 || fs.stall {
			return
		}
		fs.mu.Lock()
		invalid := fs.invalidChoice && !fs.rejected
		fs.rejected = fs.rejected || invalid
		fs.mu.Unlock()
		if invalid {
			c.send(fmt.Sprintf(">%s\n|error|[Invalid choice] Can't move: Incineroar can't use that move", room))
			return
		}
		fs.broadcast(room, []string{p1, p2}, fmt.Sprintf("|\n|move|p2a: Tornadus|Bleakwind Storm|p1a: Incineroar\n|-damage|p1a: Incineroar|150/202\n|win|%s", p1))
	case room != "" && text == "/forfeit":
		winner := p1
		if isP1 {
			winner = p2
		}
		fs.broadcast(room, []string{p1, p2}, "|\n|-message|"+c.name+" forfeited.\n|win|"+winner)
	}
}

func (fs *fakeServer) startBattle(challenger string, acceptor *fakeConn) {
	fs.mu.Lock()
	fs.battles++
	fs.tag = fmt.Sprintf("battle-%s-%d", testFormat, fs.battles)
	fs.p1, fs.p2 = challenger, acceptor.name
	fs.rejected = false
	tag, p1name, p2name := fs.tag, fs.p1, fs.p2
	fs.mu.Unlock()

	p1 := fs.conn(challenger)
	if p1 == nil {
		fs.t.Errorf("accept from unknown challenger %q", challenger)
		return
	}
	header := fmt.Sprintf(">%s\n|init|battle\n|title|%s vs. %s\n|player|p1|%s|1|\n|player|p2|%s|2|\n"+
		"|gametype|doubles\n|poke|p1|Incineroar, L50, M|\n|poke|p2|Tornadus, L50, M|\n|poke|p2|Urshifu-Rapid-Strike, L50, M|\n|teampreview",
		tag, p1name, p2name, p1name, p2name)
	p1.send(header)
	acceptor.send(header)
	p1.send(fmt.Sprintf(">%s\n|request|"+previewRequest, tag, p1name, "p1", "p1"))
	acceptor.send(fmt.Sprintf(">%s\n|request|"+previewRequest, tag, p2name, "p2", "p2"))
}

func (fs *fakeServer) broadcast(room string, names []string, body string) {
	for _, name := range names {
		if c := fs.conn(name); c != nil {
			c.send(">" + room + "\n" + body)
		}
	}
}

// messages returns everything clients sent so far, as "user>room|text".
func (fs *fakeServer) messages() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]string(nil), fs.received...)
}

// waitFor polls until some received message contains substr.
func (fs *fakeServer) waitFor(substr string) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, m := range fs.messages() {
			if strings.Contains(m, substr) {
				return true
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

type fixedTeam string

func (f fixedTeam) NextTeam() string { return string(f) }

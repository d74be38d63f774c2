package showdown

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vgc-imitation/collector/battle"
	"github.com/vgc-imitation/collector/battle/dex"
)

// teamPreviewChoice keeps the submitted team order.
const teamPreviewChoice = "/team 123456"

const eventBuffer = 64

type eventKind int

const (
	eventFinished eventKind = iota
	eventRejected
	eventFailed
)

// event reports something an Arena waits for. Tag is empty when the server
// did not say which battle the event belongs to.
type event struct {
	kind    eventKind
	tag     string
	outcome battle.Outcome
	err     error
}

// Player is one logged-in account driven by an Agent. It accepts or issues
// challenges, tracks its battle rooms and answers every decision request.
type Player struct {
	conn   *Conn
	agent  battle.Agent
	team   battle.TeamSource
	format string
	dex    *dex.Dex

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	events chan event

	mu         sync.Mutex
	rooms      map[string]*room
	joined     map[string]bool
	acceptFrom string
}

// NewPlayer logs in as acct and starts the read loop.
func NewPlayer(ctx context.Context, cfg ServerConfig, acct Account, c battle.Contestant, format string) (*Player, error) {
	conn, err := Dial(ctx, cfg, acct)
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		conn:   conn,
		agent:  c.Agent,
		team:   c.Team,
		format: format,
		dex:    dex.Default(),
		ctx:    pctx,
		cancel: cancel,
		done:   make(chan struct{}),
		events: make(chan event, eventBuffer),
		rooms:  make(map[string]*room),
		joined: make(map[string]bool),
	}
	go p.run()
	return p, nil
}

// Username is the logged-in name.
func (p *Player) Username() string { return p.conn.Username() }

// AcceptFrom makes the player accept the next challenge sent by user.
func (p *Player) AcceptFrom(user string) {
	p.mu.Lock()
	p.acceptFrom = battle.ToID(user)
	p.mu.Unlock()
}

// Challenge submits the next team and challenges opponent in the player's format.
func (p *Player) Challenge(opponent string) error {
	if err := p.conn.Send("", "/utm "+p.team.NextTeam()); err != nil {
		return err
	}
	return p.conn.Send("", fmt.Sprintf("/challenge %s, %s", opponent, p.format))
}

// CancelChallenge withdraws a challenge to opponent.
func (p *Player) CancelChallenge(opponent string) error {
	return p.conn.Send("", "/cancelchallenge "+opponent)
}

// ForfeitAgainst forfeits every unfinished battle against opponent.
func (p *Player) ForfeitAgainst(opponent string) {
	p.mu.Lock()
	var tags []string
	for tag, r := range p.rooms {
		if battle.ToID(r.battle.OpponentName) == battle.ToID(opponent) && !r.battle.Finished {
			tags = append(tags, tag)
		}
	}
	p.mu.Unlock()
	for _, tag := range tags {
		if err := p.conn.Send(tag, "/forfeit"); err != nil {
			logrus.Warnf("showdown: forfeiting %s: %v", tag, err)
		}
	}
}

// Joined reports whether the player has ever been in the battle room tag.
func (p *Player) Joined(tag string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.joined[tag]
}

// battleTag returns a battle room the player has joined, or "" when it has
// joined none. Opponent players join at most one.
func (p *Player) battleTag() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	for tag := range p.joined {
		return tag
	}
	return ""
}

// Close disconnects and waits for the read loop to stop.
func (p *Player) Close() {
	p.cancel()
	p.conn.Close()
	<-p.done
}

func (p *Player) run() {
	defer close(p.done)
	for {
		frame, err := p.conn.Read()
		if err != nil {
			if p.ctx.Err() == nil {
				p.emit(event{kind: eventFailed, err: fmt.Errorf("connection of %s: %w", p.Username(), err)})
			}
			return
		}
		p.handleFrame(frame)
	}
}

func (p *Player) emit(ev event) {
	select {
	case p.events <- ev:
	default:
		logrus.Warnf("showdown: %s dropped an event for %q", p.Username(), ev.tag)
	}
}

func (p *Player) handleFrame(f Frame) {
	if strings.HasPrefix(f.Room, "battle-") {
		p.handleBattle(f)
		return
	}
	for _, line := range f.Lines {
		switch line.Kind {
		case "updatechallenges":
			var update struct {
				ChallengesFrom map[string]string `json:"challengesFrom"`
			}
			if err := json.Unmarshal([]byte(line.Arg(0)), &update); err != nil {
				logrus.Debugf("showdown: bad updatechallenges: %v", err)
				continue
			}
			for user := range update.ChallengesFrom {
				p.maybeAccept(user)
			}
		case "pm":
			if strings.HasPrefix(line.Arg(2), "/challenge") {
				p.maybeAccept(line.Arg(0))
			}
		case "popup":
			text := strings.Join(line.Args, "|")
			if strings.Contains(strings.ToLower(text), "rejected") {
				p.emit(event{kind: eventRejected, err: fmt.Errorf("%w: %s", battle.ErrTeamRejected, text)})
			} else {
				logrus.Debugf("showdown: popup for %s: %s", p.Username(), text)
			}
		}
	}
}

func (p *Player) maybeAccept(user string) {
	id := battle.ToID(user)
	p.mu.Lock()
	ok := id != "" && id == p.acceptFrom
	if ok {
		p.acceptFrom = ""
	}
	p.mu.Unlock()
	if !ok {
		return
	}
	if err := p.conn.Send("", "/utm "+p.team.NextTeam()); err != nil {
		p.emit(event{kind: eventFailed, err: err})
		return
	}
	if err := p.conn.Send("", "/accept "+id); err != nil {
		p.emit(event{kind: eventFailed, err: err})
	}
}

func (p *Player) handleBattle(f Frame) {
	p.mu.Lock()
	r, ok := p.rooms[f.Room]
	if !ok && (len(f.Lines) == 0 || f.Lines[0].Kind == "deinit" || f.Lines[0].Kind == "noinit") {
		p.mu.Unlock()
		return
	}
	if !ok {
		r = newRoom(f.Room, p.format, p.Username())
		p.rooms[f.Room] = r
		p.joined[f.Room] = true
	}
	p.mu.Unlock()

	for _, line := range f.Lines {
		switch line.Kind {
		case "request":
			p.handleRequest(r, line)
		case "error":
			p.handleError(r, line)
		default:
			p.mu.Lock()
			r.applyLine(line, p.dex)
			p.mu.Unlock()
			switch {
			case line.Kind == "turn" && r.pending:
				r.pending = false
				p.decide(r)
			case line.Kind == "win" || line.Kind == "tie":
				p.finish(r)
				return
			}
		}
	}
}

func (p *Player) handleRequest(r *room, line Line) {
	payload := strings.Join(line.Args, "|")
	if payload == "" {
		return
	}
	req, err := ParseRequest(payload)
	if err != nil {
		logrus.Warnf("showdown: %s: %v", r.battle.Tag, err)
		return
	}
	p.mu.Lock()
	r.request = req
	req.Apply(r.battle, p.dex)
	p.mu.Unlock()

	switch {
	case req.Wait:
	case req.TeamPreview:
		p.send(r, teamPreviewChoice)
	case req.ForcesSwitch():
		p.decide(r)
	default:
		r.pending = true
	}
}

func (p *Player) handleError(r *room, line Line) {
	text := strings.Join(line.Args, "|")
	if strings.HasPrefix(text, "[Invalid choice]") || strings.HasPrefix(text, "[Unavailable choice]") {
		logrus.Debugf("showdown: %s: %s; falling back to default", r.battle.Tag, text)
		p.send(r, battle.DoubleOrder{First: battle.DefaultOrder(), Second: battle.DefaultOrder()}.Message())
		return
	}
	logrus.Debugf("showdown: %s: %s", r.battle.Tag, text)
}

func (p *Player) decide(r *room) {
	order, err := p.agent.Decide(p.ctx, r.battle)
	if err != nil {
		logrus.Warnf("showdown: %s: agent failed: %v", r.battle.Tag, err)
		p.send(r, "/forfeit")
		p.emit(event{
			kind: eventFailed,
			tag:  r.battle.Tag,
			err:  fmt.Errorf("battle %s: deciding: %w", r.battle.Tag, err),
		})
		return
	}
	p.send(r, order.Message())
}

// send writes a battle command, tagging choices with the request id.
func (p *Player) send(r *room, message string) {
	if strings.HasPrefix(message, "/choose") || strings.HasPrefix(message, "/team") {
		if r.request != nil && r.request.RQID != 0 {
			message += "|" + strconv.Itoa(r.request.RQID)
		}
	}
	if err := p.conn.Send(r.battle.Tag, message); err != nil {
		logrus.Warnf("showdown: %s: %v", r.battle.Tag, err)
	}
}

func (p *Player) finish(r *room) {
	b := r.battle
	p.mu.Lock()
	delete(p.rooms, b.Tag)
	p.mu.Unlock()
	p.emit(event{
		kind: eventFinished,
		tag:  b.Tag,
		outcome: battle.Outcome{
			BattleTag: b.Tag,
			Turns:     b.Turn,
			Winner:    b.Winner,
			Finished:  b.Finished,
			Won:       b.Won,
			Opponent:  b.OpponentName,
		},
	})
	if err := p.conn.Send("", "/leave "+b.Tag); err != nil {
		logrus.Debugf("showdown: leaving %s: %v", b.Tag, err)
	}
}

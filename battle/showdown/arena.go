package showdown

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vgc-imitation/collector/battle"
)

// ArenaConfig configures a live-server Arena.
type ArenaConfig struct {
	Server ServerConfig
	Format string
	// Passwords are optional; unsecured local servers accept any name.
	TeacherPassword  string
	OpponentPassword string
}

// Arena plays battles on a Showdown server. The teacher logs in once and
// stays connected; every opponent gets a fresh connection that is closed
// when its battle ends.
type Arena struct {
	cfg     ArenaConfig
	teacher *Player
}

// NewArena returns an Arena. No connection is made until the first Play.
func NewArena(cfg ArenaConfig) *Arena {
	return &Arena{cfg: cfg}
}

// Play challenges opponent from the teacher account and waits for the
// outcome of the battle the opponent joins.
func (a *Arena) Play(ctx context.Context, teacher, opponent battle.Contestant) (battle.Outcome, error) {
	out := battle.Outcome{Opponent: opponent.Name}
	if battle.ToID(teacher.Name) == battle.ToID(opponent.Name) {
		return out, fmt.Errorf("teacher and opponent share the username %q", teacher.Name)
	}
	if a.teacher == nil {
		p, err := NewPlayer(ctx, a.cfg.Server, Account{Username: teacher.Name, Password: a.cfg.TeacherPassword}, teacher, a.cfg.Format)
		if err != nil {
			return out, fmt.Errorf("connecting teacher: %w", err)
		}
		a.teacher = p
	} else if battle.ToID(a.teacher.Username()) != battle.ToID(teacher.Name) {
		return out, fmt.Errorf("arena is bound to teacher %q, got %q", a.teacher.Username(), teacher.Name)
	}

	opp, err := NewPlayer(ctx, a.cfg.Server, Account{Username: opponent.Name, Password: a.cfg.OpponentPassword}, opponent, a.cfg.Format)
	if err != nil {
		return out, fmt.Errorf("connecting opponent %s: %w", opponent.Name, err)
	}
	defer opp.Close()

	opp.AcceptFrom(teacher.Name)
	if err := a.teacher.Challenge(opponent.Name); err != nil {
		a.dropTeacher()
		return out, fmt.Errorf("challenging %s: %w", opponent.Name, err)
	}

	for {
		select {
		case <-ctx.Done():
			out.BattleTag = opp.battleTag()
			a.abandon(opponent.Name)
			return out, ctx.Err()
		case ev := <-a.teacher.events:
			// Outcomes of abandoned battles can arrive late; only the room the
			// current opponent joined counts.
			if ev.tag != "" && !opp.Joined(ev.tag) {
				logrus.Debugf("showdown: ignoring event from earlier battle %s", ev.tag)
				continue
			}
			switch ev.kind {
			case eventFinished:
				return ev.outcome, nil
			case eventRejected:
				a.abandon(opponent.Name)
				return out, ev.err
			default:
				out.BattleTag = ev.tag
				if ev.tag == "" {
					// The teacher connection itself broke.
					a.dropTeacher()
				} else {
					a.abandon(opponent.Name)
				}
				return out, ev.err
			}
		case ev := <-opp.events:
			if ev.kind == eventFinished {
				continue
			}
			out.BattleTag = opp.battleTag()
			a.abandon(opponent.Name)
			return out, ev.err
		}
	}
}

// abandon forfeits a running battle against opponent and withdraws a
// pending challenge.
func (a *Arena) abandon(opponent string) {
	if a.teacher == nil {
		return
	}
	a.teacher.ForfeitAgainst(opponent)
	if err := a.teacher.CancelChallenge(opponent); err != nil {
		logrus.Debugf("showdown: cancelling challenge to %s: %v", opponent, err)
	}
}

func (a *Arena) dropTeacher() {
	if a.teacher != nil {
		a.teacher.Close()
		a.teacher = nil
	}
}

// Close disconnects the teacher.
func (a *Arena) Close() error {
	a.dropTeacher()
	return nil
}

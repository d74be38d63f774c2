package battle

import (
	"context"
	"errors"
)

// ErrTeamRejected is returned by an Arena when the server refuses a team.
var ErrTeamRejected = errors.New("team rejected by server")

// Agent chooses the orders for both own slots whenever the battle asks for a
// decision. Implementations may keep per-battle state keyed by b.Tag.
type Agent interface {
	Decide(ctx context.Context, b *DoubleBattle) (DoubleOrder, error)
}

// AgentFunc adapts a function to the Agent interface.
type AgentFunc func(ctx context.Context, b *DoubleBattle) (DoubleOrder, error)

func (f AgentFunc) Decide(ctx context.Context, b *DoubleBattle) (DoubleOrder, error) {
	return f(ctx, b)
}

// TeamSource supplies the team text for the next battle.
type TeamSource interface {
	NextTeam() string
}

// Contestant is one side of a battle.
type Contestant struct {
	Name  string
	Agent Agent
	Team  TeamSource
}

// Outcome summarizes a played battle from the teacher side's point of view.
type Outcome struct {
	BattleTag string
	Turns     int
	Winner    string
	Finished  bool
	Won       bool
	Opponent  string
}

// Arena runs one battle between a persistent teacher contestant and a
// per-battle opponent. Play blocks until the battle ends, the context is
// done, or the battle cannot start. Implementations release every
// opponent-side resource before returning.
type Arena interface {
	Play(ctx context.Context, teacher, opponent Contestant) (Outcome, error)
	Close() error
}

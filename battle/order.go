package battle

import (
	"fmt"
	"strings"
)

// OrderKind distinguishes the kinds of per-slot orders.
type OrderKind int

const (
	OrderPass OrderKind = iota
	OrderSwitch
	OrderMove
	OrderDefault
	OrderForfeit
)

// Gimmick is a once-per-battle mechanic attached to a move order. The numeric
// value is the gimmick block of the action index.
type Gimmick int

const (
	GimmickNone Gimmick = iota
	GimmickMega
	GimmickZMove
	GimmickDynamax
	GimmickTerastallize
)

var gimmickKeywords = map[Gimmick]string{
	GimmickMega:         "mega",
	GimmickZMove:        "zmove",
	GimmickDynamax:      "dynamax",
	GimmickTerastallize: "terastallize",
}

// Target positions used by move orders.
const (
	TargetEmpty     = 0
	TargetOpponentA = 1
	TargetOpponentB = 2
	TargetSelfA     = -1
	TargetSelfB     = -2
)

// Order is the instruction for a single slot.
type Order struct {
	Kind    OrderKind
	Pokemon *Pokemon // switch target
	Move    *Move
	Target  int
	Gimmick Gimmick
}

// PassOrder leaves a slot idle.
func PassOrder() Order { return Order{Kind: OrderPass} }

// DefaultOrder lets the server pick.
func DefaultOrder() Order { return Order{Kind: OrderDefault} }

// ForfeitOrder concedes the battle.
func ForfeitOrder() Order { return Order{Kind: OrderForfeit} }

// SwitchOrder switches the slot's active Pokemon out for p.
func SwitchOrder(p *Pokemon) Order { return Order{Kind: OrderSwitch, Pokemon: p} }

// MoveOrder uses m against target with an optional gimmick.
func MoveOrder(m *Move, target int, g Gimmick) Order {
	return Order{Kind: OrderMove, Move: m, Target: target, Gimmick: g}
}

// Choice renders the order as one comma-separated part of a /choose command.
func (o Order) Choice() string {
	switch o.Kind {
	case OrderSwitch:
		if o.Pokemon == nil {
			return "default"
		}
		return "switch " + ToID(o.Pokemon.Species)
	case OrderMove:
		if o.Move == nil {
			return "default"
		}
		parts := []string{"move", o.Move.ID}
		if o.Target != TargetEmpty {
			parts = append(parts, fmt.Sprint(o.Target))
		}
		if kw, ok := gimmickKeywords[o.Gimmick]; ok {
			parts = append(parts, kw)
		}
		return strings.Join(parts, " ")
	case OrderDefault:
		return "default"
	case OrderForfeit:
		return "forfeit"
	default:
		return "pass"
	}
}

func (o Order) String() string {
	return o.Choice()
}

// DoubleOrder pairs the orders for both own slots.
type DoubleOrder struct {
	First  Order
	Second Order
}

// Slot returns the order for the given slot.
func (d DoubleOrder) Slot(slot int) Order {
	if slot == 1 {
		return d.Second
	}
	return d.First
}

// Message renders the full /choose command sent to the server.
func (d DoubleOrder) Message() string {
	if d.First.Kind == OrderForfeit || d.Second.Kind == OrderForfeit {
		return "/forfeit"
	}
	if d.First.Kind == OrderDefault && d.Second.Kind == OrderDefault {
		return "/choose default"
	}
	return "/choose " + d.First.Choice() + ", " + d.Second.Choice()
}

func (d DoubleOrder) String() string {
	return d.Message()
}

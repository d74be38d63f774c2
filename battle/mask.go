package battle

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Mask marks which per-slot action indices are legal. It serializes as an array
// of 0/1 integers.
type Mask []bool

// Allows reports whether action i is inside the mask and legal.
func (m Mask) Allows(i int) bool {
	return i >= 0 && i < len(m) && m[i]
}

// Count returns the number of legal actions.
func (m Mask) Count() int {
	n := 0
	for _, ok := range m {
		if ok {
			n++
		}
	}
	return n
}

// Legal returns the legal indices in ascending order.
func (m Mask) Legal() []int {
	out := make([]int, 0, len(m))
	for i, ok := range m {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

func (m Mask) MarshalJSON() ([]byte, error) {
	bits := make([]int, len(m))
	for i, ok := range m {
		if ok {
			bits[i] = 1
		}
	}
	return json.Marshal(bits)
}

func (m *Mask) UnmarshalJSON(data []byte) error {
	var bits []int
	if err := json.Unmarshal(data, &bits); err != nil {
		return err
	}
	out := make(Mask, len(bits))
	for i, v := range bits {
		switch v {
		case 0:
		case 1:
			out[i] = true
		default:
			return fmt.Errorf("mask entry %d: want 0 or 1, got %d", i, v)
		}
	}
	*m = out
	return nil
}

// LegalityMask probes every index in [0, n) for slot with ActionToOrder in
// validating mode. An index is legal only when the probe returns an order
// without error; probes that fail for any reason, including a panic, are illegal.
func LegalityMask(b *DoubleBattle, slot, n int) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = IsLegal(b, slot, i)
	}
	return m
}

// IsLegal reports whether action is a legal choice for slot right now.
func IsLegal(b *DoubleBattle, slot, action int) (legal bool) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Debugf("probing action %d for slot %d panicked: %v", action, slot, r)
			legal = false
		}
	}()
	_, err := ActionToOrder(b, slot, action, false)
	return err == nil
}

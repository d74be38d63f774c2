// Package policy holds the battle agents: the scripted teachers whose
// decisions are recorded, the random and max-base-power opponents, and the
// Recording decorator that turns any agent into a dataset producer.
package policy

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/vgc-imitation/collector/battle"
)

// Kind names an agent implementation.
type Kind string

const (
	KindHeuristic    Kind = "heuristic"
	KindMaxBasePower Kind = "maxbp"
	KindRandom       Kind = "random"
)

// kindAliases maps every accepted spelling to its Kind.
var kindAliases = map[string]Kind{
	"heuristic":        KindHeuristic,
	"simple":           KindHeuristic,
	"simpleheuristics": KindHeuristic,
	"maxbp":            KindMaxBasePower,
	"maxbasepower":     KindMaxBasePower,
	"random":           KindRandom,
}

// agentNames are the record labels of each kind, as earlier datasets spell them.
var agentNames = map[Kind]string{
	KindHeuristic:    "SimpleHeuristicsPlayer",
	KindMaxBasePower: "MaxBasePowerPlayer",
	KindRandom:       "RandomPlayer",
}

// AgentName returns the label written into dataset records for agents of kind k.
func (k Kind) AgentName() string {
	if n, ok := agentNames[k]; ok {
		return n
	}
	return string(k)
}

// ParseKind resolves a kind name case-insensitively, accepting aliases.
func ParseKind(name string) (Kind, error) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unknown policy %q; valid: %s", name, strings.Join(ValidKindNames(), ", "))
	}
	return k, nil
}

// ParseKinds resolves a comma-separated list of kind names.
func ParseKinds(list string) ([]Kind, error) {
	var kinds []Kind
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// ValidKindNames returns every accepted spelling, sorted.
func ValidKindNames() []string {
	names := make([]string, 0, len(kindAliases))
	for n := range kindAliases {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New creates an agent of the given kind drawing randomness from rng.
// Panics on kinds not produced by ParseKind.
func New(kind Kind, rng *rand.Rand) battle.Agent {
	switch kind {
	case KindHeuristic:
		return NewSimpleHeuristics(rng)
	case KindMaxBasePower:
		return NewMaxBasePower(rng)
	case KindRandom:
		return NewRandom(rng)
	default:
		panic(fmt.Sprintf("unhandled policy kind %q", kind))
	}
}

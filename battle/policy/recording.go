package policy

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vgc-imitation/collector/battle"
	"github.com/vgc-imitation/collector/battle/dataset"
)

// RecordWriter receives dataset records.
type RecordWriter interface {
	Write(rec dataset.Record) error
}

// Recording wraps an agent and writes one dataset record per decision. The
// observation and masks are captured before the wrapped agent sees the
// battle; the order it returns is passed through unchanged.
type Recording struct {
	inner   battle.Agent
	teacher string
	format  string
	out     RecordWriter

	mu      sync.Mutex
	written int
	dropped int
	byTag   map[string]int
}

// NewRecording wraps inner. teacher labels the records; format is used when a
// battle tag carries no format.
func NewRecording(inner battle.Agent, teacher, format string, out RecordWriter) *Recording {
	return &Recording{inner: inner, teacher: teacher, format: format, out: out, byTag: map[string]int{}}
}

func (r *Recording) Decide(ctx context.Context, b *battle.DoubleBattle) (battle.DoubleOrder, error) {
	format := battle.FormatFromTag(b.Tag)
	if format == "" {
		format = r.format
	}
	n := battle.ActionSpaceSize(format)
	var masks [battle.NumSlots]battle.Mask
	for slot := range masks {
		masks[slot] = battle.LegalityMask(b, slot, n)
	}
	obs := battle.EncodeObservation(b)

	order, err := r.inner.Decide(ctx, b)
	if err != nil {
		return order, err
	}

	actions, err := battle.DoubleOrderToActions(b, order, true, false)
	if err != nil {
		logrus.Warnf("battle %s turn %d: dropping record: %v", b.Tag, b.Turn, err)
		r.count(b.Tag, false)
		return order, nil
	}
	rec := dataset.Record{
		BattleTag:   b.Tag,
		Turn:        b.Turn,
		Teacher:     r.teacher,
		Format:      format,
		Observation: obs,
		Action:      actions,
		Mask:        masks,
	}
	if !rec.Consistent() {
		logrus.Warnf("battle %s turn %d: dropping record, action %v not allowed by mask (%s)",
			b.Tag, b.Turn, actions, order.Message())
		r.count(b.Tag, false)
		return order, nil
	}
	if err := r.out.Write(rec); err != nil {
		logrus.Warnf("battle %s turn %d: dropping record: %v", b.Tag, b.Turn, err)
		r.count(b.Tag, false)
		return order, nil
	}
	r.count(b.Tag, true)
	return order, nil
}

func (r *Recording) count(tag string, written bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if written {
		r.written++
		r.byTag[tag]++
	} else {
		r.dropped++
	}
}

// Counts returns the number of records written and dropped so far.
func (r *Recording) Counts() (written, dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written, r.dropped
}

// WrittenFor returns the number of records written for battle tag.
func (r *Recording) WrittenFor(tag string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byTag[tag]
}

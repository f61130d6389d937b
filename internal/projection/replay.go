// Package projection derives every read model by replaying the ledger from
// the first event. Nothing here is cached or persisted, and nothing returns
// an error: malformed or dangling references degrade to zero contributions.
package projection

import (
	"sort"
	"time"

	"focis/internal/domain"
)

// Ledger is the input to every projection.
type Ledger struct {
	Events     []domain.Event
	MasterData domain.MasterData
}

// replayOptions narrows the events a projection sees.
type replayOptions struct {
	Filter func(domain.Event) bool
}

// replay returns the non-reversed events in ascending OccurredAt order,
// ties broken by append sequence.
func (l Ledger) replay(opts replayOptions) []domain.Event {
	out := make([]domain.Event, 0, len(l.Events))
	for _, e := range l.Events {
		if !e.Active() {
			continue
		}
		if opts.Filter != nil && !opts.Filter(e) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

func (l Ledger) chronological() []domain.Event {
	return l.replay(replayOptions{})
}

func hoursBetween(from, to time.Time) float64 {
	if to.Before(from) {
		return 0
	}
	return to.Sub(from).Hours()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Package mru maintains the daemon's most-recently-used window ordering. The
// state is owned exclusively by the daemon main loop and mutated only on a
// committed focus.
package mru

import (
	"sort"

	"github.com/waytab/waytab/internal/backend"
)

const historyCap = 256

// State is an ordered sequence of window ids, most recent first.
type State struct {
	order []uint64
}

// UpdateOnFocus moves id to the front of the history, evicting the oldest
// entry past the capacity bound. Repeated calls with the same id are
// idempotent.
func (s *State) UpdateOnFocus(id uint64) {
	kept := s.order[:0]
	for _, existing := range s.order {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	s.order = append([]uint64{id}, kept...)
	if len(s.order) > historyCap {
		s.order = s.order[:historyCap]
	}
}

// Order sorts windows by recency: the live-focused window first, then
// windows in history order, then windows the history has never seen in
// their original relative order. The ordering is total and stable.
func (s *State) Order(windows []backend.Window) []backend.Window {
	var focused uint64
	hasFocused := false
	for _, w := range windows {
		if w.Focused {
			focused = w.ID
			hasFocused = true
			break
		}
	}

	position := make(map[uint64]int, len(s.order))
	for idx, id := range s.order {
		position[id] = idx
	}

	type rankedWindow struct {
		rank   int
		origin int
		window backend.Window
	}
	ranked := make([]rankedWindow, 0, len(windows))
	for idx, w := range windows {
		rank := 0
		switch {
		case hasFocused && w.ID == focused:
			rank = 0
		default:
			if pos, ok := position[w.ID]; ok {
				rank = 1 + pos
			} else {
				rank = 1 + len(position) + idx
			}
		}
		ranked = append(ranked, rankedWindow{rank: rank, origin: idx, window: w})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].rank != ranked[j].rank {
			return ranked[i].rank < ranked[j].rank
		}
		return ranked[i].origin < ranked[j].origin
	})

	out := make([]backend.Window, len(ranked))
	for i, r := range ranked {
		out[i] = r.window
	}
	return out
}

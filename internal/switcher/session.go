// Package switcher implements one interactive window-selection session: the
// ranked window list, the current selection, and the finalize-once guard
// around the focus commit. Presentation is delegated to a Presenter; control
// commands arrive on the session's private channel.
package switcher

import (
	"image"

	"github.com/rs/zerolog"

	"github.com/waytab/waytab/internal/backend"
	"github.com/waytab/waytab/internal/logger"
	"github.com/waytab/waytab/internal/mru"
)

// Command drives an active session.
type Command int

const (
	CycleNext Command = iota
	CyclePrev
	Commit
	Cancel
)

// Entry joins a backend window with its resolved icon, the per-session view
// the presenter operates on.
type Entry struct {
	Window backend.Window
	Icon   image.Image
}

// Presenter is the surface capability the session consumes. Show puts the
// panel up, Redraw reflects a selection change, Events delivers commands
// originating from the surface itself; a closed Events channel means the
// surface is gone and the session is cancelled.
type Presenter interface {
	Show(entries []Entry, selected int, output *backend.Output) error
	Redraw(selected int)
	Events() <-chan Command
	Close()
}

// IconSource resolves application ids to icons; satisfied by icon.Cache.
type IconSource interface {
	IconFor(appID string) image.Image
}

// controlBuffer bounds the session's private command channel. Cycle commands
// beyond it are dropped rather than blocking the listener thread.
const controlBuffer = 8

// Session is one Idle -> Active -> Idle episode.
type Session struct {
	adapter   backend.Adapter
	presenter Presenter
	entries   []Entry
	selected  int
	finalized bool
	ctrl      chan Command
	log       *zerolog.Logger
}

// New creates a session over an already-ranked, non-empty entry list.
func New(adapter backend.Adapter, presenter Presenter, entries []Entry, selected int) *Session {
	return &Session{
		adapter:   adapter,
		presenter: presenter,
		entries:   entries,
		selected:  selected,
		ctrl:      make(chan Command, controlBuffer),
		log:       logger.WithComponent("session"),
	}
}

// Control returns the session's private command channel. The daemon's
// router sends into it while the session is active.
func (s *Session) Control() chan<- Command { return s.ctrl }

// Run drives the session until commit or cancel. It returns the committed
// window id; committed is true only after a successful focus call.
func (s *Session) Run() (id uint64, committed bool) {
	defer s.presenter.Close()

	if err := s.presenter.Show(s.entries, s.selected, s.focusedOutput()); err != nil {
		s.log.Error().Err(err).Msg("presenting selection surface failed, session aborted")
		return 0, false
	}

	for {
		select {
		case cmd := <-s.ctrl:
			if done, id, ok := s.handle(cmd); done {
				return id, ok
			}
		case cmd, open := <-s.presenter.Events():
			if !open {
				// Surface disappeared: equivalent to cancel.
				return 0, false
			}
			if done, id, ok := s.handle(cmd); done {
				return id, ok
			}
		}
	}
}

func (s *Session) handle(cmd Command) (done bool, id uint64, committed bool) {
	switch cmd {
	case CycleNext:
		s.cycle(1)
	case CyclePrev:
		s.cycle(-1)
	case Commit:
		id, committed = s.finalize()
		return true, id, committed
	case Cancel:
		return true, 0, false
	}
	return false, 0, false
}

// cycle moves the selection by delta, wrapping in both directions.
func (s *Session) cycle(delta int) {
	n := len(s.entries)
	if n == 0 {
		return
	}
	next := ((s.selected+delta)%n + n) % n
	if next != s.selected {
		s.selected = next
		s.presenter.Redraw(s.selected)
	}
}

// finalize commits the focus action at most once per session.
func (s *Session) finalize() (uint64, bool) {
	if s.finalized {
		return 0, false
	}
	s.finalized = true

	window := s.entries[s.selected].Window
	if err := s.adapter.Focus(window.ID); err != nil {
		s.log.Error().
			Err(err).
			Uint64("window", window.ID).
			Msg("focus request failed")
		return 0, false
	}
	return window.ID, true
}

func (s *Session) focusedOutput() *backend.Output {
	output, err := s.adapter.FocusedOutput()
	if err != nil {
		s.log.Debug().Err(err).Msg("focused output lookup failed")
		return nil
	}
	return output
}

// PrepareEntries turns a fresh window snapshot into the ranked entry list a
// session starts from: duplicates dropped, the live-focused window recorded
// in the history before ranking, icons joined in, and the initial selection
// defaulting to the previous window. An empty result means no session should
// start.
func PrepareEntries(windows []backend.Window, hist *mru.State, icons IconSource) ([]Entry, int) {
	seen := make(map[uint64]struct{}, len(windows))
	unique := make([]backend.Window, 0, len(windows))
	for _, w := range windows {
		if _, dup := seen[w.ID]; dup {
			continue
		}
		seen[w.ID] = struct{}{}
		unique = append(unique, w)
	}
	if len(unique) == 0 {
		return nil, 0
	}

	for _, w := range unique {
		if w.Focused {
			hist.UpdateOnFocus(w.ID)
			break
		}
	}
	ordered := hist.Order(unique)

	entries := make([]Entry, 0, len(ordered))
	for _, w := range ordered {
		entries = append(entries, Entry{
			Window: w,
			Icon:   icons.IconFor(w.AppID),
		})
	}

	selected := 0
	if len(entries) > 1 {
		selected = 1
	}
	return entries, selected
}

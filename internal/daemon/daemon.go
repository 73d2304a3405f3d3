// Package daemon owns the waytab process lifecycle: the single-instance
// guard, the control socket, the hotkey monitor, and the main loop that
// turns triggers into interactive switcher sessions.
package daemon

import (
	"github.com/rs/zerolog"

	"github.com/waytab/waytab/internal/backend"
	"github.com/waytab/waytab/internal/config"
	"github.com/waytab/waytab/internal/icon"
	"github.com/waytab/waytab/internal/logger"
	"github.com/waytab/waytab/internal/mru"
	"github.com/waytab/waytab/internal/panel"
	"github.com/waytab/waytab/internal/switcher"
)

// Trigger is a control message on the daemon's main queue.
type Trigger int

const (
	// TriggerShow opens a session or, when one is already active, cycles it
	// forward (the translation happens in dispatch).
	TriggerShow Trigger = iota
	// TriggerShowPrev is the backward-cycling variant.
	TriggerShowPrev
	// triggerNone acknowledges instance-guard probes without side effects.
	triggerNone
)

// Daemon is the long-running switcher process. The MRU history and the icon
// cache are owned by the main loop and never touched by the listener or
// input threads; the only cross-thread state is the trigger queue and the
// session router.
type Daemon struct {
	adapter backend.Adapter
	cfg     *config.Config
	queue   chan Trigger
	router  router
	icons   *icon.Cache
	hist    *mru.State

	// newPresenter builds the presentation surface for one session.
	newPresenter func() switcher.Presenter

	log *zerolog.Logger
}

// New creates a daemon for the given backend adapter.
func New(adapter backend.Adapter, cfg *config.Config) *Daemon {
	return &Daemon{
		adapter:      adapter,
		cfg:          cfg,
		queue:        make(chan Trigger, 16),
		icons:        icon.NewCache(cfg.IconSize, cfg.IconTheme),
		hist:         &mru.State{},
		newPresenter: func() switcher.Presenter { return panel.New(nil) },
		log:          logger.WithComponent("daemon"),
	}
}

// Run binds the control socket and serves triggers until the process is
// killed. It returns ErrAlreadyRunning when another instance answers on the
// socket, and a bind error for anything else; both are startup-fatal for
// the caller. Session failures never propagate here.
func (d *Daemon) Run() error {
	path := SocketPath(d.cfg.SocketName)
	ln, err := bindListener(path)
	if err != nil {
		return err
	}

	d.log.Info().
		Str("socket", path).
		Str("backend", string(d.adapter.Kind())).
		Msg("daemon started")

	go d.acceptLoop(ln)
	if d.cfg.HotkeyEnabled {
		d.startHotkeyMonitor()
	}

	for trig := range d.queue {
		// Coalesce bursts from redundant hotkey sources or rapid repeats
		// into one session.
		d.drain()
		d.runSession(trig)
		d.drain()
	}
	return nil
}

// dispatch routes a classified trigger: into the active session's control
// channel when one exists, onto the main queue otherwise.
func (d *Daemon) dispatch(trig Trigger) {
	if trig == triggerNone {
		return
	}

	cmd := switcher.CycleNext
	if trig == TriggerShowPrev {
		cmd = switcher.CyclePrev
	}
	if d.router.deliver(cmd) {
		return
	}
	d.push(trig)
}

// push enqueues a trigger without blocking; a full queue drops it, which the
// drain-around-session pattern makes harmless.
func (d *Daemon) push(trig Trigger) bool {
	select {
	case d.queue <- trig:
		return true
	default:
		return false
	}
}

func (d *Daemon) drain() {
	for {
		select {
		case <-d.queue:
		default:
			return
		}
	}
}

// runSession executes one Idle -> Active -> Idle episode. Every error path
// returns the daemon to idle; nothing here may panic or propagate.
func (d *Daemon) runSession(_ Trigger) {
	windows, err := d.adapter.ListWindows()
	if err != nil {
		d.log.Error().Err(err).Msg("window snapshot failed, session aborted")
		return
	}

	entries, selected := switcher.PrepareEntries(windows, d.hist, d.icons)
	if len(entries) == 0 {
		d.log.Debug().Msg("no focusable windows")
		return
	}

	sess := switcher.New(d.adapter, d.newPresenter(), entries, selected)
	d.router.attach(sess.Control())
	id, committed := sess.Run()
	d.router.detach()

	if committed {
		d.hist.UpdateOnFocus(id)
		d.log.Debug().Uint64("window", id).Msg("focus committed")
	}
}

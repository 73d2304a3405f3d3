package daemon

import (
	"sync"

	"github.com/waytab/waytab/internal/logger"
	"github.com/waytab/waytab/internal/switcher"
)

// router is the mutex-guarded "current session" slot. While a session is
// active, control commands are redirected into its private channel instead
// of the daemon queue. The lock is never held across blocking I/O, only
// across a non-blocking send.
type router struct {
	mu   sync.Mutex
	ctrl chan<- switcher.Command
}

func (r *router) attach(ctrl chan<- switcher.Command) {
	r.mu.Lock()
	r.ctrl = ctrl
	r.mu.Unlock()
}

func (r *router) detach() {
	r.mu.Lock()
	r.ctrl = nil
	r.mu.Unlock()
}

// deliver routes a command to the active session. It reports false when no
// session is active. A full session channel drops the command rather than
// blocking the caller.
func (r *router) deliver(cmd switcher.Command) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctrl == nil {
		return false
	}
	select {
	case r.ctrl <- cmd:
	default:
		logger.WithComponent("router").Debug().
			Int("command", int(cmd)).
			Msg("session channel full, command dropped")
	}
	return true
}

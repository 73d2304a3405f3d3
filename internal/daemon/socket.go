package daemon

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/waytab/waytab/internal/logger"
)

// ack is the two-byte reply every accepted command gets.
const ack = "ok"

// ErrAlreadyRunning reports that another daemon instance answered on the
// control socket. The probe itself is the mutual-exclusion mechanism; there
// is no separate lock file.
var ErrAlreadyRunning = errors.New("waytab daemon already running")

// SocketPath returns the control socket path under XDG_RUNTIME_DIR, falling
// back to /tmp when unset.
func SocketPath(name string) string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = "/tmp"
	}
	return filepath.Join(dir, name)
}

// bindListener probes the control endpoint and binds it when no peer
// answers. A stale socket file left by a dead daemon is removed first.
func bindListener(path string) (net.Listener, error) {
	if conn, err := net.DialTimeout("unix", path, time.Second); err == nil {
		conn.SetDeadline(time.Now().Add(time.Second))
		conn.Write([]byte("ping"))
		buf := make([]byte, 8)
		conn.Read(buf)
		conn.Close()
		return nil, ErrAlreadyRunning
	}

	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", path, err)
	}
	return ln, nil
}

// acceptLoop serves the control socket. A failed accept or a malformed
// payload never terminates the loop; connections are handled sequentially
// since command payloads are tiny and rare.
func (d *Daemon) acceptLoop(ln net.Listener) {
	log := logger.WithComponent("listener")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Debug().Err(err).Msg("accept failed")
			continue
		}
		d.handleConn(conn)
	}
}

func (d *Daemon) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * time.Second))

	buf := make([]byte, 32)
	n, err := conn.Read(buf)
	if err != nil && n == 0 && !errors.Is(err, io.EOF) {
		logger.WithComponent("listener").Debug().Err(err).Msg("command read failed")
	}

	trig := classify(buf[:n])
	if _, err := conn.Write([]byte(ack)); err != nil {
		logger.WithComponent("listener").Debug().Err(err).Msg("ack write failed")
	}
	d.dispatch(trig)
}

// classify maps a command payload to a trigger. Anything unrecognized or
// empty defaults to show; the instance-guard probe is acknowledged but
// triggers nothing.
func classify(payload []byte) Trigger {
	switch strings.ToLower(strings.TrimSpace(string(payload))) {
	case "prev":
		return TriggerShowPrev
	case "ping":
		return triggerNone
	default:
		return TriggerShow
	}
}

// SendShow asks a running daemon to open or cycle the switcher.
func SendShow(socketName string) error {
	return send(socketName, "show")
}

// SendShowPrev asks a running daemon to open or cycle the switcher
// backwards.
func SendShowPrev(socketName string) error {
	return send(socketName, "prev")
}

func send(socketName, payload string) error {
	path := SocketPath(socketName)
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", path, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * time.Second))

	if _, err := conn.Write([]byte(payload)); err != nil {
		return fmt.Errorf("send %q: %w", payload, err)
	}
	buf := make([]byte, len(ack))
	if _, err := io.ReadFull(conn, buf); err != nil {
		return fmt.Errorf("read ack: %w", err)
	}
	return nil
}

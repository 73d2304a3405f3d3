package daemon

import (
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/waytab/waytab/internal/logger"
	"github.com/waytab/waytab/internal/switcher"
)

// startHotkeyMonitor watches raw input devices for the Alt+Tab chord. It is
// best-effort: devices that cannot be opened are skipped, and when none
// qualify the daemon stays usable through the control socket.
func (d *Daemon) startHotkeyMonitor() {
	log := logger.WithComponent("hotkey")

	paths, err := evdev.ListDevicePaths()
	if err != nil {
		log.Warn().Err(err).Msg("input device enumeration failed, hotkey trigger disabled")
		return
	}

	count := 0
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			log.Debug().Str("device", p.Path).Err(err).Msg("cannot open input device")
			continue
		}
		if !isSwitcherKeyboard(dev) {
			dev.Close()
			continue
		}
		log.Debug().Str("device", p.Path).Str("name", p.Name).Msg("watching keyboard")
		count++
		go d.watchDevice(dev, p.Path)
	}

	if count == 0 {
		log.Warn().Msg("no keyboard devices with Alt and Tab found, hotkey trigger disabled")
	}
}

// isSwitcherKeyboard reports whether the device exposes both the modifier
// and the trigger key in its capability set.
func isSwitcherKeyboard(dev *evdev.InputDevice) bool {
	hasKeys := false
	for _, t := range dev.CapableTypes() {
		if t == evdev.EV_KEY {
			hasKeys = true
			break
		}
	}
	if !hasKeys {
		return false
	}

	hasAlt := false
	hasTab := false
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		switch code {
		case evdev.KEY_LEFTALT, evdev.KEY_RIGHTALT:
			hasAlt = true
		case evdev.KEY_TAB:
			hasTab = true
		}
	}
	return hasAlt && hasTab
}

// watchDevice runs one device's blocking read loop. Read errors are
// swallowed per iteration; a permanently failed device goes silent. Multiple
// devices may race to emit duplicate triggers, which the main loop's queue
// draining absorbs.
func (d *Daemon) watchDevice(dev *evdev.InputDevice, path string) {
	log := logger.WithComponent("hotkey")
	altDown := false

	for {
		ev, err := dev.ReadOne()
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if ev.Type != evdev.EV_KEY {
			continue
		}

		switch ev.Code {
		case evdev.KEY_LEFTALT, evdev.KEY_RIGHTALT:
			wasDown := altDown
			altDown = ev.Value != 0
			if wasDown && !altDown {
				// Releasing the held modifier commits the active session.
				d.router.deliver(switcher.Commit)
			}
		case evdev.KEY_TAB:
			if altDown && ev.Value != 0 {
				if d.router.deliver(switcher.CycleNext) {
					continue
				}
				if !d.push(TriggerShow) {
					log.Debug().Str("device", path).Msg("trigger queue full")
				}
			}
		case evdev.KEY_ESC:
			if ev.Value != 0 {
				d.router.deliver(switcher.Cancel)
			}
		}
	}
}

package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// hyprlandAdapter drives the hyprctl query tool: JSON queries via `-j`, focus
// via the dispatch subcommand.
type hyprlandAdapter struct{}

func (a *hyprlandAdapter) Kind() Kind { return KindHyprland }

// hyprClient mirrors the fields of `hyprctl -j clients` this adapter reads.
// Booleans are tri-state: an absent field must not be confused with an
// explicit false.
type hyprClient struct {
	Address      *string `json:"address"`
	Class        *string `json:"class"`
	InitialClass *string `json:"initialClass"`
	Focus        *bool   `json:"focus"`
	Mapped       *bool   `json:"mapped"`
	Hidden       *bool   `json:"hidden"`
}

type hyprMonitor struct {
	Focused *bool    `json:"focused"`
	Width   *int     `json:"width"`
	Height  *int     `json:"height"`
	Scale   *float64 `json:"scale"`
}

// runHyprctl is a seam for tests.
var runHyprctl = func(args ...string) ([]byte, error) {
	cmd := exec.Command("hyprctl", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("hyprctl %s: %w: %s",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func hyprctlJSON(out any, args ...string) error {
	data, err := runHyprctl(args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse hyprctl %s output: %w", strings.Join(args, " "), err)
	}
	return nil
}

// parseHyprAddress parses hyprland's hexadecimal surface address, with or
// without a 0x prefix.
func parseHyprAddress(value string) (uint64, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	id, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (a *hyprlandAdapter) ListWindows() ([]Window, error) {
	var clients []hyprClient
	if err := hyprctlJSON(&clients, "-j", "clients"); err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}

	windows := make([]Window, 0, len(clients))
	for _, client := range clients {
		if (client.Mapped != nil && !*client.Mapped) ||
			(client.Hidden != nil && *client.Hidden) {
			continue
		}
		if client.Address == nil {
			continue
		}
		id, ok := parseHyprAddress(*client.Address)
		if !ok {
			continue
		}

		appID := ""
		if client.InitialClass != nil && *client.InitialClass != "" {
			appID = *client.InitialClass
		} else if client.Class != nil {
			appID = *client.Class
		}

		windows = append(windows, Window{
			ID:      id,
			AppID:   appID,
			Focused: client.Focus != nil && *client.Focus,
		})
	}
	return windows, nil
}

func (a *hyprlandAdapter) FocusedOutput() (*Output, error) {
	var monitors []hyprMonitor
	if err := hyprctlJSON(&monitors, "-j", "monitors"); err != nil {
		return nil, fmt.Errorf("focused output: %w", err)
	}

	for _, monitor := range monitors {
		if monitor.Focused == nil || !*monitor.Focused {
			continue
		}
		scale := 1.0
		if monitor.Scale != nil {
			scale = math.Max(*monitor.Scale, 1.0)
		}
		out := &Output{Scale: int(math.Round(scale))}
		if monitor.Width != nil {
			out.Width = *monitor.Width
		}
		if monitor.Height != nil {
			out.Height = *monitor.Height
		}
		return out, nil
	}
	return nil, nil
}

func (a *hyprlandAdapter) Focus(id uint64) error {
	addr := fmt.Sprintf("address:0x%x", id)
	if _, err := runHyprctl("dispatch", "focuswindow", addr); err != nil {
		return fmt.Errorf("focus window %s: %w", addr, err)
	}
	return nil
}

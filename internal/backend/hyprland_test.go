package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubHyprctl replaces the hyprctl seam for the duration of one test and
// records every invocation.
func stubHyprctl(t *testing.T, fn func(args ...string) ([]byte, error)) *[][]string {
	t.Helper()
	var calls [][]string
	orig := runHyprctl
	runHyprctl = func(args ...string) ([]byte, error) {
		calls = append(calls, args)
		return fn(args...)
	}
	t.Cleanup(func() { runHyprctl = orig })
	return &calls
}

func TestParseHyprAddress(t *testing.T) {
	id, ok := parseHyprAddress("0x55d3a4b0")
	require.True(t, ok)
	require.Equal(t, uint64(0x55d3a4b0), id)

	id, ok = parseHyprAddress("ff")
	require.True(t, ok)
	require.Equal(t, uint64(0xff), id)

	id, ok = parseHyprAddress("  0xff ")
	require.True(t, ok)
	require.Equal(t, uint64(0xff), id)

	_, ok = parseHyprAddress("not-an-address")
	require.False(t, ok)
	_, ok = parseHyprAddress("")
	require.False(t, ok)
}

func TestHyprlandListWindows(t *testing.T) {
	stubHyprctl(t, func(args ...string) ([]byte, error) {
		return []byte(`[
			{"address": "0x1", "class": "firefox", "focus": true, "mapped": true, "hidden": false},
			{"address": "0x2", "class": "kitty", "initialClass": "org.kitty", "mapped": true},
			{"address": "0x3", "class": "ghost", "mapped": false},
			{"address": "0x4", "class": "hidden", "hidden": true},
			{"address": "bogus", "class": "skipme"},
			{"class": "no-address"},
			{"address": "0x7"}
		]`), nil
	})

	a := &hyprlandAdapter{}
	windows, err := a.ListWindows()
	require.NoError(t, err)

	// Unmapped and hidden clients are dropped, unparsable and missing
	// addresses are skipped, absent mapped/hidden fields keep the window.
	require.Equal(t, []Window{
		{ID: 1, AppID: "firefox", Focused: true},
		{ID: 2, AppID: "org.kitty"},
		{ID: 7},
	}, windows)
}

func TestHyprlandListWindowsCommandError(t *testing.T) {
	stubHyprctl(t, func(args ...string) ([]byte, error) {
		return nil, errors.New("hyprctl -j clients: exit status 1: socket gone")
	})

	a := &hyprlandAdapter{}
	_, err := a.ListWindows()
	require.Error(t, err)
	require.Contains(t, err.Error(), "socket gone")
}

func TestHyprlandFocusedOutput(t *testing.T) {
	stubHyprctl(t, func(args ...string) ([]byte, error) {
		return []byte(`[
			{"focused": false, "width": 1920, "height": 1080, "scale": 1.0},
			{"focused": true, "width": 2560, "height": 1440, "scale": 1.5}
		]`), nil
	})

	a := &hyprlandAdapter{}
	out, err := a.FocusedOutput()
	require.NoError(t, err)
	require.Equal(t, &Output{Width: 2560, Height: 1440, Scale: 2}, out)
}

func TestHyprlandFocusedOutputScaleFloorsAtOne(t *testing.T) {
	stubHyprctl(t, func(args ...string) ([]byte, error) {
		return []byte(`[{"focused": true, "width": 800, "height": 600, "scale": 0.5}]`), nil
	})

	a := &hyprlandAdapter{}
	out, err := a.FocusedOutput()
	require.NoError(t, err)
	require.Equal(t, 1, out.Scale)
}

func TestHyprlandFocusedOutputNoneFocused(t *testing.T) {
	stubHyprctl(t, func(args ...string) ([]byte, error) {
		return []byte(`[{"focused": false, "width": 1920, "height": 1080}]`), nil
	})

	a := &hyprlandAdapter{}
	out, err := a.FocusedOutput()
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestHyprlandFocusDispatch(t *testing.T) {
	calls := stubHyprctl(t, func(args ...string) ([]byte, error) {
		return []byte("ok"), nil
	})

	a := &hyprlandAdapter{}
	require.NoError(t, a.Focus(0xdeadbeef))

	require.Len(t, *calls, 1)
	require.Equal(t, []string{"dispatch", "focuswindow", "address:0xdeadbeef"}, (*calls)[0])
}

func TestHyprlandFocusError(t *testing.T) {
	stubHyprctl(t, func(args ...string) ([]byte, error) {
		return nil, errors.New("exit status 2: no such window")
	})

	a := &hyprlandAdapter{}
	err := a.Focus(0x1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "address:0x1")
	require.Contains(t, err.Error(), "no such window")
}

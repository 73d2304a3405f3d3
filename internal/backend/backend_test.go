package backend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, name := range []string{"niri", "sway", "hyprland", "kwin", "gnome"} {
		kind, err := ParseKind(name)
		require.NoError(t, err)
		require.Equal(t, Kind(name), kind)
	}

	_, err := ParseKind("i3")
	require.Error(t, err)
	_, err = ParseKind("")
	require.Error(t, err)
}

func TestForSelectsAdapter(t *testing.T) {
	require.Equal(t, KindNiri, For(KindNiri).Kind())
	require.Equal(t, KindHyprland, For(KindHyprland).Kind())
	require.Equal(t, KindSway, For(KindSway).Kind())
}

func TestUnsupportedAdapterFailsEveryOperation(t *testing.T) {
	for _, kind := range []Kind{KindSway, KindKwin, KindGnome} {
		a := For(kind)

		_, err := a.ListWindows()
		require.ErrorIs(t, err, ErrUnsupported)
		require.Contains(t, err.Error(), string(kind))

		_, err = a.FocusedOutput()
		require.ErrorIs(t, err, ErrUnsupported)

		err = a.Focus(1)
		require.ErrorIs(t, err, ErrUnsupported)
	}
}

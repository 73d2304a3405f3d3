package icon

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolateXDG points every icon search directory at an empty or prepared
// temporary tree so the host system's themes cannot leak into tests.
func isolateXDG(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("XDG_DATA_DIRS", filepath.Join(dir, "share"))
	return filepath.Join(dir, "share")
}

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestNameCandidates(t *testing.T) {
	require.Equal(t, []string{"firefox"}, nameCandidates("firefox"))
	require.Equal(t,
		[]string{"org.mozilla.firefox", "firefox"},
		nameCandidates("org.mozilla.firefox"))
	require.Equal(t,
		[]string{"kitty.desktop", "kitty", "desktop"},
		nameCandidates("kitty.desktop"))
}

func TestPlaceholder(t *testing.T) {
	img := Placeholder(8)
	require.Equal(t, 8, img.Bounds().Dx())
	require.Equal(t, 8, img.Bounds().Dy())

	r, g, b, a := img.At(3, 3).RGBA()
	require.Equal(t, uint32(90<<8|90), r)
	require.Equal(t, r, g)
	require.Equal(t, r, b)
	require.Equal(t, uint32(0xffff), a)
}

func TestIconForFallsBackToPlaceholder(t *testing.T) {
	isolateXDG(t)

	c := NewCache(32, "")
	img := c.IconFor("definitely-not-installed")
	require.NotNil(t, img)
	require.Equal(t, 32, img.Bounds().Dx())
}

func TestIconForMemoizes(t *testing.T) {
	isolateXDG(t)

	c := NewCache(32, "")
	first := c.IconFor("someapp")
	second := c.IconFor("someapp")
	require.Same(t, first, second)
}

func TestIconForLoadsAndScalesPNG(t *testing.T) {
	share := isolateXDG(t)
	writePNG(t,
		filepath.Join(share, "icons", "hicolor", "48x48", "apps", "myapp.png"),
		color.NRGBA{R: 10, G: 200, B: 30, A: 255})

	c := NewCache(32, "")
	img := c.IconFor("myapp")
	require.Equal(t, 32, img.Bounds().Dx())
	require.Equal(t, 32, img.Bounds().Dy())

	_, g, _, _ := img.At(16, 16).RGBA()
	require.Greater(t, g, uint32(0x8000))
}

func TestIconForPrefersNamedTheme(t *testing.T) {
	share := isolateXDG(t)
	writePNG(t,
		filepath.Join(share, "icons", "hicolor", "48x48", "apps", "myapp.png"),
		color.NRGBA{R: 255, A: 255})
	writePNG(t,
		filepath.Join(share, "icons", "Papirus", "48x48", "apps", "myapp.png"),
		color.NRGBA{B: 255, A: 255})

	c := NewCache(32, "Papirus")
	img := c.IconFor("myapp")

	_, _, b, _ := img.At(16, 16).RGBA()
	require.Greater(t, b, uint32(0x8000))
}

func TestIconForReverseDNSFallsBackToLastSegment(t *testing.T) {
	share := isolateXDG(t)
	writePNG(t,
		filepath.Join(share, "icons", "hicolor", "48x48", "apps", "firefox.png"),
		color.NRGBA{R: 255, A: 255})

	c := NewCache(32, "")
	img := c.IconFor("org.mozilla.firefox")
	r, _, _, _ := img.At(16, 16).RGBA()
	require.Greater(t, r, uint32(0x8000))
}

func TestParseDesktopEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.desktop")
	require.NoError(t, os.WriteFile(path, []byte(`# comment
[Desktop Entry]
Name=Some App
Icon=someapp-icon
StartupWMClass=SomeApp

[Desktop Action new-window]
Icon=other-icon
`), 0o644))

	entry, ok := parseDesktopEntry(path)
	require.True(t, ok)
	require.Equal(t, "someapp-icon", entry.Icon)
	require.Equal(t, "SomeApp", entry.StartupWMClass)
}

func TestParseDesktopEntryMissingFile(t *testing.T) {
	_, ok := parseDesktopEntry(filepath.Join(t.TempDir(), "nope.desktop"))
	require.False(t, ok)
}

func TestDesktopIconNameByWMClass(t *testing.T) {
	share := isolateXDG(t)
	apps := filepath.Join(share, "applications")
	require.NoError(t, os.MkdirAll(apps, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(apps, "some-launcher.desktop"), []byte(`[Desktop Entry]
Icon=launcher-icon
StartupWMClass=WaytabTestClass
`), 0o644))

	require.Equal(t, "launcher-icon", desktopIconName("waytabtestclass"))
}

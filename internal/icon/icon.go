// Package icon resolves application ids to rasterized icons. Resolution is
// infallible: anything that cannot be found or decoded falls back to a flat
// placeholder, so the selection panel always has something to draw.
package icon

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	"github.com/waytab/waytab/internal/logger"
)

// DefaultSize matches the panel's icon cell.
const DefaultSize = 77

// fallbackIconName is the generic executable icon used when an application
// id resolves to nothing.
const fallbackIconName = "application-x-executable"

// Cache resolves and memoizes icons per application id. It is owned by the
// daemon main loop and is not safe for concurrent use.
type Cache struct {
	size  int
	theme string
	icons map[string]image.Image
}

// NewCache creates an icon cache producing size x size images, preferring
// the named icon theme (hicolor is always searched).
func NewCache(size int, theme string) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cache{
		size:  size,
		theme: theme,
		icons: make(map[string]image.Image),
	}
}

// IconFor returns the icon for an application id, loading and caching it on
// first use. It never fails.
func (c *Cache) IconFor(appID string) image.Image {
	if appID == "" {
		appID = fallbackIconName
	}
	if icon, ok := c.icons[appID]; ok {
		return icon
	}

	icon, err := c.load(appID)
	if err != nil {
		logger.WithComponent("icon").Debug().
			Str("app_id", appID).
			Err(err).
			Msg("falling back to placeholder icon")
		icon = Placeholder(c.size)
	}
	c.icons[appID] = icon
	return icon
}

func (c *Cache) load(appID string) (image.Image, error) {
	candidates := nameCandidates(appID)
	if iconName := desktopIconName(appID); iconName != "" {
		candidates = append(candidates, iconName)
	}
	candidates = append(candidates, fallbackIconName)

	path := ""
	for _, name := range candidates {
		if found := findIconPath(name, c.theme, c.size); found != "" {
			path = found
			break
		}
	}
	if path == "" {
		return nil, fmt.Errorf("no icon found for %q", appID)
	}

	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return renderSVG(path, c.size)
	}
	return loadRaster(path, c.size)
}

// nameCandidates expands an application id into icon-name guesses: the id
// itself, the id with a .desktop suffix stripped, and the last segment of a
// reverse-DNS id like org.mozilla.firefox.
func nameCandidates(appID string) []string {
	candidates := []string{appID}
	if trimmed, ok := strings.CutSuffix(appID, ".desktop"); ok {
		candidates = append(candidates, trimmed)
	}
	if idx := strings.LastIndex(appID, "."); idx >= 0 && idx+1 < len(appID) {
		candidates = append(candidates, appID[idx+1:])
	}
	return candidates
}

// findIconPath searches the freedesktop icon directories for a raster or
// scalable icon with the given name.
func findIconPath(name, theme string, size int) string {
	themes := []string{}
	if theme != "" {
		themes = append(themes, theme)
	}
	themes = append(themes, "hicolor")

	sized := fmt.Sprintf("%dx%d", size, size)
	for _, base := range dataDirs() {
		for _, t := range themes {
			themeDir := filepath.Join(base, "icons", t)
			dirs := []string{
				filepath.Join(themeDir, sized, "apps"),
				filepath.Join(themeDir, "256x256", "apps"),
				filepath.Join(themeDir, "128x128", "apps"),
				filepath.Join(themeDir, "64x64", "apps"),
				filepath.Join(themeDir, "48x48", "apps"),
				filepath.Join(themeDir, "scalable", "apps"),
			}
			for _, dir := range dirs {
				for _, ext := range []string{".png", ".svg"} {
					candidate := filepath.Join(dir, name+ext)
					if fileExists(candidate) {
						return candidate
					}
				}
			}
		}
		for _, ext := range []string{".png", ".svg"} {
			candidate := filepath.Join(base, "pixmaps", name+ext)
			if fileExists(candidate) {
				return candidate
			}
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// dataDirs returns the XDG data directories to search, user dirs first.
func dataDirs() []string {
	dirs := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share"))
	}
	xdg := os.Getenv("XDG_DATA_DIRS")
	if xdg == "" {
		xdg = "/usr/local/share:/usr/share"
	}
	for _, dir := range strings.Split(xdg, ":") {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func loadRaster(path string, size int) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read icon %s: %w", path, err)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode icon %s: %w", path, err)
	}

	if src.Bounds().Dx() == size && src.Bounds().Dy() == size {
		return src, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst, nil
}

func renderSVG(path string, size int) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read svg %s: %w", path, err)
	}
	svg, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse svg %s: %w", path, err)
	}

	svg.SetTarget(0, 0, float64(size), float64(size))
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, dst, dst.Bounds())
	svg.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return dst, nil
}

// Placeholder is the flat gray square used when no icon can be resolved.
func Placeholder(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	gray := color.RGBA{R: 90, G: 90, B: 90, A: 255}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, gray)
		}
	}
	return img
}

package icon

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// desktopEntry holds the fields of a .desktop file this package cares about.
type desktopEntry struct {
	Icon           string
	StartupWMClass string
}

// desktopIconName resolves an application id to an icon name through the
// installed desktop entries: first by file name, then by scanning for a
// matching StartupWMClass.
func desktopIconName(appID string) string {
	candidates := nameCandidates(appID)
	dirs := applicationDirs()

	for _, base := range dirs {
		for _, name := range candidates {
			file := name
			if !strings.HasSuffix(file, ".desktop") {
				file += ".desktop"
			}
			entry, ok := parseDesktopEntry(filepath.Join(base, file))
			if ok && entry.Icon != "" {
				return entry.Icon
			}
		}
	}

	lower := make(map[string]struct{}, len(candidates))
	for _, name := range candidates {
		lower[strings.ToLower(name)] = struct{}{}
	}

	for _, base := range dirs {
		files, err := os.ReadDir(base)
		if err != nil {
			continue
		}
		for _, file := range files {
			if filepath.Ext(file.Name()) != ".desktop" {
				continue
			}
			entry, ok := parseDesktopEntry(filepath.Join(base, file.Name()))
			if !ok || entry.StartupWMClass == "" || entry.Icon == "" {
				continue
			}
			if _, match := lower[strings.ToLower(entry.StartupWMClass)]; match {
				return entry.Icon
			}
		}
	}
	return ""
}

func applicationDirs() []string {
	dirs := []string{
		"/usr/share/applications",
		"/usr/local/share/applications",
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "applications"))
	}
	for _, dir := range strings.Split(os.Getenv("XDG_DATA_DIRS"), ":") {
		if dir != "" {
			dirs = append(dirs, filepath.Join(dir, "applications"))
		}
	}
	return dirs
}

// parseDesktopEntry reads the [Desktop Entry] section of a .desktop file.
// The second return is false when the file is unreadable or carries none of
// the fields of interest.
func parseDesktopEntry(path string) (desktopEntry, bool) {
	f, err := os.Open(path)
	if err != nil {
		return desktopEntry{}, false
	}
	defer f.Close()

	var entry desktopEntry
	inEntry := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}
		if value, ok := strings.CutPrefix(line, "Icon="); ok {
			if value = strings.TrimSpace(value); value != "" {
				entry.Icon = value
			}
			continue
		}
		if value, ok := strings.CutPrefix(line, "StartupWMClass="); ok {
			if value = strings.TrimSpace(value); value != "" {
				entry.StartupWMClass = value
			}
		}
	}

	if entry.Icon == "" && entry.StartupWMClass == "" {
		return desktopEntry{}, false
	}
	return entry, true
}

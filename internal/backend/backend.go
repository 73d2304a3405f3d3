package backend

import (
	"errors"
	"fmt"
)

// Kind identifies the compositor control protocol in use. The set is closed:
// adding a compositor means adding a Kind and an adapter behind For.
type Kind string

const (
	KindNiri     Kind = "niri"
	KindSway     Kind = "sway"
	KindHyprland Kind = "hyprland"
	KindKwin     Kind = "kwin"
	KindGnome    Kind = "gnome"
)

// ErrUnsupported is returned by every adapter operation on a backend that is
// recognized at configuration time but has no working adapter.
var ErrUnsupported = errors.New("backend not supported")

// ParseKind validates a backend name from configuration or the CLI.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindNiri, KindSway, KindHyprland, KindKwin, KindGnome:
		return Kind(name), nil
	}
	return "", fmt.Errorf("unknown backend: %s", name)
}

// Window is the normalized window record produced fresh on every
// enumeration. ID is an opaque handle whose encoding is backend-specific
// (niri window id, hyprland surface address).
type Window struct {
	ID      uint64
	AppID   string // identifying string for icon lookup, may be empty
	Focused bool
}

// Output describes the focused output's logical geometry. Scale is always
// at least 1.
type Output struct {
	Width  int
	Height int
	Scale  int
}

// Adapter presents one interface over the concrete compositor protocols.
type Adapter interface {
	Kind() Kind

	// ListWindows enumerates the currently open windows.
	ListWindows() ([]Window, error)

	// FocusedOutput returns the focused output's logical geometry, or nil
	// when the backend has no output support or no output is focused.
	FocusedOutput() (*Output, error)

	// Focus asks the compositor to focus the window with the given id.
	Focus(id uint64) error
}

// For returns the adapter for the given backend. Kinds without a working
// adapter yield one whose every operation fails with ErrUnsupported, so the
// daemon still starts and reports the problem on first use.
func For(kind Kind) Adapter {
	switch kind {
	case KindNiri:
		return &niriAdapter{}
	case KindHyprland:
		return &hyprlandAdapter{}
	default:
		return unsupportedAdapter{kind: kind}
	}
}

type unsupportedAdapter struct {
	kind Kind
}

func (a unsupportedAdapter) Kind() Kind { return a.kind }

func (a unsupportedAdapter) ListWindows() ([]Window, error) {
	return nil, fmt.Errorf("%s: %w", a.kind, ErrUnsupported)
}

func (a unsupportedAdapter) FocusedOutput() (*Output, error) {
	return nil, fmt.Errorf("%s: %w", a.kind, ErrUnsupported)
}

func (a unsupportedAdapter) Focus(uint64) error {
	return fmt.Errorf("%s: %w", a.kind, ErrUnsupported)
}

package backend

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"os"

	"github.com/waytab/waytab/internal/logger"
)

// niriAdapter speaks niri's structured IPC: one JSON request per line on the
// socket advertised via $NIRI_SOCKET, one JSON reply line back. The reply is
// an Ok/Err envelope around the response payload.
type niriAdapter struct{}

func (a *niriAdapter) Kind() Kind { return KindNiri }

type niriWindow struct {
	ID        uint64  `json:"id"`
	AppID     *string `json:"app_id"`
	IsFocused bool    `json:"is_focused"`
}

type niriLogical struct {
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
}

type niriOutput struct {
	Name    string       `json:"name"`
	Logical *niriLogical `json:"logical"`
}

type niriReply struct {
	Ok  json.RawMessage `json:"Ok"`
	Err *string         `json:"Err"`
}

// niriRequest performs one request/reply round trip and returns the raw Ok
// payload. A protocol-level Err reply is surfaced as a backend error.
func (a *niriAdapter) request(payload any) (json.RawMessage, error) {
	socket := os.Getenv("NIRI_SOCKET")
	if socket == "" {
		return nil, fmt.Errorf("connect to niri socket: NIRI_SOCKET not set")
	}

	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("connect to niri socket: %w", err)
	}
	defer conn.Close()

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode niri request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("send niri request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, fmt.Errorf("read niri reply: %w", err)
	}

	var reply niriReply
	if err := json.Unmarshal(line, &reply); err != nil {
		return nil, fmt.Errorf("parse niri reply: %w", err)
	}
	if reply.Err != nil {
		return nil, fmt.Errorf("niri: %s", *reply.Err)
	}
	return reply.Ok, nil
}

func (a *niriAdapter) ListWindows() ([]Window, error) {
	ok, err := a.request("Windows")
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}

	var resp struct {
		Windows []niriWindow `json:"Windows"`
	}
	if err := json.Unmarshal(ok, &resp); err != nil {
		// A successful reply of an unexpected shape yields an empty list.
		logger.WithComponent("niri").Debug().Msg("unexpected windows reply shape")
		return nil, nil
	}

	windows := make([]Window, 0, len(resp.Windows))
	for _, w := range resp.Windows {
		appID := ""
		if w.AppID != nil {
			appID = *w.AppID
		}
		windows = append(windows, Window{
			ID:      w.ID,
			AppID:   appID,
			Focused: w.IsFocused,
		})
	}
	return windows, nil
}

func (a *niriAdapter) FocusedOutput() (*Output, error) {
	ok, err := a.request("FocusedOutput")
	if err != nil {
		return nil, fmt.Errorf("focused output: %w", err)
	}

	var resp struct {
		FocusedOutput *niriOutput `json:"FocusedOutput"`
	}
	if err := json.Unmarshal(ok, &resp); err != nil {
		return nil, nil
	}
	if resp.FocusedOutput == nil || resp.FocusedOutput.Logical == nil {
		return nil, nil
	}

	logical := resp.FocusedOutput.Logical
	scale := int(math.Round(math.Max(logical.Scale, 1.0)))
	if scale < 1 {
		scale = 1
	}
	return &Output{
		Width:  logical.Width,
		Height: logical.Height,
		Scale:  scale,
	}, nil
}

func (a *niriAdapter) Focus(id uint64) error {
	payload := map[string]any{
		"Action": map[string]any{
			"FocusWindow": map[string]any{"id": id},
		},
	}
	// Any successful reply shape, including Handled, counts as success.
	if _, err := a.request(payload); err != nil {
		return fmt.Errorf("focus window %d: %w", id, err)
	}
	return nil
}

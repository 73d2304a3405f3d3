package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waytab/waytab/internal/backend"
	"github.com/waytab/waytab/internal/config"
	"github.com/waytab/waytab/internal/switcher"
)

func testDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := &config.Config{
		Backend:    "sway",
		SocketName: "waytab-test.sock",
		IconSize:   32,
		IconTheme:  "hicolor",
	}
	return New(backend.For(backend.KindSway), cfg)
}

func TestSocketPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	require.Equal(t, "/run/user/1000/waytab.sock", SocketPath("waytab.sock"))

	t.Setenv("XDG_RUNTIME_DIR", "")
	require.Equal(t, "/tmp/waytab.sock", SocketPath("waytab.sock"))
}

func TestClassify(t *testing.T) {
	require.Equal(t, TriggerShow, classify([]byte("show")))
	require.Equal(t, TriggerShow, classify([]byte("SHOW\n")))
	require.Equal(t, TriggerShowPrev, classify([]byte("prev")))
	require.Equal(t, TriggerShowPrev, classify([]byte("  PREV  ")))
	require.Equal(t, triggerNone, classify([]byte("ping")))

	// Unknown and empty payloads default to show.
	require.Equal(t, TriggerShow, classify([]byte("whatever")))
	require.Equal(t, TriggerShow, classify(nil))
}

func TestBindListenerRejectsSecondInstance(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	path := SocketPath("waytab-test.sock")

	ln, err := bindListener(path)
	require.NoError(t, err)
	defer ln.Close()

	d := testDaemon(t)
	go d.acceptLoop(ln)

	_, err = bindListener(path)
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestBindListenerRemovesStaleSocket(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	path := SocketPath("waytab-test.sock")

	// First daemon binds then dies without cleanup.
	ln, err := bindListener(path)
	require.NoError(t, err)
	ln.Close()

	ln2, err := bindListener(path)
	require.NoError(t, err)
	ln2.Close()
}

func TestSendShowRoundTrip(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	d := testDaemon(t)

	ln, err := bindListener(SocketPath(d.cfg.SocketName))
	require.NoError(t, err)
	defer ln.Close()
	go d.acceptLoop(ln)

	require.NoError(t, SendShow(d.cfg.SocketName))
	select {
	case trig := <-d.queue:
		require.Equal(t, TriggerShow, trig)
	case <-time.After(2 * time.Second):
		t.Fatal("trigger never reached the daemon queue")
	}

	require.NoError(t, SendShowPrev(d.cfg.SocketName))
	select {
	case trig := <-d.queue:
		require.Equal(t, TriggerShowPrev, trig)
	case <-time.After(2 * time.Second):
		t.Fatal("trigger never reached the daemon queue")
	}
}

func TestSendShowNoDaemon(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	require.Error(t, SendShow("waytab-test.sock"))
}

func TestDispatchRoutesIntoActiveSession(t *testing.T) {
	d := testDaemon(t)
	ctrl := make(chan switcher.Command, 1)
	d.router.attach(ctrl)
	defer d.router.detach()

	d.dispatch(TriggerShow)
	require.Equal(t, switcher.CycleNext, <-ctrl)

	d.dispatch(TriggerShowPrev)
	require.Equal(t, switcher.CyclePrev, <-ctrl)

	require.Empty(t, d.queue)
}

func TestDispatchQueuesWhenIdle(t *testing.T) {
	d := testDaemon(t)

	d.dispatch(TriggerShow)
	require.Equal(t, TriggerShow, <-d.queue)

	d.dispatch(triggerNone)
	require.Empty(t, d.queue)
}

func TestRouterDeliverWithoutSession(t *testing.T) {
	d := testDaemon(t)
	require.False(t, d.router.deliver(switcher.Commit))
}

func TestDrainEmptiesQueue(t *testing.T) {
	d := testDaemon(t)
	for i := 0; i < 5; i++ {
		require.True(t, d.push(TriggerShow))
	}
	d.drain()
	require.Empty(t, d.queue)
}

func TestRunSessionCommitsToHistory(t *testing.T) {
	d := testDaemon(t)
	adapter := &scriptedAdapter{
		windows: []backend.Window{
			{ID: 1, Focused: true},
			{ID: 2},
			{ID: 3},
		},
	}
	d.adapter = adapter
	d.newPresenter = func() switcher.Presenter {
		return &autoCommitPresenter{events: make(chan switcher.Command, 1)}
	}

	d.runSession(TriggerShow)

	// Initial selection is the previous window; committing focuses it and
	// records the focus in the history.
	require.Equal(t, []uint64{2}, adapter.focused)
}

type scriptedAdapter struct {
	windows []backend.Window
	focused []uint64
}

func (a *scriptedAdapter) Kind() backend.Kind                      { return backend.KindNiri }
func (a *scriptedAdapter) ListWindows() ([]backend.Window, error)  { return a.windows, nil }
func (a *scriptedAdapter) FocusedOutput() (*backend.Output, error) { return nil, nil }
func (a *scriptedAdapter) Focus(id uint64) error {
	a.focused = append(a.focused, id)
	return nil
}

// autoCommitPresenter commits the session as soon as it is shown.
type autoCommitPresenter struct {
	events chan switcher.Command
}

func (p *autoCommitPresenter) Show([]switcher.Entry, int, *backend.Output) error {
	p.events <- switcher.Commit
	return nil
}

func (p *autoCommitPresenter) Redraw(int)                      {}
func (p *autoCommitPresenter) Events() <-chan switcher.Command { return p.events }
func (p *autoCommitPresenter) Close()                          {}

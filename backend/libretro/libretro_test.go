package libretro

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/rylanraj/manicemu/backend"
	"github.com/rylanraj/manicemu/console"
)

type cheatCall struct {
	index   int
	enabled bool
	code    string
}

type fakeHost struct {
	loadedCore   string
	coreUnloads  int
	loadedGame   string
	gameUnloads  int
	state        []byte
	restored     []byte
	resets       int
	cheatCalls   []cheatCall
	cheatErrCode string
}

func (h *fakeHost) LoadCore(path string) error { h.loadedCore = path; return nil }
func (h *fakeHost) UnloadCore()                { h.coreUnloads++ }
func (h *fakeHost) LoadGame(romPath string) error {
	h.loadedGame = romPath
	return nil
}
func (h *fakeHost) UnloadGame()             { h.gameUnloads++ }
func (h *fakeHost) SetRunning(running bool) {}

func (h *fakeHost) Serialize() ([]byte, error)    { return h.state, nil }
func (h *fakeHost) Unserialize(data []byte) error { h.restored = data; return nil }
func (h *fakeHost) CheatReset()                   { h.resets++; h.cheatCalls = nil }

func (h *fakeHost) CheatSet(index int, enabled bool, code string) error {
	if code == h.cheatErrCode {
		return errors.New("rejected")
	}
	h.cheatCalls = append(h.cheatCalls, cheatCall{index, enabled, code})
	return nil
}

func (h *fakeHost) SetButton(player int, code console.Code, pressed bool) {}
func (h *fakeHost) SetAxis(player int, axis console.Axis, value float64)  {}
func (h *fakeHost) ApplyOptions(opts backend.RuntimeOptions)              {}
func (h *fakeHost) RouteDisplay(external bool)                            {}

// immediate runs deferred work synchronously so tests stay deterministic.
func immediate(d time.Duration, f func()) { f() }

func newTestBridge(host *fakeHost) *Bridge {
	b := newBridge(host, "/cores", afero.NewMemMapFs())
	b.delayFn = immediate
	return b
}

func startGame(t *testing.T, b *Bridge, id string, ct console.Type, core string) {
	t.Helper()
	game := backend.GameInfo{ID: id, Path: "/roms/" + id + ".bin", Console: ct, Core: core}
	require.NoError(t, b.Start(game, backend.SessionOptions{}))
}

func TestStartPicksConsoleCore(t *testing.T) {
	host := &fakeHost{}
	b := newTestBridge(host)
	startGame(t, b, "g1", console.Saturn, "")

	require.Equal(t, "mednafen_saturn", b.CoreID())
	require.Equal(t, "/cores/mednafen_saturn_libretro.so", host.loadedCore)
	require.Equal(t, "/roms/g1.bin", host.loadedGame)
}

func TestStartExplicitCoreWins(t *testing.T) {
	host := &fakeHost{}
	b := newTestBridge(host)
	startGame(t, b, "g1", console.Saturn, "yabause")
	require.Equal(t, "yabause", b.CoreID())
}

func TestCoreSwapOnConsoleChange(t *testing.T) {
	host := &fakeHost{}
	b := newTestBridge(host)
	startGame(t, b, "g1", console.Saturn, "")
	startGame(t, b, "g2", console.PSP, "")

	require.Equal(t, 1, host.coreUnloads)
	require.Equal(t, 1, host.gameUnloads)
	require.Equal(t, "ppsspp", b.CoreID())
}

func TestCoreReusedForSameConsole(t *testing.T) {
	host := &fakeHost{}
	b := newTestBridge(host)
	startGame(t, b, "g1", console.Saturn, "")
	startGame(t, b, "g2", console.Saturn, "")

	require.Equal(t, 0, host.coreUnloads)
	require.Equal(t, "/roms/g2.bin", host.loadedGame)
}

func TestSaveLoadState(t *testing.T) {
	host := &fakeHost{state: []byte("snapshot")}
	b := newTestBridge(host)
	startGame(t, b, "g1", console.Saturn, "")

	loc := backend.StateLocator{Path: "/states/g1/state-1.state"}
	require.NoError(t, b.SaveState(loc))
	data, err := afero.ReadFile(b.fs, loc.Path)
	require.NoError(t, err)
	require.Equal(t, "snapshot", string(data))

	require.NoError(t, b.LoadState(loc))
	require.Equal(t, "snapshot", string(host.restored))
}

func TestCheatResetAndReplay(t *testing.T) {
	host := &fakeHost{}
	b := newTestBridge(host)
	startGame(t, b, "g1", console.Saturn, "")

	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c1", Code: "AAAA", Enabled: true}))
	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c2", Code: "BBBB", Enabled: true}))

	// Second application resets and replays both entries in index order.
	require.Equal(t, 2, host.resets)
	require.Equal(t, []cheatCall{{0, true, "AAAA"}, {1, true, "BBBB"}}, host.cheatCalls)

	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c1", Code: "AAAA", Enabled: false}))
	require.Equal(t, []cheatCall{{0, false, "AAAA"}, {1, true, "BBBB"}}, host.cheatCalls)
}

func TestCheatRejectionDoesNotPoisonBatch(t *testing.T) {
	host := &fakeHost{cheatErrCode: "BROKEN"}
	b := newTestBridge(host)
	startGame(t, b, "g1", console.Saturn, "")

	err := b.ApplyCheat(backend.Cheat{ID: "bad", Name: "Bad", Code: "BROKEN", Enabled: true})
	require.ErrorIs(t, err, backend.ErrBackendFailure)

	// A later good cheat replays without the rejected entry and without
	// inheriting its failure.
	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "good", Name: "Infinite HP", Code: "AAAA", Enabled: true}))
	require.Equal(t, []cheatCall{{1, true, "AAAA"}}, host.cheatCalls)

	// Editing the bad code gives it another chance.
	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "bad", Name: "Bad", Code: "FIXED", Enabled: true}))
	require.Equal(t, []cheatCall{{0, true, "FIXED"}, {1, true, "AAAA"}}, host.cheatCalls)
}

func TestCheatPSPChangedTextOnly(t *testing.T) {
	host := &fakeHost{}
	b := newTestBridge(host)
	startGame(t, b, "g1", console.PSP, "")

	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c1", Code: "AAAA", Enabled: true}))
	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c2", Code: "BBBB", Enabled: true}))
	require.Equal(t, 0, host.resets)
	require.Equal(t, []cheatCall{{0, true, "AAAA"}, {1, true, "BBBB"}}, host.cheatCalls)

	// Unchanged entry does not trigger a reload.
	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c1", Code: "AAAA", Enabled: true}))
	require.Len(t, host.cheatCalls, 2)

	// Changed text reloads only that entry.
	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c1", Code: "CCCC", Enabled: true}))
	require.Equal(t, cheatCall{0, true, "CCCC"}, host.cheatCalls[2])
}

func TestCheatPicodriveDeferredOnce(t *testing.T) {
	host := &fakeHost{}
	b := newTestBridge(host)

	var delays []time.Duration
	b.delayFn = func(d time.Duration, f func()) {
		delays = append(delays, d)
		f()
	}
	startGame(t, b, "g1", console.MasterSystem, "picodrive")

	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c1", Code: "AAAA", Enabled: true}))
	require.Equal(t, []time.Duration{picodriveCheatDelay}, delays)

	// Only the first activation of a session is deferred.
	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c2", Code: "BBBB", Enabled: true}))
	require.Len(t, delays, 1)
	require.Equal(t, []cheatCall{{0, true, "AAAA"}, {1, true, "BBBB"}}, host.cheatCalls)
}

func TestStopClearsSession(t *testing.T) {
	host := &fakeHost{}
	b := newTestBridge(host)
	startGame(t, b, "g1", console.Saturn, "")
	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c1", Code: "AAAA", Enabled: true}))

	require.NoError(t, b.Stop())
	require.Equal(t, 1, host.gameUnloads)
	if b.Running() {
		t.Error("running after stop")
	}

	err := b.SaveState(backend.StateLocator{Path: "/states/x"})
	if !errors.Is(err, backend.ErrBackendFailure) {
		t.Fatalf("got %v, want ErrBackendFailure", err)
	}
}

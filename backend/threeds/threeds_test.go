package threeds

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rylanraj/manicemu/backend"
	"github.com/rylanraj/manicemu/console"
)

type fakeDevice struct {
	booted    string
	shutdown  bool
	running   bool
	saved     []int
	loaded    []int
	blob      []byte
	enabled   []string
	cheatErr  error
	slotErr   error
	runningCh []bool
}

func (d *fakeDevice) Boot(romPath string) error {
	d.booted = romPath
	d.running = true
	return nil
}

func (d *fakeDevice) Shutdown() { d.shutdown = true }

func (d *fakeDevice) SetRunning(running bool) {
	d.running = running
	d.runningCh = append(d.runningCh, running)
}

func (d *fakeDevice) SaveSlot(slot int) error {
	if d.slotErr != nil {
		return d.slotErr
	}
	d.saved = append(d.saved, slot)
	return nil
}

func (d *fakeDevice) LoadSlot(slot int) error {
	if d.slotErr != nil {
		return d.slotErr
	}
	d.loaded = append(d.loaded, slot)
	return nil
}

func (d *fakeDevice) SetButton(code console.Code, pressed bool) {}
func (d *fakeDevice) SetAxis(axis console.Axis, value float64)  {}
func (d *fakeDevice) ApplyOptions(opts backend.RuntimeOptions)  {}
func (d *fakeDevice) RouteDisplay(external bool)                {}

func (d *fakeDevice) LoadCheats(blob []byte, enabledNames []string) error {
	if d.cheatErr != nil {
		return d.cheatErr
	}
	d.blob = blob
	d.enabled = enabledNames
	return nil
}

func startBridge(t *testing.T) (*Bridge, *fakeDevice) {
	t.Helper()
	dev := &fakeDevice{}
	b := New(dev)
	game := backend.GameInfo{ID: "g1", Path: "/roms/zelda.3ds", Console: console.ThreeDS}
	require.NoError(t, b.Start(game, backend.SessionOptions{}))
	return b, dev
}

func TestSlotFromPath(t *testing.T) {
	tests := []struct {
		path    string
		slot    int
		wantErr bool
	}{
		{"/states/g1/state-3.state", 3, false},
		{"state-0.state", 0, false},
		{"/a/b/auto-12.state", 12, false},
		{"/states/g1/state.state", 0, true},
		{"/states/g1/state-.state", 0, true},
		{"/states/g1/state-x.state", 0, true},
	}
	for _, tt := range tests {
		slot, err := SlotFromPath(tt.path)
		if tt.wantErr {
			if err == nil {
				t.Errorf("SlotFromPath(%q) = %d, want error", tt.path, slot)
			}
			continue
		}
		if err != nil {
			t.Errorf("SlotFromPath(%q): %v", tt.path, err)
			continue
		}
		if slot != tt.slot {
			t.Errorf("SlotFromPath(%q) = %d, want %d", tt.path, slot, tt.slot)
		}
	}
}

func TestSaveLoadBySlot(t *testing.T) {
	b, dev := startBridge(t)

	require.NoError(t, b.SaveState(backend.StateLocator{Path: "/states/g1/state-4.state"}))
	require.Equal(t, []int{4}, dev.saved)

	require.NoError(t, b.LoadState(backend.StateLocator{Path: "/states/g1/state-4.state"}))
	require.Equal(t, []int{4}, dev.loaded)
}

func TestSaveBadLocator(t *testing.T) {
	b, _ := startBridge(t)
	err := b.SaveState(backend.StateLocator{Path: "/states/g1/state.state"})
	if !errors.Is(err, backend.ErrBackendFailure) {
		t.Fatalf("got %v, want ErrBackendFailure", err)
	}
}

func TestPauseResumeTransitionsOnly(t *testing.T) {
	b, dev := startBridge(t)

	b.Pause()
	b.Pause()
	b.Resume()
	b.Resume()
	require.Equal(t, []bool{false, true}, dev.runningCh)
}

func TestCheatComposition(t *testing.T) {
	b, dev := startBridge(t)

	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c1", Name: "Moon Jump", Code: "00112233 44556677", Dialect: backend.DialectCheatFile, Enabled: true}))
	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c2", Name: "Max Coins", Code: "8899AABB CCDDEEFF", Dialect: backend.DialectCheatFile, Enabled: false}))

	blob := string(dev.blob)
	if !strings.Contains(blob, "[Moon Jump]\n00112233 44556677") {
		t.Errorf("blob missing first cheat section:\n%s", blob)
	}
	if !strings.Contains(blob, "[Max Coins]") {
		t.Errorf("blob missing second cheat section:\n%s", blob)
	}
	require.Equal(t, []string{"Moon Jump"}, dev.enabled)

	// Disabling re-sends the blob with the name dropped from the list.
	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c1", Name: "Moon Jump", Code: "00112233 44556677", Dialect: backend.DialectCheatFile, Enabled: false}))
	if len(dev.enabled) != 0 {
		t.Errorf("enabled list = %v, want empty", dev.enabled)
	}
}

func TestStopClearsCheats(t *testing.T) {
	b, dev := startBridge(t)
	require.NoError(t, b.ApplyCheat(backend.Cheat{ID: "c1", Name: "Moon Jump", Code: "00112233", Enabled: true}))
	require.NoError(t, b.Stop())
	if !dev.shutdown {
		t.Error("device not shut down")
	}

	err := b.ApplyCheat(backend.Cheat{ID: "c1", Name: "Moon Jump", Code: "00112233", Enabled: true})
	if !errors.Is(err, backend.ErrBackendFailure) {
		t.Fatalf("got %v, want ErrBackendFailure", err)
	}
}

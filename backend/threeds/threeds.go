// Package threeds drives the dedicated 3DS bridge. The bridge has its own
// save-state model addressed by integer slot, and takes cheats as one
// batched cheats-file blob plus an explicit enabled-name list.
package threeds

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rylanraj/manicemu/backend"
	"github.com/rylanraj/manicemu/console"
)

// Cooldown windows for the 3DS bridge. Snapshots are the most expensive of
// the three backends, hence the longest windows.
const (
	saveCooldown = 5 * time.Second
	loadCooldown = 2 * time.Second
)

// Device is the narrow surface of the 3DS bridge library. The emulation
// behind it is opaque to the coordinator.
type Device interface {
	Boot(romPath string) error
	Shutdown()
	SetRunning(running bool)
	SaveSlot(slot int) error
	LoadSlot(slot int) error
	SetButton(code console.Code, pressed bool)
	SetAxis(axis console.Axis, value float64)
	LoadCheats(blob []byte, enabledNames []string) error
	ApplyOptions(opts backend.RuntimeOptions)
	RouteDisplay(external bool)
}

// Bridge implements the capability contract on top of the 3DS device.
type Bridge struct {
	dev Device

	game    backend.GameInfo
	started bool
	running bool

	// Cheat composition, rebuilt into one blob on every change.
	cheats     map[string]backend.Cheat
	cheatOrder []string

	onStop func(error)
}

// Compile-time interface check.
var _ backend.Backend = (*Bridge)(nil)

// New creates a bridge around the given device.
func New(dev Device) *Bridge {
	return &Bridge{
		dev:    dev,
		cheats: make(map[string]backend.Cheat),
	}
}

// Kind implements backend.Backend.
func (b *Bridge) Kind() backend.Kind { return backend.KindThreeDS }

// CoreID implements backend.Backend.
func (b *Bridge) CoreID() string { return "citra" }

// Limits implements backend.Backend.
func (b *Bridge) Limits() backend.Limits {
	return backend.Limits{SaveCooldown: saveCooldown, LoadCooldown: loadCooldown}
}

// Start boots the bridge with the game. Starting the already-running game
// again is a no-op.
func (b *Bridge) Start(game backend.GameInfo, opts backend.SessionOptions) error {
	if b.started && b.game.ID == game.ID {
		return nil
	}
	if b.started {
		if err := b.Stop(); err != nil {
			return err
		}
	}
	if err := b.dev.Boot(game.Path); err != nil {
		return fmt.Errorf("%w: boot: %v", backend.ErrBackendFailure, err)
	}
	b.game = game
	b.started = true
	b.running = true
	return nil
}

// Pause implements backend.Backend.
func (b *Bridge) Pause() {
	if b.started && b.running {
		b.dev.SetRunning(false)
		b.running = false
	}
}

// Resume implements backend.Backend.
func (b *Bridge) Resume() {
	if b.started && !b.running {
		b.dev.SetRunning(true)
		b.running = true
	}
}

// Running implements backend.Backend.
func (b *Bridge) Running() bool { return b.started && b.running }

// Stop shuts the device down and clears session state.
func (b *Bridge) Stop() error {
	if !b.started {
		return nil
	}
	b.dev.Shutdown()
	b.clearSession()
	b.onStop = nil
	return nil
}

func (b *Bridge) clearSession() {
	b.started = false
	b.running = false
	b.game = backend.GameInfo{}
	b.cheats = make(map[string]backend.Cheat)
	b.cheatOrder = nil
}

// SetStopHandler implements backend.Backend.
func (b *Bridge) SetStopHandler(fn func(err error)) { b.onStop = fn }

// ReportStop is called by the device layer when the bridge dies outside
// a Stop call.
func (b *Bridge) ReportStop(err error) {
	if !b.started {
		return
	}
	b.clearSession()
	if fn := b.onStop; fn != nil {
		b.onStop = nil
		fn(err)
	}
}

// ActivateInput implements backend.Backend. The bridge is single-player;
// the player index is ignored.
func (b *Bridge) ActivateInput(code console.Code, value float64, player int) {
	if b.started {
		b.dev.SetButton(code, true)
	}
}

// DeactivateInput implements backend.Backend.
func (b *Bridge) DeactivateInput(code console.Code, player int) {
	if b.started {
		b.dev.SetButton(code, false)
	}
}

// SetAxis implements backend.Backend.
func (b *Bridge) SetAxis(axis console.Axis, value float64, player int) {
	if b.started {
		b.dev.SetAxis(axis, value)
	}
}

// SaveState saves to the slot derived from the locator path's filename
// suffix.
func (b *Bridge) SaveState(loc backend.StateLocator) error {
	if !b.started {
		return fmt.Errorf("%w: no game started", backend.ErrBackendFailure)
	}
	slot, err := SlotFromPath(loc.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", backend.ErrBackendFailure, err)
	}
	if err := b.dev.SaveSlot(slot); err != nil {
		return fmt.Errorf("%w: save slot %d: %v", backend.ErrBackendFailure, slot, err)
	}
	return nil
}

// LoadState loads from the slot derived from the locator path's filename
// suffix.
func (b *Bridge) LoadState(loc backend.StateLocator) error {
	if !b.started {
		return fmt.Errorf("%w: no game started", backend.ErrBackendFailure)
	}
	slot, err := SlotFromPath(loc.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", backend.ErrBackendFailure, err)
	}
	if err := b.dev.LoadSlot(slot); err != nil {
		return fmt.Errorf("%w: load slot %d: %v", backend.ErrBackendFailure, slot, err)
	}
	return nil
}

// ApplyCheat folds one cheat into the batched composition and pushes the
// rebuilt blob plus the enabled-name list to the device.
func (b *Bridge) ApplyCheat(c backend.Cheat) error {
	if !b.started {
		return fmt.Errorf("%w: no game started", backend.ErrBackendFailure)
	}
	if _, exists := b.cheats[c.ID]; !exists {
		b.cheatOrder = append(b.cheatOrder, c.ID)
	}
	b.cheats[c.ID] = c

	blob, enabled := b.buildCheatFile()
	if err := b.dev.LoadCheats(blob, enabled); err != nil {
		return fmt.Errorf("%w: cheat %q: %v", backend.ErrBackendFailure, c.Name, err)
	}
	return nil
}

// buildCheatFile renders the composition into the bridge's cheat-file
// format: one [name] section per cheat followed by its code lines.
func (b *Bridge) buildCheatFile() ([]byte, []string) {
	var sb strings.Builder
	var enabled []string
	for _, id := range b.cheatOrder {
		c := b.cheats[id]
		sb.WriteString("[" + c.Name + "]\n")
		sb.WriteString(strings.TrimSpace(c.Code))
		sb.WriteString("\n\n")
		if c.Enabled {
			enabled = append(enabled, c.Name)
		}
	}
	sort.Strings(enabled)
	return []byte(sb.String()), enabled
}

// ApplyOptions implements backend.Backend.
func (b *Bridge) ApplyOptions(opts backend.RuntimeOptions) {
	if b.started {
		b.dev.ApplyOptions(opts)
	}
}

// RouteDisplay implements backend.Backend.
func (b *Bridge) RouteDisplay(external bool) {
	b.dev.RouteDisplay(external)
}

// SlotFromPath derives the bridge's integer slot from a state filename
// suffix, e.g. "state-3.state" yields 3.
func SlotFromPath(path string) (int, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	i := strings.LastIndex(base, "-")
	if i < 0 || i == len(base)-1 {
		return 0, fmt.Errorf("no slot suffix in %q", path)
	}
	slot, err := strconv.Atoi(base[i+1:])
	if err != nil {
		return 0, fmt.Errorf("bad slot suffix in %q: %v", path, err)
	}
	return slot, nil
}

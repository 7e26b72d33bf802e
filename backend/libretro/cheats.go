package libretro

import (
	"fmt"

	"github.com/rylanraj/manicemu/backend"
)

// cheatEntry is one slot in the index-addressed composition. A rejection
// by the core is remembered per entry so replays triggered by other
// cheats neither re-send the bad code nor get charged with its failure.
type cheatEntry struct {
	cheat backend.Cheat
	err   error
}

// ApplyCheat folds one cheat into the index-addressed composition and
// pushes it to the core. Most cores get a full reset and replay of the
// whole list, because index state inside the core drifts otherwise. PSP
// reloads are expensive enough that only the changed entry is pushed.
// Picodrive cores choke on cheats arriving during initialization, so the
// first replay of a session is deferred by a fixed delay.
func (b *Bridge) ApplyCheat(c backend.Cheat) error {
	if !b.started {
		return fmt.Errorf("%w: no game started", backend.ErrBackendFailure)
	}

	idx := -1
	for i := range b.cheats {
		if b.cheats[i].cheat.ID == c.ID {
			idx = i
			break
		}
	}

	changed := true
	if idx < 0 {
		idx = len(b.cheats)
		b.cheats = append(b.cheats, cheatEntry{cheat: c})
	} else {
		prev := b.cheats[idx]
		changed = prev.cheat.Code != c.Code || prev.cheat.Enabled != c.Enabled
		b.cheats[idx] = cheatEntry{cheat: c}
		if !changed {
			b.cheats[idx].err = prev.err
		}
	}

	if isPSP(b.coreName) {
		// Changed text only; untouched entries keep their core-side slots.
		if !changed {
			if b.cheats[idx].err != nil {
				return fmt.Errorf("%w: cheat %q: %v", backend.ErrBackendFailure, c.Name, b.cheats[idx].err)
			}
			return nil
		}
		if err := b.host.CheatSet(idx, c.Enabled, c.Code); err != nil {
			b.cheats[idx].err = err
			return fmt.Errorf("%w: cheat %q: %v", backend.ErrBackendFailure, c.Name, err)
		}
		return nil
	}

	if isPicodrive(b.coreName) && !b.picodriveDeferred {
		b.picodriveDeferred = true
		b.delayFn(picodriveCheatDelay, func() {
			b.acquire()
			defer b.release()
			b.replayCheats(-1)
		})
		return nil
	}

	b.acquire()
	defer b.release()
	if err := b.replayCheats(idx); err != nil {
		return fmt.Errorf("%w: cheat %q: %v", backend.ErrBackendFailure, c.Name, err)
	}
	return nil
}

// replayCheats resets the core's cheat list and replays the composition
// in index order. Previously rejected entries are skipped unless they
// are the trigger of this replay, and only the trigger's own failure is
// returned; other entries always get replayed regardless. Caller holds
// the host reservation.
func (b *Bridge) replayCheats(trigger int) error {
	b.host.CheatReset()
	var triggerErr error
	for i := range b.cheats {
		e := &b.cheats[i]
		if e.err != nil && i != trigger {
			continue
		}
		if err := b.host.CheatSet(i, e.cheat.Enabled, e.cheat.Code); err != nil {
			e.err = err
			if i == trigger {
				triggerErr = err
			}
			continue
		}
		e.err = nil
	}
	return triggerErr
}

func isPSP(core string) bool {
	return core == "ppsspp"
}

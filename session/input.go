package session

import (
	"sync"

	"github.com/rylanraj/manicemu/console"
)

// inputRouter translates abstract input symbols into backend button and
// axis calls for one session. Analog composition is per player.
type inputRouter struct {
	mu      sync.Mutex
	mapping console.Mapping
	analog  map[int]*console.AnalogState
}

func newInputRouter(t console.Type) *inputRouter {
	return &inputRouter{
		mapping: console.MappingFor(t),
		analog:  make(map[int]*console.AnalogState),
	}
}

func (r *inputRouter) stateFor(player int) *console.AnalogState {
	s, ok := r.analog[player]
	if !ok {
		s = console.NewAnalogState()
		r.analog[player] = s
	}
	return s
}

// HandleInput routes one symbol activation into the backend. Unmapped
// symbols are dropped silently; they have no physical equivalent on the
// session's console. Magnitude applies to thumbstick symbols only.
func (c *Controller) HandleInput(sym console.Input, pressed bool, magnitude float64, player int) {
	if !c.State().Active() {
		return
	}

	r := c.input
	r.mu.Lock()
	if code, ok := r.mapping.Resolve(sym); ok {
		r.mu.Unlock()
		if pressed {
			c.backend.ActivateInput(code, 1, player)
		} else {
			c.backend.DeactivateInput(code, player)
		}
		return
	}

	axis, value, ok := r.stateFor(player).Apply(r.mapping, sym, pressed, magnitude)
	r.mu.Unlock()
	if ok {
		c.backend.SetAxis(axis, value, player)
	}
}

// ResetInput zeroes analog state for all players, e.g. on controller
// disconnect.
func (c *Controller) ResetInput() {
	r := c.input
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.analog {
		s.Reset()
	}
}

package console

// Input is an abstract input symbol emitted by the input layer. The set is
// shared across consoles; each console maps the symbols it has a physical
// equivalent for and leaves the rest unmapped.
type Input string

const (
	InputA      Input = "a"
	InputB      Input = "b"
	InputX      Input = "x"
	InputY      Input = "y"
	InputL      Input = "l"
	InputR      Input = "r"
	InputL2     Input = "l2"
	InputR2     Input = "r2"
	InputL3     Input = "l3"
	InputR3     Input = "r3"
	InputStart  Input = "start"
	InputSelect Input = "select"
	InputUp     Input = "up"
	InputDown   Input = "down"
	InputLeft   Input = "left"
	InputRight  Input = "right"

	InputLeftThumbstickUp    Input = "leftThumbstickUp"
	InputLeftThumbstickDown  Input = "leftThumbstickDown"
	InputLeftThumbstickLeft  Input = "leftThumbstickLeft"
	InputLeftThumbstickRight Input = "leftThumbstickRight"

	InputRightThumbstickUp    Input = "rightThumbstickUp"
	InputRightThumbstickDown  Input = "rightThumbstickDown"
	InputRightThumbstickLeft  Input = "rightThumbstickLeft"
	InputRightThumbstickRight Input = "rightThumbstickRight"
)

// AllInputs returns every abstract input symbol.
func AllInputs() []Input {
	return []Input{
		InputA, InputB, InputX, InputY,
		InputL, InputR, InputL2, InputR2, InputL3, InputR3,
		InputStart, InputSelect,
		InputUp, InputDown, InputLeft, InputRight,
		InputLeftThumbstickUp, InputLeftThumbstickDown,
		InputLeftThumbstickLeft, InputLeftThumbstickRight,
		InputRightThumbstickUp, InputRightThumbstickDown,
		InputRightThumbstickLeft, InputRightThumbstickRight,
	}
}

// Code is a backend-specific button code. The value space is owned by the
// backend driving the console; codes from different consoles are not
// comparable.
type Code uint32

// RetroPad button codes used by the shared libretro backend. The layout
// follows the libretro joypad device IDs.
const (
	RetroB      Code = 0
	RetroY      Code = 1
	RetroSelect Code = 2
	RetroStart  Code = 3
	RetroUp     Code = 4
	RetroDown   Code = 5
	RetroLeft   Code = 6
	RetroRight  Code = 7
	RetroA      Code = 8
	RetroX      Code = 9
	RetroL      Code = 10
	RetroR      Code = 11
	RetroL2     Code = 12
	RetroR2     Code = 13
	RetroL3     Code = 14
	RetroR3     Code = 15
)

// Axis identifies a signed analog axis on the backend.
type Axis int

const (
	AxisLeftX Axis = iota
	AxisLeftY
	AxisRightX
	AxisRightY
)

// HalfAxis describes one unipolar half of a signed axis. Activating the
// symbol drives the axis to Sign * magnitude; deactivating returns it to 0.
type HalfAxis struct {
	Axis Axis
	Sign float64
}

// Mapping is the immutable per-console lookup from abstract symbol to
// backend button code or analog half-axis.
type Mapping struct {
	buttons map[Input]Code
	axes    map[Input]HalfAxis
}

// Resolve returns the backend button code for a symbol. The second return
// is false for symbols the console has no physical equivalent for, and for
// symbols that resolve to an analog axis instead of a button.
func (m Mapping) Resolve(in Input) (Code, bool) {
	c, ok := m.buttons[in]
	return c, ok
}

// ResolveAxis returns the half-axis for a directional thumbstick symbol.
// The second return is false for non-axis symbols and for sticks the
// console does not have.
func (m Mapping) ResolveAxis(in Input) (HalfAxis, bool) {
	h, ok := m.axes[in]
	return h, ok
}

// Mapped reports whether the symbol has any mapping (button or axis).
func (m Mapping) Mapped(in Input) bool {
	if _, ok := m.buttons[in]; ok {
		return true
	}
	_, ok := m.axes[in]
	return ok
}

// AnalogState reconstructs continuous signed axis values from discrete
// half-axis activations. The input layer only ever emits directional
// activations, never a combined vector, so this is the single place where
// analog state is composed.
type AnalogState struct {
	values map[Axis]float64
}

// NewAnalogState returns an empty analog state.
func NewAnalogState() *AnalogState {
	return &AnalogState{values: make(map[Axis]float64)}
}

// Apply updates the axis driven by the given symbol. Activating the
// positive half sets the axis to +magnitude, the negative half to
// -magnitude; deactivating either half returns the axis to 0. The
// resulting axis and value are returned; ok is false when the symbol does
// not resolve to an axis on this console.
func (s *AnalogState) Apply(m Mapping, in Input, pressed bool, magnitude float64) (axis Axis, value float64, ok bool) {
	h, ok := m.ResolveAxis(in)
	if !ok {
		return 0, 0, false
	}
	if pressed {
		s.values[h.Axis] = h.Sign * magnitude
	} else {
		s.values[h.Axis] = 0
	}
	return h.Axis, s.values[h.Axis], true
}

// Value returns the current composed value of an axis.
func (s *AnalogState) Value(a Axis) float64 {
	return s.values[a]
}

// Reset zeroes all axes.
func (s *AnalogState) Reset() {
	for a := range s.values {
		s.values[a] = 0
	}
}

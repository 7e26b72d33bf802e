package console

// Per-console symbol tables. Native consoles use their core's own button
// code space; libretro consoles share the RetroPad layout. Aliasing here
// is deliberate and load-bearing: a mismatched entry is a silent functional
// bug, not a runtime error, so every table is covered by the regression
// test in input_test.go.

var leftStickAxes = map[Input]HalfAxis{
	InputLeftThumbstickUp:    {AxisLeftY, +1},
	InputLeftThumbstickDown:  {AxisLeftY, -1},
	InputLeftThumbstickLeft:  {AxisLeftX, -1},
	InputLeftThumbstickRight: {AxisLeftX, +1},
}

var rightStickAxes = map[Input]HalfAxis{
	InputRightThumbstickUp:    {AxisRightY, +1},
	InputRightThumbstickDown:  {AxisRightY, -1},
	InputRightThumbstickLeft:  {AxisRightX, -1},
	InputRightThumbstickRight: {AxisRightX, +1},
}

func bothStickAxes() map[Input]HalfAxis {
	m := make(map[Input]HalfAxis, len(leftStickAxes)+len(rightStickAxes))
	for k, v := range leftStickAxes {
		m[k] = v
	}
	for k, v := range rightStickAxes {
		m[k] = v
	}
	return m
}

var mappings = map[Type]Mapping{
	NES: {buttons: map[Input]Code{
		InputA: 0, InputB: 1, InputSelect: 2, InputStart: 3,
		InputUp: 4, InputDown: 5, InputLeft: 6, InputRight: 7,
	}},

	SNES: {buttons: map[Input]Code{
		InputA: 0, InputB: 1, InputX: 2, InputY: 3,
		InputL: 4, InputR: 5, InputSelect: 6, InputStart: 7,
		InputUp: 8, InputDown: 9, InputLeft: 10, InputRight: 11,
	}},

	GB: {buttons: map[Input]Code{
		InputA: 0, InputB: 1, InputSelect: 2, InputStart: 3,
		InputUp: 4, InputDown: 5, InputLeft: 6, InputRight: 7,
	}},

	GBC: {buttons: map[Input]Code{
		InputA: 0, InputB: 1, InputSelect: 2, InputStart: 3,
		InputUp: 4, InputDown: 5, InputLeft: 6, InputRight: 7,
	}},

	GBA: {buttons: map[Input]Code{
		InputA: 0, InputB: 1, InputL: 2, InputR: 3,
		InputSelect: 4, InputStart: 5,
		InputUp: 6, InputDown: 7, InputLeft: 8, InputRight: 9,
	}},

	NDS: {buttons: map[Input]Code{
		InputA: 0, InputB: 1, InputX: 2, InputY: 3,
		InputL: 4, InputR: 5, InputSelect: 6, InputStart: 7,
		InputUp: 8, InputDown: 9, InputLeft: 10, InputRight: 11,
	}},

	// The C buttons are driven by the right thumbstick symbols; Z sits on
	// the l2 symbol since N64 has no second shoulder row.
	N64: {
		buttons: map[Input]Code{
			InputA: 0, InputB: 1, InputL2: 2, InputStart: 3,
			InputUp: 4, InputDown: 5, InputLeft: 6, InputRight: 7,
			InputL: 8, InputR: 9,
		},
		axes: bothStickAxes(),
	},

	// Genesis face buttons alias onto the core's six-button layout:
	// abstract a/b land on the middle/right columns (B, C), x/y/l on
	// A, Y, X, and r on Z. "select" is the Mode button.
	Genesis: {buttons: map[Input]Code{
		InputA: 1, InputB: 2, InputX: 0, InputY: 4, InputL: 3, InputR: 5,
		InputStart: 6, InputSelect: 7,
		InputUp: 8, InputDown: 9, InputLeft: 10, InputRight: 11,
	}},

	ThreeDS: {
		buttons: map[Input]Code{
			InputA: 0, InputB: 1, InputX: 2, InputY: 3,
			InputL: 4, InputR: 5, InputL2: 6, InputR2: 7,
			InputSelect: 8, InputStart: 9,
			InputUp: 10, InputDown: 11, InputLeft: 12, InputRight: 13,
		},
		axes: bothStickAxes(),
	},

	// Master System button 1 sits on the RetroPad B slot and button 2 on
	// the A slot; the console Pause button is Start. There is no Select.
	MasterSystem: {buttons: map[Input]Code{
		InputA: RetroB, InputB: RetroA, InputStart: RetroStart,
		InputUp: RetroUp, InputDown: RetroDown, InputLeft: RetroLeft, InputRight: RetroRight,
	}},

	GameGear: {buttons: map[Input]Code{
		InputA: RetroB, InputB: RetroA, InputStart: RetroStart,
		InputUp: RetroUp, InputDown: RetroDown, InputLeft: RetroLeft, InputRight: RetroRight,
	}},

	// Saturn's six face buttons: A/B/C on the bottom row (Y, B, A slots),
	// X/Y/Z on the top row (X slot, L, R).
	Saturn: {buttons: map[Input]Code{
		InputA: RetroB, InputB: RetroA, InputX: RetroY, InputY: RetroX,
		InputL: RetroL, InputR: RetroR,
		InputStart: RetroStart,
		InputUp: RetroUp, InputDown: RetroDown, InputLeft: RetroLeft, InputRight: RetroRight,
	}},

	PS1: {
		buttons: map[Input]Code{
			InputA: RetroB, InputB: RetroA, InputX: RetroX, InputY: RetroY,
			InputL: RetroL, InputR: RetroR, InputL2: RetroL2, InputR2: RetroR2,
			InputL3: RetroL3, InputR3: RetroR3,
			InputStart: RetroStart, InputSelect: RetroSelect,
			InputUp: RetroUp, InputDown: RetroDown, InputLeft: RetroLeft, InputRight: RetroRight,
		},
		axes: bothStickAxes(),
	},

	PSP: {
		buttons: map[Input]Code{
			InputA: RetroB, InputB: RetroA, InputX: RetroX, InputY: RetroY,
			InputL: RetroL, InputR: RetroR,
			InputStart: RetroStart, InputSelect: RetroSelect,
			InputUp: RetroUp, InputDown: RetroDown, InputLeft: RetroLeft, InputRight: RetroRight,
		},
		axes: leftStickAxes,
	},
}

// MappingFor returns the immutable input mapping for a console. The zero
// Mapping (nothing resolves) is returned for unknown consoles.
func MappingFor(t Type) Mapping {
	return mappings[t]
}

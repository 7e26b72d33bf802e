package console

import "testing"

// mappedSymbols is the regression table: for every console, exactly which
// abstract symbols resolve to a button and which to an axis. Any change to
// the mapping tables must be reflected here deliberately.
var mappedSymbols = map[Type]struct {
	buttons []Input
	axes    []Input
}{
	NES: {
		buttons: []Input{InputA, InputB, InputSelect, InputStart, InputUp, InputDown, InputLeft, InputRight},
	},
	SNES: {
		buttons: []Input{InputA, InputB, InputX, InputY, InputL, InputR, InputSelect, InputStart, InputUp, InputDown, InputLeft, InputRight},
	},
	GB: {
		buttons: []Input{InputA, InputB, InputSelect, InputStart, InputUp, InputDown, InputLeft, InputRight},
	},
	GBC: {
		buttons: []Input{InputA, InputB, InputSelect, InputStart, InputUp, InputDown, InputLeft, InputRight},
	},
	GBA: {
		buttons: []Input{InputA, InputB, InputL, InputR, InputSelect, InputStart, InputUp, InputDown, InputLeft, InputRight},
	},
	NDS: {
		buttons: []Input{InputA, InputB, InputX, InputY, InputL, InputR, InputSelect, InputStart, InputUp, InputDown, InputLeft, InputRight},
	},
	N64: {
		buttons: []Input{InputA, InputB, InputL, InputR, InputL2, InputStart, InputUp, InputDown, InputLeft, InputRight},
		axes:    allStickSymbols(),
	},
	Genesis: {
		buttons: []Input{InputA, InputB, InputX, InputY, InputL, InputR, InputSelect, InputStart, InputUp, InputDown, InputLeft, InputRight},
	},
	ThreeDS: {
		buttons: []Input{InputA, InputB, InputX, InputY, InputL, InputR, InputL2, InputR2, InputSelect, InputStart, InputUp, InputDown, InputLeft, InputRight},
		axes:    allStickSymbols(),
	},
	MasterSystem: {
		buttons: []Input{InputA, InputB, InputStart, InputUp, InputDown, InputLeft, InputRight},
	},
	GameGear: {
		buttons: []Input{InputA, InputB, InputStart, InputUp, InputDown, InputLeft, InputRight},
	},
	Saturn: {
		buttons: []Input{InputA, InputB, InputX, InputY, InputL, InputR, InputStart, InputUp, InputDown, InputLeft, InputRight},
	},
	PS1: {
		buttons: []Input{InputA, InputB, InputX, InputY, InputL, InputR, InputL2, InputR2, InputL3, InputR3, InputSelect, InputStart, InputUp, InputDown, InputLeft, InputRight},
		axes:    allStickSymbols(),
	},
	PSP: {
		buttons: []Input{InputA, InputB, InputX, InputY, InputL, InputR, InputSelect, InputStart, InputUp, InputDown, InputLeft, InputRight},
		axes: []Input{
			InputLeftThumbstickUp, InputLeftThumbstickDown,
			InputLeftThumbstickLeft, InputLeftThumbstickRight,
		},
	},
}

func allStickSymbols() []Input {
	return []Input{
		InputLeftThumbstickUp, InputLeftThumbstickDown,
		InputLeftThumbstickLeft, InputLeftThumbstickRight,
		InputRightThumbstickUp, InputRightThumbstickDown,
		InputRightThumbstickLeft, InputRightThumbstickRight,
	}
}

// TestMappingCoverage checks, for every console and every abstract symbol,
// that the symbol either resolves exactly as the regression table says or
// is explicitly unmapped. Nothing may silently map.
func TestMappingCoverage(t *testing.T) {
	for _, ct := range All() {
		expected, ok := mappedSymbols[ct]
		if !ok {
			t.Fatalf("%s: missing regression table entry", ct)
		}

		wantButton := make(map[Input]bool)
		for _, in := range expected.buttons {
			wantButton[in] = true
		}
		wantAxis := make(map[Input]bool)
		for _, in := range expected.axes {
			wantAxis[in] = true
		}

		m := MappingFor(ct)
		for _, in := range AllInputs() {
			_, isButton := m.Resolve(in)
			_, isAxis := m.ResolveAxis(in)

			if isButton && isAxis {
				t.Errorf("%s/%s: maps to both a button and an axis", ct, in)
			}
			if isButton != wantButton[in] {
				t.Errorf("%s/%s: button mapping = %v, want %v", ct, in, isButton, wantButton[in])
			}
			if isAxis != wantAxis[in] {
				t.Errorf("%s/%s: axis mapping = %v, want %v", ct, in, isAxis, wantAxis[in])
			}
			if m.Mapped(in) != (wantButton[in] || wantAxis[in]) {
				t.Errorf("%s/%s: Mapped = %v", ct, in, m.Mapped(in))
			}
		}
	}
}

// TestMappingNoDuplicateCodes verifies no two symbols on the same console
// land on the same backend code.
func TestMappingNoDuplicateCodes(t *testing.T) {
	for _, ct := range All() {
		m := MappingFor(ct)
		seen := make(map[Code]Input)
		for _, in := range AllInputs() {
			code, ok := m.Resolve(in)
			if !ok {
				continue
			}
			if prev, dup := seen[code]; dup {
				t.Errorf("%s: symbols %q and %q both map to code %d", ct, prev, in, code)
			}
			seen[code] = in
		}
	}
}

func TestMasterSystemAlias(t *testing.T) {
	m := MappingFor(MasterSystem)

	code, ok := m.Resolve(InputA)
	if !ok || code != RetroB {
		t.Errorf("sms button 1 should land on the RetroPad B slot, got %d (ok=%v)", code, ok)
	}
	code, ok = m.Resolve(InputB)
	if !ok || code != RetroA {
		t.Errorf("sms button 2 should land on the RetroPad A slot, got %d (ok=%v)", code, ok)
	}
	if _, ok := m.Resolve(InputSelect); ok {
		t.Error("sms has no select button; symbol must be unmapped")
	}
}

func TestAnalogComposition(t *testing.T) {
	m := MappingFor(PS1)
	s := NewAnalogState()

	axis, v, ok := s.Apply(m, InputLeftThumbstickUp, true, 0.8)
	if !ok || axis != AxisLeftY || v != 0.8 {
		t.Fatalf("up press: axis=%v v=%v ok=%v", axis, v, ok)
	}

	// Switching to the opposite half drives the axis negative.
	_, v, _ = s.Apply(m, InputLeftThumbstickDown, true, 0.5)
	if v != -0.5 {
		t.Errorf("down press: v=%v, want -0.5", v)
	}

	// Releasing either half returns the axis to center.
	_, v, _ = s.Apply(m, InputLeftThumbstickDown, false, 0.5)
	if v != 0 {
		t.Errorf("release: v=%v, want 0", v)
	}
	if s.Value(AxisLeftY) != 0 {
		t.Errorf("axis value = %v, want 0", s.Value(AxisLeftY))
	}

	// Horizontal half-axes are independent of vertical ones.
	_, v, _ = s.Apply(m, InputLeftThumbstickLeft, true, 1.0)
	if v != -1.0 {
		t.Errorf("left press: v=%v, want -1.0", v)
	}
	if s.Value(AxisLeftY) != 0 {
		t.Error("horizontal press must not disturb the vertical axis")
	}
}

func TestAnalogUnmappedStick(t *testing.T) {
	// PSP has no right stick; the symbol is explicitly unmapped.
	m := MappingFor(PSP)
	s := NewAnalogState()
	if _, _, ok := s.Apply(m, InputRightThumbstickUp, true, 1.0); ok {
		t.Error("psp right stick should not resolve")
	}
}

func TestParse(t *testing.T) {
	cases := map[string]Type{
		"gba": GBA, "3ds": ThreeDS, "ss": Saturn, "sms": MasterSystem,
		"psx": PS1, "bogus": TypeUnknown,
	}
	for in, want := range cases {
		if got := Parse(in); got != want {
			t.Errorf("Parse(%q) = %v, want %v", in, got, want)
		}
	}
}

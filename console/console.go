// Package console enumerates the supported consoles and owns the static
// mapping from abstract input symbols to backend button codes.
package console

// Type identifies a supported console.
type Type int

const (
	TypeUnknown Type = iota
	NES
	SNES
	GB
	GBC
	GBA
	NDS
	ThreeDS
	N64
	Genesis
	MasterSystem
	GameGear
	Saturn
	PS1
	PSP
)

// BackendKind identifies which backend variant drives a console.
type BackendKind int

const (
	BackendNative BackendKind = iota
	BackendThreeDS
	BackendLibretro
)

// info holds static per-console metadata.
type info struct {
	name       string
	backend    BackendKind
	extensions []string
	cores      []string
	players    int
}

var consoleInfo = map[Type]info{
	NES:          {"Nintendo Entertainment System", BackendNative, []string{".nes"}, []string{"nestopia"}, 2},
	SNES:         {"Super Nintendo", BackendNative, []string{".sfc", ".smc"}, []string{"snes9x"}, 2},
	GB:           {"Game Boy", BackendNative, []string{".gb"}, []string{"gambatte"}, 1},
	GBC:          {"Game Boy Color", BackendNative, []string{".gbc", ".gb"}, []string{"gambatte"}, 1},
	GBA:          {"Game Boy Advance", BackendNative, []string{".gba"}, []string{"mgba"}, 1},
	NDS:          {"Nintendo DS", BackendNative, []string{".nds"}, []string{"melonds"}, 1},
	ThreeDS:      {"Nintendo 3DS", BackendThreeDS, []string{".3ds", ".cia", ".app"}, []string{"citra"}, 1},
	N64:          {"Nintendo 64", BackendNative, []string{".n64", ".z64", ".v64"}, []string{"mupen64plus"}, 4},
	Genesis:      {"Sega Genesis", BackendNative, []string{".md", ".gen", ".bin"}, []string{"genesisplusgx"}, 2},
	MasterSystem: {"Sega Master System", BackendLibretro, []string{".sms"}, []string{"genesisplusgx", "picodrive"}, 2},
	GameGear:     {"Sega Game Gear", BackendLibretro, []string{".gg"}, []string{"genesisplusgx"}, 1},
	Saturn:       {"Sega Saturn", BackendLibretro, []string{".cue", ".chd"}, []string{"mednafen_saturn", "yabause"}, 2},
	PS1:          {"PlayStation", BackendLibretro, []string{".cue", ".chd", ".pbp"}, []string{"mednafen_psx"}, 2},
	PSP:          {"PlayStation Portable", BackendLibretro, []string{".iso", ".cso", ".pbp"}, []string{"ppsspp"}, 1},
}

// All returns every supported console type.
func All() []Type {
	return []Type{
		NES, SNES, GB, GBC, GBA, NDS, ThreeDS, N64,
		Genesis, MasterSystem, GameGear, Saturn, PS1, PSP,
	}
}

// String returns the display name of the console.
func (t Type) String() string {
	if i, ok := consoleInfo[t]; ok {
		return i.name
	}
	return "Unknown"
}

// Backend returns which backend variant drives this console.
func (t Type) Backend() BackendKind {
	return consoleInfo[t].backend
}

// Extensions returns the ROM file extensions recognized for this console.
func (t Type) Extensions() []string {
	return consoleInfo[t].extensions
}

// Cores returns the cores able to run this console, in preference order.
// Consoles with more than one entry have interchangeable cores; a save
// state produced by one is not loadable under another without a forced
// load (fingerprint mismatch).
func (t Type) Cores() []string {
	return consoleInfo[t].cores
}

// Players returns the number of supported players.
func (t Type) Players() int {
	return consoleInfo[t].players
}

// Valid reports whether t names a supported console.
func (t Type) Valid() bool {
	_, ok := consoleInfo[t]
	return ok
}

// Parse converts a short console identifier (e.g. "gba", "3ds", "ss")
// to a Type. Returns TypeUnknown for unrecognized identifiers.
func Parse(s string) Type {
	switch s {
	case "nes":
		return NES
	case "snes":
		return SNES
	case "gb":
		return GB
	case "gbc":
		return GBC
	case "gba":
		return GBA
	case "nds", "ds":
		return NDS
	case "3ds":
		return ThreeDS
	case "n64":
		return N64
	case "md", "gen", "genesis":
		return Genesis
	case "sms":
		return MasterSystem
	case "gg":
		return GameGear
	case "ss", "saturn":
		return Saturn
	case "ps1", "psx":
		return PS1
	case "psp":
		return PSP
	}
	return TypeUnknown
}

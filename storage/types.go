package storage

import (
	"time"

	"github.com/rylanraj/manicemu/console"
)

// SaveKind distinguishes user-triggered from scheduled save states. The
// two kinds share a blob format but follow different retention policy.
type SaveKind string

const (
	SaveManual SaveKind = "manual"
	SaveAuto   SaveKind = "auto"
)

// GameRecord is the persisted description of an importable game.
type GameRecord struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Path    string       `json:"path"`
	Console console.Type `json:"console"`

	// Core pins a specific core for consoles with interchangeable
	// cores; empty means the console default.
	Core string `json:"core,omitempty"`

	// NextStateSeq numbers save-state files for this game. Monotonic,
	// never reused, so the 3DS bridge's slot addressing stays stable.
	NextStateSeq int `json:"next_state_seq"`

	// WarningsAcknowledged records that the console's one-time launch
	// warnings were shown and accepted.
	WarningsAcknowledged bool `json:"warnings_acknowledged,omitempty"`

	PlayTimeSeconds int64     `json:"play_time_seconds"`
	AddedAt         time.Time `json:"added_at"`
}

// SaveStateRecord describes one persisted snapshot. Records are
// append-only: the blob is never mutated after creation.
type SaveStateRecord struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	Kind      SaveKind  `json:"kind"`
	CreatedAt time.Time `json:"created_at"`

	BlobPath    string `json:"blob_path"`
	PreviewPath string `json:"preview_path,omitempty"`

	// Core and Device form the fingerprint checked at load time. A
	// state produced under a different core or device is refused
	// without an explicit force.
	Core   string `json:"core"`
	Device string `json:"device"`
}

// CheatRecord is one cheat entry belonging to a game.
type CheatRecord struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Dialect   string    `json:"dialect"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// RuntimeConfig holds the per-game mutable settings that outlive a
// session. Changes apply to the active backend immediately and are
// persisted so the next session starts with the same values.
type RuntimeConfig struct {
	GameID         string  `json:"game_id"`
	Speed          float64 `json:"speed"`
	Volume         float64 `json:"volume"`
	Haptics        bool    `json:"haptics"`
	Orientation    string  `json:"orientation,omitempty"`
	Resolution     string  `json:"resolution,omitempty"`
	SwapScreens    bool    `json:"swap_screens,omitempty"`
	ForcedFullSkin bool    `json:"forced_full_skin,omitempty"`
	Region         string  `json:"region,omitempty"`
	Language       string  `json:"language,omitempty"`
	AnalogMode     bool    `json:"analog_mode,omitempty"`
}

// DefaultRuntimeConfig returns the settings a game starts with before
// the user changes anything.
func DefaultRuntimeConfig(gameID string) RuntimeConfig {
	return RuntimeConfig{
		GameID:  gameID,
		Speed:   1.0,
		Volume:  1.0,
		Haptics: true,
	}
}

package native

import "time"

// Cooldown windows between save-state operations. These are tuning
// constants specific to the native cores; the other backends carry their
// own values.
const (
	nativeSaveCooldown = 1 * time.Second
	nativeLoadCooldown = 500 * time.Millisecond
)

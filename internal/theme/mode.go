// Package theme computes the effective light/dark appearance from the
// persisted user choice and the live system appearance signal, and owns the
// tri-state theme mode for the rest of the client.
package theme

// Mode is the user-selected theme preference.
type Mode string

const (
	// ModeAutomatic follows the system appearance.
	ModeAutomatic Mode = "automatic"

	// ModeLight forces the light appearance.
	ModeLight Mode = "light"

	// ModeDark forces the dark appearance.
	ModeDark Mode = "dark"
)

// PrefKey is the preference-store key the mode is persisted under.
const PrefKey = "theme_mode"

// ParseMode maps a persisted value to a Mode. Anything outside the known set
// (older app versions, corrupted writes) is treated as automatic; stale mode
// values are cheap to overwrite on the next explicit choice, so there is no
// purge here.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeAutomatic, ModeLight, ModeDark:
		return Mode(s)
	default:
		return ModeAutomatic
	}
}

// Appearance is the effective light/dark value applied to the UI. It is
// derived, never persisted.
type Appearance string

const (
	Light Appearance = "light"
	Dark  Appearance = "dark"
)

// Resolve computes the effective appearance from the mode and the current
// system appearance. It is the single derivation rule for the whole client;
// every recomputation trigger goes through it.
func Resolve(mode Mode, system Appearance) Appearance {
	switch mode {
	case ModeLight:
		return Light
	case ModeDark:
		return Dark
	default:
		return system
	}
}

// Package bios tracks the firmware files each console needs before a
// session can launch. Requirements are checked at pre-flight; a missing
// required file routes the user to an acquisition flow instead of a
// failed boot.
package bios

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/rylanraj/manicemu/console"
)

// File is a single BIOS/firmware file requirement.
type File struct {
	FileName string // e.g. "gba_bios.bin"
	MD5Hash  string // optional, empty when unknown
	Optional bool   // true if emulation can run without it
}

// requirements maps each console to its firmware files. Consoles absent
// from the map need no firmware.
var requirements = map[console.Type][]File{
	console.GBA: {
		{FileName: "gba_bios.bin", MD5Hash: "a860e8c0b6d573d191e4ec7db1b1e4f6", Optional: true},
	},
	console.NDS: {
		{FileName: "bios7.bin", MD5Hash: "df692a80a5b1bc90728bc3dfc76cd948"},
		{FileName: "bios9.bin", MD5Hash: "a392174eb3e572fed6447e956bde4b25"},
		{FileName: "firmware.bin"},
	},
	console.PS1: {
		{FileName: "scph5500.bin", MD5Hash: "8dd7d5296a650fac7319bce665a6a53c"},
		{FileName: "scph5501.bin", MD5Hash: "490f666e1afb15b7362b406ed1cea246"},
		{FileName: "scph5502.bin", MD5Hash: "32736f17079d0b2b7024407c39bd3050"},
	},
	console.Saturn: {
		{FileName: "sega_101.bin", MD5Hash: "85ec9ca47d8f6807718151cbcca8b964"},
		{FileName: "mpr-17933.bin", MD5Hash: "3240872c70984b6cbfda1586cab68dbe"},
	},
	console.ThreeDS: {
		{FileName: "aes_keys.txt", Optional: true},
	},
}

// Required returns the firmware files for a console, or nil when none
// are needed.
func Required(t console.Type) []File {
	return requirements[t]
}

// Missing lists the required (non-optional) firmware files absent from
// biosDir for the given console.
func Missing(fs afero.Fs, biosDir string, t console.Type) ([]File, error) {
	var missing []File
	for _, f := range requirements[t] {
		if f.Optional {
			continue
		}
		exists, err := afero.Exists(fs, filepath.Join(biosDir, f.FileName))
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", f.FileName, err)
		}
		if !exists {
			missing = append(missing, f)
		}
	}
	return missing, nil
}

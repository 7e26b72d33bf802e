// Package romloader handles loading ROM files from various sources,
// including compressed archives (ZIP, 7z, gzip, RAR, xz, zstd). Archive
// entries are matched against the owning console's ROM extensions.
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
	magicXZ     = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	magicZstd   = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

// Maximum ROM size safety limit. The largest cartridge images handled by
// the native cores are DS ROMs at 256MB.
const maxROMSize = 256 * 1024 * 1024

// ErrNoROMFile is returned when no matching ROM file is found in an archive
var ErrNoROMFile = errors.New("no rom file found in archive")

// ErrUnsupportedFormat is returned for unrecognized file formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when extracted content exceeds size limit
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// formatType represents the detected file format
type formatType int

const (
	formatUnknown formatType = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatRAR
	formatXZ
	formatZstd
)

// LoadROM loads a ROM from a file path. It automatically detects and
// extracts from archives; exts lists the raw ROM extensions accepted for
// the target console. Returns the ROM data, the filename of the ROM
// (useful for display), and any error encountered.
func LoadROM(path string, exts []string) ([]byte, string, error) {
	return LoadROMFS(afero.NewOsFs(), path, exts)
}

// LoadROMFS is LoadROM reading through the given filesystem.
func LoadROMFS(fs afero.Fs, path string, exts []string) ([]byte, string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	// Read header for magic byte detection
	header := make([]byte, 16)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	format := detectFormat(header, path, exts)

	// Reset file position
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("failed to seek file: %w", err)
	}

	switch format {
	case formatRaw:
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read ROM: %w", err)
		}
		return data, filepath.Base(path), nil

	case formatZIP:
		return extractFromZIP(fs, path, exts)

	case format7z:
		return extractFrom7z(fs, path, exts)

	case formatGzip:
		return extractFromGzip(f, path)

	case formatRAR:
		return extractFromRAR(f, exts)

	case formatXZ:
		return extractFromXZ(f, path)

	case formatZstd:
		return extractFromZstd(f, path)

	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// detectFormat determines the file format based on magic bytes and extension
func detectFormat(header []byte, path string, exts []string) formatType {
	// Check magic bytes first (more reliable)
	if len(header) >= 4 {
		if bytes.HasPrefix(header, magicZIP) || bytes.HasPrefix(header, magicZIPEnd) {
			return formatZIP
		}
		if bytes.HasPrefix(header, magicRAR) {
			return formatRAR
		}
		if bytes.HasPrefix(header, magicZstd) {
			return formatZstd
		}
	}
	if len(header) >= 6 {
		if bytes.HasPrefix(header, magic7z) {
			return format7z
		}
		if bytes.HasPrefix(header, magicXZ) {
			return formatXZ
		}
	}
	if len(header) >= 2 && bytes.HasPrefix(header, magicGzip) {
		return formatGzip
	}

	// Fall back to extension
	if matchesExt(path, exts) {
		return formatRaw
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	case ".xz":
		return formatXZ
	case ".zst":
		return formatZstd
	}

	return formatUnknown
}

// matchesExt checks if a filename carries one of the accepted ROM
// extensions (case-insensitive)
func matchesExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// innerName derives the extracted filename for single-stream compressors
// (gzip, xz, zstd) by stripping the compression extension.
func innerName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// limitedRead reads from r up to maxROMSize bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxROMSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > maxROMSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

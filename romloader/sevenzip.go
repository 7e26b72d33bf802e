package romloader

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/bodgit/sevenzip"
	"github.com/spf13/afero"
)

// extractFrom7z extracts the first matching ROM file from a 7z archive
func extractFrom7z(fs afero.Fs, path string, exts []string) ([]byte, string, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read 7z: %w", err)
	}

	zr, err := sevenzip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open 7z: %w", err)
	}

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		if !matchesExt(zf.Name, exts) {
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", zf.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", zf.Name, err)
		}
		return data, filepath.Base(zf.Name), nil
	}

	return nil, "", ErrNoROMFile
}

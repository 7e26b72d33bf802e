package romloader

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// extractFromGzip decompresses a single-stream gzip file. The inner
// filename comes from the gzip header when present, otherwise from the
// outer path with the compression extension stripped.
func extractFromGzip(r io.Reader, path string) ([]byte, string, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open gzip: %w", err)
	}
	defer zr.Close()

	data, err := limitedRead(zr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read gzip: %w", err)
	}

	name := zr.Name
	if name == "" {
		name = innerName(path)
	}
	return data, name, nil
}

// extractFromXZ decompresses a single-stream xz file
func extractFromXZ(r io.Reader, path string) ([]byte, string, error) {
	zr, err := xz.NewReader(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open xz: %w", err)
	}

	data, err := limitedRead(zr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read xz: %w", err)
	}
	return data, innerName(path), nil
}

// extractFromZstd decompresses a single-stream zstd file
func extractFromZstd(r io.Reader, path string) ([]byte, string, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zstd: %w", err)
	}
	defer zr.Close()

	data, err := limitedRead(zr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read zstd: %w", err)
	}
	return data, innerName(path), nil
}

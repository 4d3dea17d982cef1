// Package files loads stored document content. The workflow only ever asks
// for bytes by the path recorded in the catalog; where those bytes live is
// this package's concern.
package files

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	dErrors "custodia/pkg/domain-errors"
)

// Loader opens stored file content by its catalog path.
type Loader interface {
	Open(ctx context.Context, storedPath string) (io.ReadCloser, error)
}

// DiskLoader serves content from a single root directory. Stored paths are
// relative; anything escaping the root is rejected.
type DiskLoader struct {
	root string
}

func NewDiskLoader(root string) *DiskLoader {
	return &DiskLoader{root: root}
}

func (l *DiskLoader) Open(_ context.Context, storedPath string) (io.ReadCloser, error) {
	cleaned := filepath.Clean(filepath.FromSlash(storedPath))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "stored path escapes the files root")
	}

	f, err := os.Open(filepath.Join(l.root, cleaned))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dErrors.New(dErrors.CodeNotFound, "stored file not found")
		}
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	return f, nil
}

// Checksum computes the hex-encoded SHA-256 of a reader's content.
func Checksum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

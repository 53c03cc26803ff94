package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sehee-xx/DO-DREAM-sub000/pkg/logging"
)

// TempStore holds the short-lived artifacts of one pipeline run: the
// downloaded PDF and the rendered page images. The store only creates and
// deletes files; lifetime ownership stays with the pipeline.
type TempStore struct {
	dir string
}

func NewTempStore(dir string) (*TempStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	logging.Logger.Info("Temp store initialized", "dir", abs)
	return &TempStore{dir: abs}, nil
}

// TempPath reserves a unique path inside the store without creating a file.
func (ts *TempStore) TempPath(prefix, ext string) string {
	name := fmt.Sprintf("%s_%s.%s", prefix, uuid.New().String(), ext)
	return filepath.Join(ts.dir, name)
}

// SaveTemp writes data to a fresh uniquely named file and returns its path.
func (ts *TempStore) SaveTemp(data []byte, prefix, ext string) (string, error) {
	path := ts.TempPath(prefix, ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	return path, nil
}

// DeleteTemp removes a temp artifact. Missing files are not an error, so a
// path may safely appear on more than one cleanup list.
func (ts *TempStore) DeleteTemp(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Logger.Warn("fail DeleteTemp", "error", err, "path", path)
	}
}

func (ts *TempStore) Dir() string {
	return ts.dir
}

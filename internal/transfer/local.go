package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage keeps evidence files in a directory on disk.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create evidence dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Put writes data to <dir>/<hash>_<filename>. Identical content under the
// same name is written once.
func (s *LocalStorage) Put(_ context.Context, filename string, data []byte) (StoredFile, error) {
	hash := HashContent(data)
	name, err := objectName(hash, filename)
	if err != nil {
		return StoredFile{}, err
	}
	path := filepath.Join(s.dir, name)
	stored := StoredFile{Location: path, Name: strings.TrimPrefix(name, hash+"_"), Size: int64(len(data)), Hash: hash}

	if _, err := os.Stat(path); err == nil {
		return stored, nil
	}

	tmp := path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return StoredFile{}, fmt.Errorf("write evidence file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return StoredFile{}, fmt.Errorf("commit evidence file: %w", err)
	}
	return stored, nil
}

func (s *LocalStorage) Get(_ context.Context, location string) ([]byte, error) {
	rel, err := filepath.Rel(s.dir, location)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("location %q is outside the evidence dir", location)
	}
	return os.ReadFile(location)
}

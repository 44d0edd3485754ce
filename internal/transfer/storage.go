// Package transfer moves data in and out of the system: spreadsheet import
// and export of the risk register, and storage of uploaded evidence files.
package transfer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
)

// StoredFile describes an uploaded file after it has been persisted.
type StoredFile struct {
	// Location is a local path or an s3:// URL.
	Location string
	Name     string
	Size     int64
	// Hash is the hex SHA-256 of the content.
	Hash string
}

// Storage persists evidence files under a content-derived name.
type Storage interface {
	Put(ctx context.Context, filename string, data []byte) (StoredFile, error)
	Get(ctx context.Context, location string) ([]byte, error)
}

var ErrEmptyFilename = errors.New("file name is required")

// HashContent returns the hex SHA-256 of data.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// objectName is "<hash>_<base name>"; directory parts of the upload name are dropped.
func objectName(hash, filename string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "", ErrEmptyFilename
	}
	return hash + "_" + base, nil
}

// Package object stores uploaded resumes and generated documents under
// deterministic keys.
package object

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"path"
	"strings"
)

// Store saves and retrieves binary objects by key. Deleting a key that does
// not exist is not an error.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ErrInvalidKey is returned for keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// UploadKey is where a user's uploaded file for a record is kept:
// uploads/<user-hash>/<record-id>/<file>.
func UploadKey(userID, recordID, fileName string) (string, error) {
	name := fileBase(fileName)
	if name == "" || strings.TrimSpace(recordID) == "" {
		return "", ErrInvalidKey
	}
	return path.Join("uploads", userDir(userID), recordID, name), nil
}

// ResumeBuildKey is where the generated LaTeX for a build is kept.
func ResumeBuildKey(recordID string) string {
	return path.Join("resume-builds", recordID, "resume.tex")
}

// CleanKey normalises key and rejects traversal.
func CleanKey(key string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(key))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// fileBase flattens separators so a client file name stays one path segment.
// Names carrying ".." are refused outright.
func fileBase(name string) string {
	if strings.Contains(name, "..") {
		return ""
	}
	return strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(name))
}

// userDir keeps raw identity strings out of storage keys.
func userDir(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

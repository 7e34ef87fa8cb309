// Package cas implements content-addressed storage: compressed blobs keyed by the
// SHA-256 hex digest of their uncompressed content.
package cas

import (
	"bytes"
	"compress/zlib"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Sentinel errors for the CAS error taxonomy.
var (
	ErrNotFound         = errors.New("cas: content not found")
	ErrCorruption       = errors.New("cas: stored content is corrupt or hash mismatch")
	ErrIO               = errors.New("cas: disk I/O failure")
	ErrCompressionError = errors.New("cas: compression failed")
)

// Store is a content-addressed blob store rooted at a single directory.
// Writes are atomic (temp file + rename) so concurrent Store calls for the
// same content never race on a partial file. The filesystem is the only
// synchronization primitive needed: no in-process lock is held across calls.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. dir must already exist.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) blobPath(hash string) string {
	return filepath.Join(s.dir, hash+".z")
}

// Store compresses content with zlib (default level), computes the SHA-256 hex
// digest of the uncompressed content, and writes it to <dir>/<hash>.z. If a
// blob with that name already exists, the write is a no-op (the hash already
// names that content) and the existing hash is returned.
func (s *Store) Store(content string) (string, error) {
	sum := sha256.Sum256([]byte(content))
	hash := hex.EncodeToString(sum[:])

	dest := s.blobPath(hash)
	if _, err := os.Stat(dest); err == nil {
		return hash, nil
	}

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	if _, err := w.Write([]byte(content)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("%w: %v", ErrCompressionError, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompressionError, err)
	}

	tmp := filepath.Join(s.dir, fmt.Sprintf(".%s.%s.tmp", hash, uuid.NewString()))
	if err := os.WriteFile(tmp, compressed.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	return hash, nil
}

// Load reads and decompresses the blob for hash, verifying that the SHA-256 of
// the decompressed bytes matches hash before returning it.
func (s *Store) Load(hash string) (string, error) {
	data, err := os.ReadFile(s.blobPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, hash)
		}
		return "", fmt.Errorf("%w: %v", ErrIO, err)
	}

	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruption, err)
	}
	defer r.Close()

	decompressed, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruption, err)
	}

	sum := sha256.Sum256(decompressed)
	if hex.EncodeToString(sum[:]) != hash {
		return "", fmt.Errorf("%w: hash does not match content for %s", ErrCorruption, hash)
	}
	return string(decompressed), nil
}

// Exists reports whether a blob for hash is present on disk.
func (s *Store) Exists(hash string) bool {
	_, err := os.Stat(s.blobPath(hash))
	return err == nil
}

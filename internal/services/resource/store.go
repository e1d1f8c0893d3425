package resource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/mcoot/lighthouse/internal/model"
)

// ErrInvalidHash is returned for hashes that cannot name a resource
var ErrInvalidHash = errors.New("invalid resource hash")

// validHash keeps hashes inside the flat namespace
var validHash = regexp.MustCompile(`^[A-Za-z0-9]{1,128}$`)

// ValidHash reports whether hash can name a resource
func ValidHash(hash string) bool {
	return validHash.MatchString(hash)
}

// Store is a write-once blob store keyed by content hash. The hash is
// trusted as given; nothing checks it against the bytes.
type Store interface {
	Exists(ctx context.Context, hash string) (bool, error)
	// Size returns model.ErrResourceNotFound for missing resources
	Size(ctx context.Context, hash string) (int64, error)
	Read(ctx context.Context, hash string) ([]byte, error)
	// Write returns model.ErrResourceExists if hash is already stored
	Write(ctx context.Context, hash string, data []byte) error
}

// FileStore keeps each resource as <dir>/<hash>
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create resource directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(hash string) (string, error) {
	if !ValidHash(hash) {
		return "", ErrInvalidHash
	}
	return filepath.Join(s.dir, hash), nil
}

func (s *FileStore) Exists(ctx context.Context, hash string) (bool, error) {
	if !ValidHash(hash) {
		return false, nil
	}
	_, err := s.Size(ctx, hash)
	if errors.Is(err, model.ErrResourceNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *FileStore) Size(ctx context.Context, hash string) (int64, error) {
	p, err := s.path(hash)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, model.ErrResourceNotFound
	}
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *FileStore) Read(ctx context.Context, hash string) ([]byte, error) {
	p, err := s.path(hash)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.ErrResourceNotFound
	}
	return data, err
}

// Write stages the data in a temp file and links it into place, so readers
// never see a partial resource and a second writer loses cleanly
func (s *FileStore) Write(ctx context.Context, hash string, data []byte) error {
	p, err := s.path(hash)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Link(tmp.Name(), p); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return model.ErrResourceExists
		}
		return err
	}
	return nil
}

// MemoryStore is an in-memory Store for tests and throwaway servers
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Exists(ctx context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[hash]
	return ok, nil
}

func (s *MemoryStore) Size(ctx context.Context, hash string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[hash]
	if !ok {
		return 0, model.ErrResourceNotFound
	}
	return int64(len(data)), nil
}

func (s *MemoryStore) Read(ctx context.Context, hash string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[hash]
	if !ok {
		return nil, model.ErrResourceNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Write(ctx context.Context, hash string, data []byte) error {
	if !ValidHash(hash) {
		return ErrInvalidHash
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[hash]; ok {
		return model.ErrResourceExists
	}
	s.blobs[hash] = append([]byte(nil), data...)
	return nil
}

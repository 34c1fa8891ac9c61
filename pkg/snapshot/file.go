package snapshot

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/matzehuels/pluginrelease/pkg/httputil"
)

// FileStore keeps the snapshot in a local file.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore creates a store for path. The file does not need to exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements Source.
func (s *FileStore) Load(ctx context.Context) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read snapshot file: %w", err)
	}
	return data, true, nil
}

// Save implements Sink. The file is replaced atomically.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := httputil.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return s.path
}

var _ Store = (*FileStore)(nil)

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// Store persists the flat settings record of each source.
type Store interface {
	// Load returns the record of source. ok is false when none was saved.
	Load(source string) (record map[string]any, ok bool, err error)
	Save(source string, record map[string]any) error
}

// MemoryStore keeps records in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string]any
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]map[string]any)}
}

// Load implements Store.
func (m *MemoryStore) Load(source string) (map[string]any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[source]
	if !ok {
		return nil, false, nil
	}

	return maps.Clone(r), true, nil
}

// Save implements Store.
func (m *MemoryStore) Save(source string, record map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[source] = maps.Clone(record)

	return nil
}

// FileStore keeps one JSON file per source in a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a FileStore in dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("session: create settings directory: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

// Path returns the file that holds the record of source.
func (f *FileStore) Path(source string) string {
	return filepath.Join(f.dir, url.PathEscape(source)+".json")
}

// Load implements Store.
func (f *FileStore) Load(source string) (map[string]any, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.Path(source))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("session: read settings: %w", err)
	}

	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, fmt.Errorf("session: decode settings %s: %w", f.Path(source), err)
	}

	return record, true, nil
}

// Save implements Store. The file is replaced atomically.
func (f *FileStore) Save(source string, record map[string]any) error {
	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode settings: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("session: save settings: %w", err)
	}

	_, err = tmp.Write(append(raw, '\n'))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}

	if err == nil {
		err = os.Rename(tmp.Name(), f.Path(source))
	}

	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("session: save settings: %w", err)
	}

	return nil
}

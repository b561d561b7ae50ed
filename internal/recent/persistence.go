package recent

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lepinkainen/marginalia/internal/cache"
	"github.com/lepinkainen/marginalia/internal/fileutil"
)

// StorageKey is the fixed key the list is stored under in key/value backends.
const StorageKey = "recentSearches"

// FilePersistence stores the list as a JSON array of strings.
type FilePersistence struct {
	Path string
}

// Load reads the list; a missing file is an empty list.
func (f FilePersistence) Load() ([]string, error) {
	var queries []string
	if _, err := fileutil.ReadJSONFile(f.Path, &queries); err != nil {
		return nil, err
	}
	return queries, nil
}

// Save replaces the file with queries.
func (f FilePersistence) Save(queries []string) error {
	return fileutil.WriteJSONFile(queries, f.Path)
}

// KVPersistence stores the list in the cache database's key/value table.
type KVPersistence struct {
	DB *cache.DB
}

// Load reads the list stored under StorageKey.
func (k KVPersistence) Load() ([]string, error) {
	raw, found, err := k.DB.GetValue(StorageKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var queries []string
	if err := json.Unmarshal([]byte(raw), &queries); err != nil {
		return nil, fmt.Errorf("failed to parse stored recent searches: %w", err)
	}
	return queries, nil
}

// Save stores queries under StorageKey.
func (k KVPersistence) Save(queries []string) error {
	data, err := json.Marshal(queries)
	if err != nil {
		return fmt.Errorf("failed to marshal recent searches: %w", err)
	}
	return k.DB.PutValue(StorageKey, string(data))
}

// MemoryPersistence keeps the list in process memory.
type MemoryPersistence struct {
	mu      sync.Mutex
	queries []string
	LoadErr error
	SaveErr error
	Saves   int
}

// NewMemoryPersistence returns a MemoryPersistence pre-loaded with queries.
func NewMemoryPersistence(queries ...string) *MemoryPersistence {
	return &MemoryPersistence{queries: queries}
}

func (m *MemoryPersistence) Load() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return append([]string(nil), m.queries...), nil
}

func (m *MemoryPersistence) Save(queries []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.queries = append([]string(nil), queries...)
	return nil
}

// Stored returns what was last saved.
func (m *MemoryPersistence) Stored() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

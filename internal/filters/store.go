package filters

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

// customFilterStartID is the first identifier assigned to user-added
// filters, keeping them clearly apart from any curated filter ID space.
const customFilterStartID = 1000

// Filter is the persisted record of a subscribed custom filter.
type Filter struct {
	ID          int       `json:"filter_id"`
	Name        string    `json:"name"`
	CustomURL   string    `json:"custom_url"`
	Trusted     bool      `json:"trusted"`
	Enabled     bool      `json:"enabled"`
	Description string    `json:"description,omitempty"`
	Version     string    `json:"version,omitempty"`
	Homepage    string    `json:"homepage,omitempty"`
	ExpiresSec  int64     `json:"expires_sec,omitempty"`
	RuleCount   int       `json:"rule_count"`
	LastUpdated time.Time `json:"last_updated"`
}

// Store persists filter metadata in a single index file and each filter's
// raw rule text in a per-filter file alongside it.
type Store struct {
	dir    string
	mu     sync.RWMutex
	byID   map[int]Filter
	nextID int
}

// NewStore opens (or initialises) a filter store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filter store: mkdir %s: %w", dir, err)
	}

	s := &Store{dir: dir, byID: make(map[int]Filter), nextID: customFilterStartID}
	if err := s.loadIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) indexPath() string { return filepath.Join(s.dir, "filters.json") }

func (s *Store) rulesPath(id int) string {
	return filepath.Join(s.dir, fmt.Sprintf("filter_%d.txt", id))
}

func (s *Store) loadIndex() error {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("filter store: read index: %w", err)
	}

	var list []Filter
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("filter store: unmarshal index: %w", err)
	}
	for _, f := range list {
		s.byID[f.ID] = f
		if f.ID >= s.nextID {
			s.nextID = f.ID + 1
		}
	}
	return nil
}

// saveIndexLocked writes the metadata index. Caller must hold the write lock.
func (s *Store) saveIndexLocked() error {
	list := make([]Filter, 0, len(s.byID))
	for _, f := range s.byID {
		list = append(list, f)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("filter store: marshal index: %w", err)
	}
	if err := os.WriteFile(s.indexPath(), data, 0o644); err != nil {
		return fmt.Errorf("filter store: write index: %w", err)
	}
	return nil
}

// NextID reserves and returns the next custom filter identifier.
func (s *Store) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id
}

// Save persists a filter record together with its raw rule text.
func (s *Store) Save(f Filter, rules string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.rulesPath(f.ID), []byte(rules), 0o644); err != nil {
		return fmt.Errorf("filter store: write rules: %w", err)
	}
	s.byID[f.ID] = f
	if err := s.saveIndexLocked(); err != nil {
		delete(s.byID, f.ID)
		_ = os.Remove(s.rulesPath(f.ID))
		return err
	}
	return nil
}

// Get returns the filter record for an ID.
func (s *Store) Get(id int) (Filter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.byID[id]
	return f, ok
}

// GetByURL looks a filter up by its subscription URL.
func (s *Store) GetByURL(url string) (Filter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.byID {
		if f.CustomURL == url {
			return f, true
		}
	}
	return Filter{}, false
}

// List returns all filters ordered by ID.
func (s *Store) List() []Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Filter, 0, len(s.byID))
	for _, f := range s.byID {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Rules reads the raw rule text for a filter.
func (s *Store) Rules(id int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.byID[id]; !ok {
		return "", types.NewError(types.CodeFilterNotFound, fmt.Sprintf("filter not found: %d", id), nil)
	}
	data, err := os.ReadFile(s.rulesPath(id))
	if err != nil {
		return "", fmt.Errorf("filter store: read rules: %w", err)
	}
	return string(data), nil
}

// Delete removes a filter record and its rule file.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return types.NewError(types.CodeFilterNotFound, fmt.Sprintf("filter not found: %d", id), nil)
	}
	delete(s.byID, id)
	if err := s.saveIndexLocked(); err != nil {
		return err
	}
	_ = os.Remove(s.rulesPath(id))
	return nil
}

package memory

import (
	"sync"
	"time"

	"github.com/custodia-labs/codekeeper/internal/adapters/driven/config"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in memory. Values are coerced exactly as the
// TOML store coerces them, so tests can seed TOML-shaped values.
type ConfigStore struct {
	mu     sync.RWMutex
	values config.Values
}

// NewConfigStore creates an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: config.Values{}}
}

func (s *ConfigStore) String(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.String(key)
}

func (s *ConfigStore) Int(key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Int(key)
}

func (s *ConfigStore) Bool(key string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Bool(key)
}

func (s *ConfigStore) Duration(key string) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Duration(key)
}

func (s *ConfigStore) Strings(key string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Strings(key)
}

func (s *ConfigStore) Update(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.Merge(values)
	return nil
}

func (s *ConfigStore) Path() string {
	return ":memory:"
}

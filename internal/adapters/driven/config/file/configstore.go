package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/codekeeper/internal/adapters/driven/config"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driven"
)

// HomeEnv overrides the default data directory.
const HomeEnv = "CODEKEEPER_HOME"

// FileName is the settings file inside the data directory.
const FileName = "config.toml"

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a TOML file. A dotted key such as
// "backup.min_depth" is written as min_depth in the [backup] table.
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values config.Values
}

// DefaultDir returns $CODEKEEPER_HOME, or ~/.codekeeper when unset.
func DefaultDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(HomeEnv)); dir != "" {
		return filepath.Abs(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".codekeeper"), nil
}

// NewConfigStore opens the settings file in dir, which defaults to
// DefaultDir. A missing file is an empty configuration.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		path:   filepath.Join(dir, FileName),
		values: config.Values{},
	}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return s, nil
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

// Update merges values and rewrites the file. On a write error the
// in-memory values are left unchanged.
func (s *ConfigStore) Update(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(config.Values, len(s.values)+len(values))
	next.Merge(s.values)
	next.Merge(values)
	if err := s.write(next); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	s.values = next
	return nil
}

func (s *ConfigStore) Path() string {
	return s.path
}

func (s *ConfigStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var tables map[string]any
	if err := toml.Unmarshal(data, &tables); err != nil {
		return err
	}
	s.values = flatten(tables, "")
	return nil
}

// write replaces the file through a temporary sibling so a crash never
// leaves half a file behind.
func (s *ConfigStore) write(values config.Values) error {
	data, err := toml.Marshal(nest(values))
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// flatten turns nested tables into dotted keys: {"a": {"b": 1}} becomes {"a.b": 1}.
func flatten(tables map[string]any, prefix string) config.Values {
	out := config.Values{}
	for key, value := range tables {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			out.Merge(flatten(nested, key))
			continue
		}
		out[key] = value
	}
	return out
}

// nest is the inverse of flatten. A key whose prefix is already a scalar
// stays flat. Keys are visited sorted so a scalar precedes its extensions.
func nest(values config.Values) map[string]any {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string]any)
	for _, key := range keys {
		value := values[key]
		parts := strings.Split(key, ".")
		table := out
		for _, part := range parts[:len(parts)-1] {
			child, exists := table[part]
			if !exists {
				child = make(map[string]any)
				table[part] = child
			}
			next, isTable := child.(map[string]any)
			if !isTable {
				table = nil
				break
			}
			table = next
		}
		if table == nil {
			out[key] = value
			continue
		}
		table[parts[len(parts)-1]] = value
	}
	return out
}

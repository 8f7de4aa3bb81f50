package driven

import "time"

// ConfigStore persists settings under dotted keys such as "backup.min_depth".
// Each getter reports false when the key is missing or its value cannot be
// read as the requested type, so callers can fall back to a default.
type ConfigStore interface {
	String(key string) (string, bool)
	Int(key string) (int, bool)
	Bool(key string) (bool, bool)

	// Duration accepts Go duration strings ("750ms"). Bare numbers are
	// milliseconds.
	Duration(key string) (time.Duration, bool)

	// Strings returns list values. An empty list is present, not missing.
	Strings(key string) ([]string, bool)

	// Update stores every key in values and persists them in one write.
	Update(values map[string]any) error

	// Path describes where settings are kept.
	Path() string
}

// Package config holds the value coercion shared by the settings stores.
package config

import (
	"time"

	"github.com/spf13/cast"
)

// Values maps dotted keys to raw settings values. Decoded TOML yields
// int64 for integers and []any for arrays; cast normalises both.
type Values map[string]any

// String returns scalar values as strings. Lists and tables are not strings.
func (v Values) String(key string) (string, bool) {
	raw, ok := v[key]
	if !ok {
		return "", false
	}
	switch raw.(type) {
	case []any, []string, map[string]any:
		return "", false
	}
	s, err := cast.ToStringE(raw)
	return s, err == nil
}

func (v Values) Int(key string) (int, bool) {
	raw, ok := v[key]
	if !ok {
		return 0, false
	}
	n, err := cast.ToIntE(raw)
	return n, err == nil
}

func (v Values) Bool(key string) (bool, bool) {
	raw, ok := v[key]
	if !ok {
		return false, false
	}
	b, err := cast.ToBoolE(raw)
	return b, err == nil
}

// Duration reads "750ms" style strings. Numbers, and strings holding only
// a number, are milliseconds.
func (v Values) Duration(key string) (time.Duration, bool) {
	raw, ok := v[key]
	if !ok {
		return 0, false
	}
	switch raw.(type) {
	case int, int64, float64:
	case string:
		if d, err := cast.ToDurationE(raw); err == nil && !isNumeric(raw) {
			return d, true
		}
	default:
		return 0, false
	}
	ms, err := cast.ToInt64E(raw)
	if err != nil {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

func isNumeric(raw any) bool {
	_, err := cast.ToFloat64E(raw)
	return err == nil
}

// Strings returns list values. An empty list yields a non-nil empty slice.
func (v Values) Strings(key string) ([]string, bool) {
	raw, ok := v[key]
	if !ok {
		return nil, false
	}
	switch raw.(type) {
	case []string, []any:
	default:
		return nil, false
	}
	list, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil, false
	}
	if list == nil {
		list = []string{}
	}
	return list, true
}

// Merge copies updates into v.
func (v Values) Merge(updates map[string]any) {
	for key, value := range updates {
		v[key] = value
	}
}

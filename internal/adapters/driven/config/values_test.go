package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValues_String(t *testing.T) {
	v := Values{"schedule": "@daily", "depth": int64(3), "excludes": []any{".git"}}

	s, ok := v.String("schedule")
	assert.True(t, ok)
	assert.Equal(t, "@daily", s)

	s, ok = v.String("depth")
	assert.True(t, ok)
	assert.Equal(t, "3", s)

	_, ok = v.String("excludes")
	assert.False(t, ok)
	_, ok = v.String("missing")
	assert.False(t, ok)
}

func TestValues_Int(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
		ok    bool
	}{
		{"int", 42, 42, true},
		{"int64 from toml", int64(123), 123, true},
		{"float64", 123.7, 123, true},
		{"numeric string", "500", 500, true},
		{"not a number", "many", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := Values{"k": tt.value}.Int("k")
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, n)
			}
		})
	}
}

func TestValues_Bool(t *testing.T) {
	v := Values{"a": true, "b": "false", "c": "maybe"}

	b, ok := v.Bool("a")
	assert.True(t, ok)
	assert.True(t, b)

	b, ok = v.Bool("b")
	assert.True(t, ok)
	assert.False(t, b)

	_, ok = v.Bool("c")
	assert.False(t, ok)
}

func TestValues_Duration(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  time.Duration
		ok    bool
	}{
		{"duration string", "750ms", 750 * time.Millisecond, true},
		{"seconds", "2s", 2 * time.Second, true},
		{"int64 is milliseconds", int64(250), 250 * time.Millisecond, true},
		{"numeric string is milliseconds", "300", 300 * time.Millisecond, true},
		{"garbage", "soon", 0, false},
		{"bool", true, 0, false},
		{"list", []any{"1s"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Values{"k": tt.value}.Duration("k")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, d)
		})
	}

	_, ok := Values{}.Duration("missing")
	assert.False(t, ok)
}

func TestValues_Strings(t *testing.T) {
	v := Values{
		"native": []string{".git", "bin"},
		"toml":   []any{".git", "node_modules"},
		"empty":  []any{},
		"scalar": ".git",
	}

	list, ok := v.Strings("native")
	assert.True(t, ok)
	assert.Equal(t, []string{".git", "bin"}, list)

	list, ok = v.Strings("toml")
	assert.True(t, ok)
	assert.Equal(t, []string{".git", "node_modules"}, list)

	list, ok = v.Strings("empty")
	assert.True(t, ok)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, ok = v.Strings("scalar")
	assert.False(t, ok)
}

func TestValues_Merge(t *testing.T) {
	v := Values{"a": 1, "b": 2}

	v.Merge(map[string]any{"b": 3, "c": 4})

	assert.Equal(t, Values{"a": 1, "b": 3, "c": 4}, v)
}

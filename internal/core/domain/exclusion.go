package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExcludePatterns are applied to every project unless settings override them.
var DefaultExcludePatterns = []string{
	".git", "__pycache__", "node_modules", ".vs", ".vscode", "bin", "obj",
}

// ExclusionSet is an order-insensitive set of exclusion patterns.
// A pattern matches a directory-entry name either exactly or as a
// filepath.Match glob, so "*.pyc" drops every compiled Python file.
type ExclusionSet struct {
	exact map[string]struct{}
	globs []string
}

// NewExclusionSet builds a set from patterns. Blank patterns are ignored
// and duplicates collapse.
func NewExclusionSet(patterns ...[]string) *ExclusionSet {
	s := &ExclusionSet{exact: make(map[string]struct{})}
	seenGlob := make(map[string]struct{})
	for _, list := range patterns {
		for _, p := range list {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if strings.ContainsAny(p, "*?[") {
				if _, ok := seenGlob[p]; !ok {
					seenGlob[p] = struct{}{}
					s.globs = append(s.globs, p)
				}
				continue
			}
			s.exact[p] = struct{}{}
		}
	}
	sort.Strings(s.globs)
	return s
}

// Match reports whether the entry name is excluded.
func (s *ExclusionSet) Match(name string) bool {
	if s == nil {
		return false
	}
	if _, ok := s.exact[name]; ok {
		return true
	}
	for _, g := range s.globs {
		if ok, err := filepath.Match(g, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Patterns returns the set's patterns, sorted.
func (s *ExclusionSet) Patterns() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.exact)+len(s.globs))
	for p := range s.exact {
		out = append(out, p)
	}
	out = append(out, s.globs...)
	sort.Strings(out)
	return out
}

// Len returns the number of distinct patterns.
func (s *ExclusionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.exact) + len(s.globs)
}

// ParseExcludePatterns splits a comma or newline separated list.
func ParseExcludePatterns(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// ValidatePatterns checks glob syntax and rejects patterns containing a
// path separator, since patterns apply to single entry names.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if strings.ContainsAny(p, `/\`) {
			return fmt.Errorf("%w: pattern %q must be an entry name, not a path", ErrInvalidInput, p)
		}
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("%w: pattern %q: %v", ErrInvalidInput, p, err)
		}
	}
	return nil
}

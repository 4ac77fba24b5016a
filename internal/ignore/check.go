package ignore

import (
	"path/filepath"
	"strings"

	gitignore "github.com/denormal/go-gitignore"
)

// Root returns the absolute directory the rules were loaded from.
func (r *Rules) Root() string {
	return r.root
}

// Matchers returns the scoped matchers in discovery order.
func (r *Rules) Matchers() []*ScopedMatcher {
	out := make([]*ScopedMatcher, len(r.matchers))
	copy(out, r.matchers)
	return out
}

// Len returns the number of scoped matchers.
func (r *Rules) Len() int {
	return len(r.matchers)
}

// IsExcluded reports whether any applicable matcher excludes path. Relative
// paths are taken relative to the root.
//
// This is a union of excludes: every matcher whose directory contains path is
// consulted and a single exclusion is final. A negation in a nested rule file
// cannot re-include a path that another rule file excludes; negation only
// works against earlier patterns of the same file.
func (r *Rules) IsExcluded(path string, isDir bool) bool {
	_, excluded := r.ExcludedBy(path, isDir)
	return excluded
}

// ExcludedBy is IsExcluded that also returns the first matcher, in discovery
// order, that excludes path.
func (r *Rules) ExcludedBy(path string, isDir bool) (*ScopedMatcher, bool) {
	if r == nil || r.disabled || len(r.matchers) == 0 {
		return nil, false
	}

	absPath := path
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(r.root, filepath.FromSlash(path))
	}
	absPath = filepath.Clean(absPath)

	for _, m := range r.matchers {
		rel, ok := m.Applies(absPath)
		if !ok {
			continue
		}
		if hit := m.match(rel, isDir); hit != nil {
			r.logger.Debug("Excluded %s by %s (%s)", r.rel(absPath), r.rel(m.source), hit.String())
			return m, true
		}
	}
	return nil, false
}

// Root returns the directory this matcher governs.
func (m *ScopedMatcher) Root() string {
	return m.root
}

// Source returns the rule file the matcher was compiled from.
func (m *ScopedMatcher) Source() string {
	return m.source
}

// Lines returns the number of lines read from the rule source.
func (m *ScopedMatcher) Lines() int {
	return m.lines
}

// Applies returns absPath relative to the matcher root, slash separated, and
// false when absPath lies outside the matcher's directory.
func (m *ScopedMatcher) Applies(absPath string) (string, bool) {
	rel, err := filepath.Rel(m.root, absPath)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// Match reports whether rel, relative to the matcher root, is excluded by
// this matcher alone.
func (m *ScopedMatcher) Match(rel string, isDir bool) bool {
	return m.match(rel, isDir) != nil
}

// match returns the excluding pattern, or nil. A path is excluded when the
// last pattern matching it is not negated, or when one of its parent
// directories below the matcher root is excluded.
func (m *ScopedMatcher) match(rel string, isDir bool) gitignore.Match {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" || rel == "." {
		return nil
	}

	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		if hit := m.last(strings.Join(parts[:i], "/"), true); hit != nil && hit.Ignore() {
			return hit
		}
	}

	if hit := m.last(rel, isDir); hit != nil && hit.Ignore() {
		return hit
	}
	return nil
}

// last returns the last pattern of the file matching rel, or nil.
func (m *ScopedMatcher) last(rel string, isDir bool) gitignore.Pattern {
	nested := strings.Contains(rel, "/")
	for i := len(m.rules) - 1; i >= 0; i-- {
		p := m.rules[i]
		if nested && anchoredName(p) {
			continue
		}
		if p.Match(rel, isDir) {
			return p
		}
	}
	return nil
}

// anchoredName reports whether p is a leading-slash pattern of a single
// component, such as "/*.py" or "/build/". Those only name entries directly
// in the matcher root; the pattern matcher would otherwise let "*" cross "/".
func anchoredName(p gitignore.Pattern) bool {
	s := p.String()
	if p.Include() {
		s = strings.TrimPrefix(s, "!")
	}
	if !strings.HasPrefix(s, "/") {
		return false
	}
	body := strings.Trim(s, "/")
	return !strings.Contains(body, "/") && !strings.Contains(body, "**")
}

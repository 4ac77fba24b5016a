package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/svjt78/code-to-pdf/internal/ignore"
)

// group is one ordered candidate pattern: "*.<ext>" or a file name.
type group struct {
	label string
	glob  glob.Glob
}

// entry is a filesystem entry seen by the walk.
type entry struct {
	abs   string
	rel   string // slash separated
	name  string
	isDir bool
}

type candidate struct {
	entry
	group     string
	duplicate bool
}

func compileGroups(extensions, names []string) ([]group, error) {
	groups := make([]group, 0, len(extensions)+len(names))
	for _, ext := range extensions {
		pattern := "*." + glob.QuoteMeta(ext)
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("scanner: invalid extension %q: %w", ext, err)
		}
		groups = append(groups, group{label: "*." + ext, glob: g})
	}
	for _, name := range names {
		g, err := glob.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("scanner: invalid name pattern %q: %w", name, err)
		}
		groups = append(groups, group{label: name, glob: g})
	}
	return groups, nil
}

// walkEntries walks root once and returns every entry below it. Directories
// excluded by rules are not descended into; everything below them would be
// excluded through the parent-directory rule anyway.
func walkEntries(ctx context.Context, absRoot string, rules *ignore.Rules, options Options, tracker *SkippedTracker) ([]entry, error) {
	var entries []entry

	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == absRoot {
				return err
			}
			isDir := d != nil && d.IsDir()
			rel := relSlash(absRoot, path)
			reason := ReasonWalkError
			if errors.Is(err, fs.ErrPermission) {
				reason = ReasonPermError
			}
			options.Logger.Warn("Cannot read %s: %v", rel, err)
			tracker.Track(rel, reason, isDir)
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}

		if path == absRoot {
			return nil
		}

		rel := relSlash(absRoot, path)
		if d.IsDir() && rules.IsExcluded(path, true) {
			options.Logger.Debug("Pruning ignored directory %s", rel)
			tracker.Track(rel, ReasonIgnoredRule, true)
			return filepath.SkipDir
		}

		entries = append(entries, entry{abs: path, rel: rel, name: d.Name(), isDir: d.IsDir()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// expand lists, group by group, the entries whose base name matches the
// group, each group sorted by path components. An entry matching several
// groups appears once per group.
func expand(groups []group, entries []entry, dedupe bool) []candidate {
	var out []candidate
	seen := make(map[string]struct{})

	for _, g := range groups {
		start := len(out)
		for _, e := range entries {
			if g.glob.Match(e.name) {
				out = append(out, candidate{entry: e, group: g.label})
			}
		}
		slices.SortStableFunc(out[start:], func(a, b candidate) int {
			return comparePaths(a.rel, b.rel)
		})
	}

	if dedupe {
		for i := range out {
			if _, ok := seen[out[i].abs]; ok {
				out[i].duplicate = true
				continue
			}
			seen[out[i].abs] = struct{}{}
		}
	}
	return out
}

func comparePaths(a, b string) int {
	return slices.Compare(strings.Split(a, "/"), strings.Split(b, "/"))
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

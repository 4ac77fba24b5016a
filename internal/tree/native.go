package tree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

const (
	connectorMid  = "├── "
	connectorLast = "└── "
	indentBar     = "│   "
	indentBlank   = "    "
)

// NativeDrawer draws the listing in-process, in the layout of the tree
// program: hidden entries omitted, names sorted, a trailing count report.
type NativeDrawer struct{}

type drawState struct {
	ctx     context.Context
	exclude []glob.Glob
	depth   int
	dirs    int
	files   int
	b       strings.Builder
}

// Draw implements Drawer.
func (NativeDrawer) Draw(ctx context.Context, root string, depth int, exclude []string) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("tree: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("tree: %s is not a directory", root)
	}

	st := &drawState{ctx: ctx, depth: depth, exclude: compileExcludes(exclude)}
	st.b.WriteString(".\n")
	if err := st.walk(root, "", 1); err != nil {
		return "", err
	}

	fmt.Fprintf(&st.b, "\n%s, %s\n", plural(st.dirs, "directory", "directories"), plural(st.files, "file", "files"))
	return st.b.String(), nil
}

func (st *drawState) walk(dir, prefix string, level int) error {
	if err := st.ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if level == 1 {
			return fmt.Errorf("tree: %w", err)
		}
		return nil
	}

	visible := entries[:0]
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || st.excluded(e.Name()) {
			continue
		}
		visible = append(visible, e)
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].Name() < visible[j].Name() })

	for i, e := range visible {
		connector, childPrefix := connectorMid, prefix+indentBar
		if i == len(visible)-1 {
			connector, childPrefix = connectorLast, prefix+indentBlank
		}

		path := filepath.Join(dir, e.Name())
		label := e.Name()
		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			if target, err := os.Readlink(path); err == nil {
				label += " -> " + target
			}
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				isDir = true
			}
		}

		st.b.WriteString(prefix + connector + label + "\n")

		if !isDir {
			st.files++
			continue
		}
		st.dirs++
		if e.IsDir() && (st.depth <= 0 || level < st.depth) {
			if err := st.walk(path, childPrefix, level+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (st *drawState) excluded(name string) bool {
	for _, g := range st.exclude {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func compileExcludes(patterns []string) []glob.Glob {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			g = glob.MustCompile(glob.QuoteMeta(p))
		}
		out = append(out, g)
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

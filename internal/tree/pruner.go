package tree

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/svjt78/code-to-pdf/internal/ignore"
	"github.com/svjt78/code-to-pdf/internal/utils"
)

// Placeholders returned instead of a listing.
const (
	PlaceholderUnavailable = "(tree command not available)"
	placeholderError       = "(error generating project structure: %v)"
)

// DefaultDepth is the listing depth used when none is configured.
const DefaultDepth = 3

// NoiseDirs are never descended into, whatever the rule files say.
var NoiseDirs = []string{
	".git", "node_modules", "__pycache__", ".venv", "venv", "dist", "build",
	".next", ".cache", ".pytest_cache", ".mypy_cache", ".tox", "coverage",
	"target", ".idea", ".vscode",
}

// connectors drawn by tree in UTF-8 and in ASCII (LANG=C) mode. They are
// stripped from the start of each listing line together with padding.
var connectors = []string{"├", "└", "│", "─", "|--", "`--", "|"}

const padding = " \u00a0"

// Pruner draws the structure listing and filters it through the rules.
type Pruner struct {
	drawer Drawer
	logger utils.Logger
	noise  []string
}

// Option configures a Pruner
type Option func(*Pruner)

// WithDrawer replaces the default ExecDrawer.
func WithDrawer(d Drawer) Option {
	return func(p *Pruner) {
		if d != nil {
			p.drawer = d
		}
	}
}

// WithLogger sets a custom logger for the pruner
func WithLogger(logger utils.Logger) Option {
	return func(p *Pruner) {
		p.logger = utils.OrNoop(logger)
	}
}

// WithExtraNoise prunes more directory names on top of NoiseDirs.
func WithExtraNoise(names ...string) Option {
	return func(p *Pruner) {
		p.noise = append(p.noise, names...)
	}
}

// New creates a Pruner backed by ExecDrawer unless WithDrawer is given.
func New(opts ...Option) *Pruner {
	p := &Pruner{
		drawer: ExecDrawer{},
		logger: utils.NoopLogger{},
		noise:  append([]string(nil), NoiseDirs...),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Render returns the filtered listing of root. It never fails: when the
// drawer is unavailable or errors a placeholder is returned instead.
func (p *Pruner) Render(ctx context.Context, root string, depth int, rules *ignore.Rules) string {
	if depth <= 0 {
		depth = DefaultDepth
	}

	text, err := p.drawer.Draw(ctx, root, depth, p.noise)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			p.logger.Warn("Project structure skipped: %v", err)
			return PlaceholderUnavailable
		}
		p.logger.Warn("Project structure failed: %v", err)
		return fmt.Sprintf(placeholderError, err)
	}
	return Filter(text, rules)
}

// Filter keeps the first line of text verbatim and drops every other line
// whose fragment, the line with its drawing prefix removed, is excluded by
// rules. Fragments are matched as files relative to the rules root; they are
// bare names rather than full paths, so the result only approximates the
// scanner's decisions.
func Filter(text string, rules *ignore.Rules) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	kept := lines[:1]
	for _, line := range lines[1:] {
		if rules.IsExcluded(Fragment(line), false) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n") + "\n"
}

// Fragment strips the drawing prefix from a listing line.
func Fragment(line string) string {
	for {
		line = strings.TrimLeft(line, padding)
		cut := false
		for _, c := range connectors {
			if rest, ok := strings.CutPrefix(line, c); ok {
				line, cut = rest, true
				break
			}
		}
		if !cut {
			return line
		}
	}
}

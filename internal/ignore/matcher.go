package ignore

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/svjt78/code-to-pdf/internal/utils"
)

// Load walks rootDir once and compiles every rule file found at any depth
// into a ScopedMatcher rooted at the file's directory. Unreadable rule files
// and directories are skipped with a warning; only an inaccessible root is
// an error.
func Load(rootDir string, opts ...Option) (*Rules, error) {
	absRootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("ignore: failed to get absolute path for rootDir '%s': %w", rootDir, err)
	}

	info, err := os.Stat(absRootDir)
	if err != nil {
		return nil, fmt.Errorf("ignore: cannot access root '%s': %w", absRootDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("ignore: '%s': %w", absRootDir, ErrRootNotDir)
	}

	rules := &Rules{
		root:          absRootDir,
		ruleFileNames: []string{DefaultRuleFile},
		logger:        utils.NoopLogger{},
	}

	for _, opt := range opts {
		opt(rules)
	}

	if rules.disabled {
		rules.logger.Debug("Rule loading disabled for root: %s", rules.root)
		return rules, nil
	}

	if err := rules.discover(); err != nil {
		return nil, err
	}

	if len(rules.customPatterns) > 0 {
		content := strings.Join(rules.customPatterns, "\n")
		m := newScopedMatcher(rules.root, CustomSource, strings.NewReader(content), rules.logger)
		m.lines = len(rules.customPatterns)
		rules.matchers = append(rules.matchers, m)
		rules.logger.Debug("Loaded %d custom patterns", m.lines)
	}

	rules.logger.Debug("Loaded %d rule sets under %s", len(rules.matchers), rules.root)
	return rules, nil
}

// discover walks the root in lexical order so discovery order is stable.
func (r *Rules) discover() error {
	wanted := make(map[string]struct{}, len(r.ruleFileNames))
	for _, name := range r.ruleFileNames {
		wanted[name] = struct{}{}
	}

	return filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == r.root {
				return fmt.Errorf("ignore: cannot read root '%s': %w", r.root, err)
			}
			r.logger.Warn("Skipping unreadable path %s: %v", r.rel(path), err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if _, ok := wanted[d.Name()]; ok {
			r.compileFile(path)
		}
		return nil
	})
}

// compileFile adds one rule file. Read or decoding failures drop the file.
func (r *Rules) compileFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("Skipping rule file %s: %v", r.rel(path), err)
		return
	}
	if !utf8.Valid(data) {
		r.logger.Warn("Skipping rule file %s: not valid UTF-8", r.rel(path))
		return
	}

	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	m := newScopedMatcher(filepath.Dir(path), path, bytes.NewReader(data), r.logger)
	m.lines = bytes.Count(data, []byte("\n"))
	if len(data) > 0 && data[len(data)-1] != '\n' {
		m.lines++
	}

	r.matchers = append(r.matchers, m)
	r.logger.Debug("Loaded %d lines from %s", m.lines, r.rel(path))
}

func newScopedMatcher(root, source string, content io.Reader, logger utils.Logger) *ScopedMatcher {
	onError := func(e gitignore.Error) bool {
		logger.Debug("Ignoring invalid pattern in %s at %s: %v", source, e.Position(), e.Underlying())
		return true
	}

	return &ScopedMatcher{
		root:   filepath.Clean(root),
		source: source,
		rules:  gitignore.NewParser(content, onError).Parse(),
	}
}

// rel renders path relative to the root for diagnostics.
func (r *Rules) rel(path string) string {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// Package ignore discovers ignore-rule files under a project root and decides
// whether a path is excluded by any of them.
package ignore

import (
	"errors"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/svjt78/code-to-pdf/internal/utils"
)

// DefaultRuleFile is the rule file name discovered when none is configured.
const DefaultRuleFile = ".gitignore"

// CustomSource is the Source reported by the matcher built from WithCustomRules.
const CustomSource = "<custom>"

// ErrRootNotDir is returned by Load when the root exists but is not a directory.
var ErrRootNotDir = errors.New("root is not a directory")

// ScopedMatcher is one compiled rule file bound to the directory it governs.
// It never matches paths outside that directory.
type ScopedMatcher struct {
	root   string // absolute directory the patterns are rooted at
	source string // rule file path, or CustomSource
	rules  []gitignore.Pattern // in file order; the last match wins
	lines  int
}

// Rules is the ordered collection of scoped matchers found under one root.
// It is read-only once Load returns and safe for concurrent use.
type Rules struct {
	root     string
	matchers []*ScopedMatcher

	// Configuration
	ruleFileNames  []string
	customPatterns []string
	logger         utils.Logger
	disabled       bool
}

// Config holds configuration options for Load
type Config struct {
	RootDir       string
	RuleFileNames []string
	CustomRules   []string
	Logger        utils.Logger
	Disabled      bool
}

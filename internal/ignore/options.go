package ignore

import "github.com/svjt78/code-to-pdf/internal/utils"

// Option functions for configuration
type Option func(*Rules)

// WithRuleFileNames sets the file names treated as ignore-rule files.
// Empty names are dropped; an empty list keeps the default.
func WithRuleFileNames(names ...string) Option {
	return func(r *Rules) {
		var kept []string
		for _, name := range names {
			if name != "" {
				kept = append(kept, name)
			}
		}
		if len(kept) > 0 {
			r.ruleFileNames = kept
		}
	}
}

// WithCustomRules adds patterns that behave like an extra rule file at the root.
func WithCustomRules(patterns []string) Option {
	return func(r *Rules) {
		r.customPatterns = patterns
	}
}

func WithLogger(logger utils.Logger) Option {
	return func(r *Rules) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDisabled skips discovery entirely; the resulting Rules exclude nothing.
func WithDisabled(disabled bool) Option {
	return func(r *Rules) {
		r.disabled = disabled
	}
}

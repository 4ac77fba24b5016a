package ignore

// NewFromConfig loads Rules from a Config struct
func NewFromConfig(cfg Config) (*Rules, error) {
	options := []Option{
		WithRuleFileNames(cfg.RuleFileNames...),
		WithDisabled(cfg.Disabled),
	}

	if len(cfg.CustomRules) > 0 {
		options = append(options, WithCustomRules(cfg.CustomRules))
	}

	if cfg.Logger != nil {
		options = append(options, WithLogger(cfg.Logger))
	}

	return Load(cfg.RootDir, options...)
}

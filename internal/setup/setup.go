// Package setup provides initialization and configuration functions
package setup

import (
	"fmt"
	"io"
	"strings"

	"github.com/svjt78/code-to-pdf/internal/config"
	"github.com/svjt78/code-to-pdf/internal/ignore"
	"github.com/svjt78/code-to-pdf/internal/scanner"
	"github.com/svjt78/code-to-pdf/internal/tree"
	"github.com/svjt78/code-to-pdf/internal/utils"
)

// InfoLogger wraps the Info method for status updates
type InfoLogger func(format string, args ...interface{})

// RulesConfig builds the rule loader configuration for absRoot from cfg.
func RulesConfig(cfg *config.Config, absRoot string, log utils.Logger, infoLog InfoLogger) ignore.Config {
	custom := utils.SplitList(cfg.CustomIgnore)
	if len(custom) > 0 {
		infoLog("Using custom ignore patterns: %v", custom)
	}

	return ignore.Config{
		RootDir:       absRoot,
		RuleFileNames: utils.SplitList(cfg.RuleFiles),
		CustomRules:   custom,
		Logger:        log,
	}
}

// ScannerOptions builds the scanner options from cfg. progressOut receives
// the progress line when --progress is set.
func ScannerOptions(cfg *config.Config, log utils.Logger, infoLog InfoLogger, progressOut io.Writer) []scanner.Option {
	exts := utils.CleanExtensions(utils.SplitList(cfg.Extensions))
	names := utils.SplitList(cfg.Names)

	if len(exts) > 0 {
		infoLog("Including extensions: %s", "."+strings.Join(exts, ", ."))
	}
	if len(names) > 0 {
		infoLog("Including names: %s", strings.Join(names, ", "))
	}
	if cfg.MaxFileSize > 0 {
		infoLog("Ignoring files larger than %d bytes.", cfg.MaxFileSize)
	}

	opts := []scanner.Option{
		scanner.WithLogger(log),
		scanner.WithExtensions(exts),
		scanner.WithNames(names),
		scanner.WithMaxFileSize(cfg.MaxFileSize),
		scanner.WithDedupe(cfg.Dedupe),
		scanner.WithConcurrency(cfg.Concurrent),
		scanner.WithMaxWorkers(cfg.MaxWorkers),
	}

	if cfg.ShowProgress && !cfg.Quiet && progressOut != nil {
		log.Debug("Progress display enabled")
		opts = append(opts, scanner.WithProgress(ProgressPrinter(progressOut)))
	}
	return opts
}

// ProgressPrinter returns a callback that rewrites a single status line.
func ProgressPrinter(w io.Writer) scanner.ProgressCallback {
	return func(stats scanner.ProgressStats) {
		fmt.Fprintf(w, "\rChecking... | Candidates: %d/%d | Included: %d | Skipped: %d",
			stats.Checked, stats.Candidates, stats.Included, stats.Skipped)
	}
}

// TreeOptions builds the pruner options from cfg.
func TreeOptions(cfg *config.Config, log utils.Logger) []tree.Option {
	var drawer tree.Drawer = tree.ExecDrawer{}
	if cfg.TreeEngine == config.EngineNative {
		drawer = tree.NativeDrawer{}
	}
	return []tree.Option{
		tree.WithDrawer(drawer),
		tree.WithLogger(log),
	}
}

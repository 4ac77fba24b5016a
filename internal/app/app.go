package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/svjt78/code-to-pdf/internal/config"
	"github.com/svjt78/code-to-pdf/internal/ignore"
	"github.com/svjt78/code-to-pdf/internal/logger"
	"github.com/svjt78/code-to-pdf/internal/printer"
	"github.com/svjt78/code-to-pdf/internal/scanner"
	"github.com/svjt78/code-to-pdf/internal/setup"
	"github.com/svjt78/code-to-pdf/internal/summary"
	"github.com/svjt78/code-to-pdf/internal/tree"
)

// App encapsulates the main application functionality
type App struct {
	cfg    *config.Config
	log    *logger.Logger
	Output io.Writer // export destination when no output file is configured
	Stderr io.Writer
}

// New creates a new App instance
func New(cfg *config.Config, stdout, stderr io.Writer) *App {
	// Configure color globally
	color.NoColor = !cfg.UseColors

	log := logger.New(stderr, cfg.Verbose, cfg.UseColors)

	// Apply log level if specified (overrides verbose/quiet flags)
	if cfg.LogLevel != "" {
		log.SetLevel(cfg.LogLevel)
	} else if cfg.Quiet {
		log.WithLevel(logger.LevelWarn)
	}

	return &App{
		cfg:    cfg,
		log:    log,
		Output: stdout,
		Stderr: stderr,
	}
}

// Run executes one export. Only an unusable root, an unwritable output or
// cancellation is returned as an error; every other problem is logged.
func (a *App) Run(ctx context.Context) error {
	startTime := time.Now()

	if ctx == nil {
		ctx = context.Background()
	}
	var cancel context.CancelFunc
	if a.cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// Helper for info messages, suppressed by quiet flag
	infoLog := func(format string, args ...interface{}) {
		if !a.cfg.Quiet {
			a.log.Info(format, args...)
		}
	}

	if a.log.Enabled(logger.LevelDebug) {
		a.log.Debug("Color output: %v", a.cfg.UseColors)
		a.log.Debug("Directory: %s", a.cfg.RootDir)
		a.log.Debug("Concurrent mode: %v (workers: %d)", a.cfg.Concurrent, a.cfg.MaxWorkers)
		a.log.Debug("Max file size: %d bytes", a.cfg.MaxFileSize)
		a.log.Debug("Tree: engine=%s depth=%d disabled=%v", a.cfg.TreeEngine, a.cfg.TreeDepth, a.cfg.NoTree)
	}

	// --- Directory validation ---
	absRootDir, err := filepath.Abs(a.cfg.RootDir)
	if err != nil {
		return fmt.Errorf("invalid root directory path '%s': %w", a.cfg.RootDir, err)
	}
	dirInfo, err := os.Stat(absRootDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("root directory '%s' not found: %w", absRootDir, err)
		}
		return fmt.Errorf("could not access root directory '%s': %w", absRootDir, err)
	}
	if !dirInfo.IsDir() {
		return fmt.Errorf("specified path '%s': %w", absRootDir, ignore.ErrRootNotDir)
	}

	// --- Rules, loaded once and shared by the scan and the structure listing ---
	rules, err := ignore.NewFromConfig(setup.RulesConfig(a.cfg, absRootDir, a.log.Named("ignore"), infoLog))
	if err != nil {
		return fmt.Errorf("error initializing ignore rules: %w", err)
	}
	a.log.Debug("Loaded %d rule sets", rules.Len())

	// --- Scan ---
	infoLog("Scanning for source files in: %s", absRootDir)
	if a.cfg.Concurrent {
		infoLog("Using concurrent checks with %d workers.", a.cfg.MaxWorkers)
	}
	scanOpts := setup.ScannerOptions(a.cfg, a.log.Named("scan"), infoLog, a.Stderr)
	result, err := scanner.Scan(ctx, absRootDir, rules, scanOpts...)
	if a.cfg.ShowProgress && !a.cfg.Quiet {
		fmt.Fprintln(a.Stderr)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("timeout of %v reached: %w", a.cfg.Timeout, err)
		}
		return err
	}
	infoLog("Found %d files to export.", len(result.Files))

	// --- Structure appendix ---
	var structure string
	if !a.cfg.NoTree {
		infoLog("Generating project structure (depth=%d)...", a.cfg.TreeDepth)
		pruner := tree.New(setup.TreeOptions(a.cfg, a.log.Named("tree"))...)
		structure = pruner.Render(ctx, absRootDir, a.cfg.TreeDepth, rules)
	}

	// --- Export ---
	out := a.Output
	outputPath := a.cfg.ResolveOutput(absRootDir)
	if outputPath != "" {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	p := printer.New().
		WithOutput(out).
		WithFormat(a.cfg.Format).
		WithColors(a.cfg.UseColors && outputPath == "" && isTerminal(out)).
		WithLogger(a.log.Named("print"))

	if err := p.Export(printer.Document{
		Root:      absRootDir,
		Files:     result.Files,
		Structure: structure,
		TreeDepth: a.cfg.TreeDepth,
	}); err != nil {
		return err
	}
	if outputPath != "" {
		infoLog("Export written to %s", outputPath)
	}

	// --- Summary ---
	summary.DisplayResults(a.log, a.Stderr, p.GetCount(), result.Candidates, time.Since(startTime), a.cfg.Quiet)
	if a.cfg.ShowSkipped {
		summary.DisplaySkippedItems(a.log, result.Skipped, a.Stderr, a.cfg.Quiet)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/svjt78/code-to-pdf/internal/ignore"
	"github.com/svjt78/code-to-pdf/internal/logger"
	"github.com/svjt78/code-to-pdf/internal/scanner"
	"github.com/svjt78/code-to-pdf/internal/tree"
)

// Output formats
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Tree engines
const (
	EngineExec   = "exec"
	EngineNative = "native"
)

// DefaultFileName is the per-project config file looked up in the root.
const DefaultFileName = ".code2pdf.yaml"

// Config holds all application configuration settings
type Config struct {
	// Directory settings
	RootDir    string
	OutputFile string

	// Selection settings
	Extensions   string
	Names        string
	MaxFileSize  int64
	CustomIgnore string
	RuleFiles    string
	Dedupe       bool

	// Structure appendix
	TreeDepth  int
	TreeEngine string
	NoTree     bool

	// Processing settings
	Concurrent   bool
	MaxWorkers   int
	ShowProgress bool
	Timeout      time.Duration

	// Logging settings
	Verbose     bool
	Quiet       bool
	LogLevel    string
	NoColor     bool
	UseColors   bool
	ShowSkipped bool

	// Output format
	Format string

	// ConfigFile is the YAML file given with --config.
	ConfigFile string
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		RootDir:     ".",
		Extensions:  scanner.DefaultExtensions,
		Names:       scanner.DefaultNames,
		MaxFileSize: scanner.DefaultMaxFileSize,
		RuleFiles:   ignore.DefaultRuleFile,
		TreeDepth:   tree.DefaultDepth,
		TreeEngine:  EngineExec,
		MaxWorkers:  runtime.NumCPU(),
		Format:      FormatText,
	}
}

// BindFlags registers every setting on fs, using the current values as
// defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.OutputFile, "output", "o", c.OutputFile, "Write the export to this file (relative paths resolve against the parent of the root; default stdout)")
	fs.StringVar(&c.Extensions, "exts", c.Extensions, "Comma-separated file extensions to include (without the dot); order defines output grouping")
	fs.StringVar(&c.Names, "names", c.Names, "Comma-separated exact file names to include (e.g. Dockerfile)")
	fs.Int64Var(&c.MaxFileSize, "max-size", c.MaxFileSize, "Max file size in bytes (0 = no limit)")
	fs.StringVar(&c.CustomIgnore, "ignore", c.CustomIgnore, "Extra ignore patterns (comma-separated, gitignore syntax)")
	fs.StringVar(&c.RuleFiles, "rule-files", c.RuleFiles, "Comma-separated rule file names discovered at any depth")
	fs.BoolVar(&c.Dedupe, "dedupe", c.Dedupe, "Yield a file once even if several groups match it")
	fs.IntVar(&c.TreeDepth, "tree-depth", c.TreeDepth, "Depth of the project structure listing")
	fs.StringVar(&c.TreeEngine, "tree-engine", c.TreeEngine, "Structure listing engine: exec (external tree program) or native")
	fs.BoolVar(&c.NoTree, "no-tree", c.NoTree, "Do not append the project structure")
	fs.BoolVar(&c.Concurrent, "concurrent", c.Concurrent, "Check candidates concurrently")
	fs.IntVar(&c.MaxWorkers, "workers", c.MaxWorkers, "Max number of concurrent workers (defaults to number of CPU cores)")
	fs.BoolVar(&c.ShowProgress, "progress", c.ShowProgress, "Show progress information")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Maximum execution time (e.g., '30s', '5m')")
	fs.StringVar(&c.Format, "format", c.Format, "Output format: text, json or markdown")
	fs.BoolVar(&c.ShowSkipped, "show-skipped", c.ShowSkipped, "Show a table of skipped files and reasons at the end")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "Enable verbose logging (DEBUG, WARN, ERROR)")
	fs.BoolVarP(&c.Quiet, "quiet", "q", c.Quiet, "Suppress INFO messages (only show WARN, ERROR)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Set the logging level (DEBUG, INFO, WARN, ERROR, NONE)")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "Disable color output")
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML config file (default <root>/"+DefaultFileName+" when present)")
}

// Finalize loads the config file, validates the result and derives UseColors.
// fs tells which flags were set explicitly; it may be nil.
func (c *Config) Finalize(fs *pflag.FlagSet) error {
	if c.RootDir == "" {
		c.RootDir = "."
	}

	path := c.ConfigFile
	if path == "" {
		candidate := filepath.Join(c.RootDir, DefaultFileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		if err := c.LoadFile(path, fs); err != nil {
			return err
		}
	}

	if err := c.Validate(); err != nil {
		return err
	}

	c.UseColors = !c.NoColor && StderrIsTerminal()
	return nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Format {
	case FormatText, FormatJSON, FormatMarkdown:
	default:
		return fmt.Errorf("config: unknown format %q (want text, json or markdown)", c.Format)
	}

	c.TreeEngine = strings.ToLower(strings.TrimSpace(c.TreeEngine))
	switch c.TreeEngine {
	case EngineExec, EngineNative:
	default:
		return fmt.Errorf("config: unknown tree engine %q (want exec or native)", c.TreeEngine)
	}

	if c.LogLevel != "" {
		if _, ok := logger.LookupLevel(c.LogLevel); !ok {
			return fmt.Errorf("config: unknown log level %q (want debug, info, warn, error or none)", c.LogLevel)
		}
	}

	if c.TreeDepth <= 0 {
		return fmt.Errorf("config: tree depth must be positive, got %d", c.TreeDepth)
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("config: max size must not be negative, got %d", c.MaxFileSize)
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = runtime.NumCPU()
	}
	return nil
}

// ResolveOutput returns the absolute output path, or "" for stdout. Relative
// paths are taken relative to the parent of the project root.
func (c *Config) ResolveOutput(absRoot string) string {
	if c.OutputFile == "" || c.OutputFile == "-" {
		return ""
	}
	if filepath.IsAbs(c.OutputFile) {
		return filepath.Clean(c.OutputFile)
	}
	return filepath.Join(filepath.Dir(absRoot), c.OutputFile)
}

// StderrIsTerminal reports whether stderr is an interactive terminal.
func StderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

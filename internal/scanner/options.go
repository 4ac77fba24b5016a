package scanner

import (
	"runtime"

	"github.com/svjt78/code-to-pdf/internal/utils"
)

// Defaults used when no option overrides them.
const (
	DefaultMaxFileSize int64 = 2 << 20
	DefaultExtensions        = "py,js,json,yml,ini,dev,prod,ts,tsx,java,cpp,css,html,md"
	DefaultNames             = "Dockerfile"
)

// Options configures the behavior of Scan
type Options struct {
	Logger      utils.Logger
	Extensions  []string
	Names       []string
	MaxFileSize int64 // <= 0 disables the ceiling
	Dedupe      bool
	Concurrent  bool
	MaxWorkers  int
	ProgressFn  ProgressCallback
}

func defaultOptions() Options {
	return Options{
		Logger:      utils.NoopLogger{},
		Extensions:  utils.CleanExtensions(utils.SplitList(DefaultExtensions)),
		Names:       utils.SplitList(DefaultNames),
		MaxFileSize: DefaultMaxFileSize,
		MaxWorkers:  runtime.NumCPU(),
	}
}

// Option is a functional option for configuring Options
type Option func(*Options)

// WithLogger sets a custom logger for the scanner
func WithLogger(logger utils.Logger) Option {
	return func(opts *Options) {
		opts.Logger = utils.OrNoop(logger)
	}
}

// WithExtensions sets the ordered extension groups (with or without the dot).
// An empty list disables extension candidates.
func WithExtensions(extensions []string) Option {
	return func(opts *Options) {
		opts.Extensions = utils.CleanExtensions(extensions)
	}
}

// WithNames sets the ordered exact-name groups. Names may use glob syntax.
func WithNames(names []string) Option {
	return func(opts *Options) {
		opts.Names = append([]string(nil), names...)
	}
}

// WithMaxFileSize sets the size ceiling in bytes; 0 disables it.
func WithMaxFileSize(maxBytes int64) Option {
	return func(opts *Options) {
		opts.MaxFileSize = maxBytes
	}
}

// WithDedupe yields a file only for the first group that matches it.
func WithDedupe(enabled bool) Option {
	return func(opts *Options) {
		opts.Dedupe = enabled
	}
}

// WithConcurrency enables or disables concurrent candidate checks
func WithConcurrency(enabled bool) Option {
	return func(opts *Options) {
		opts.Concurrent = enabled
	}
}

// WithMaxWorkers sets the maximum number of concurrent workers
func WithMaxWorkers(workers int) Option {
	return func(opts *Options) {
		if workers > 0 {
			opts.MaxWorkers = workers
		}
	}
}

// WithProgress adds a progress callback function
func WithProgress(fn ProgressCallback) Option {
	return func(opts *Options) {
		opts.ProgressFn = fn
	}
}

package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/svjt78/code-to-pdf/internal/ignore"
)

type counters struct {
	candidates atomic.Int64
	checked    atomic.Int64
	included   atomic.Int64
	skipped    atomic.Int64
}

func (c *counters) snapshot() ProgressStats {
	return ProgressStats{
		Candidates: c.candidates.Load(),
		Checked:    c.checked.Load(),
		Included:   c.included.Load(),
		Skipped:    c.skipped.Load(),
	}
}

// outcome is the decision for one candidate; exactly one field is set.
type outcome struct {
	file   *File
	reason SkippedReason
}

// Scan enumerates the candidates under rootDir group by group and keeps the
// ones that pass every check, in this order: regular file (symlinks
// followed), built-in denylist, rules, binary probe, size ceiling.
//
// rules may be nil. Only an unusable root is an error; everything else is
// recorded in Result.Skipped. On cancellation no partial result is returned.
func Scan(ctx context.Context, rootDir string, rules *ignore.Rules, opts ...Option) (*Result, error) {
	startTime := time.Now()

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("scanner: failed to get absolute path for '%s': %w", rootDir, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scanner: cannot access root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanner: %s: %w", absRoot, ignore.ErrRootNotDir)
	}

	groups, err := compileGroups(options.Extensions, options.Names)
	if err != nil {
		return nil, err
	}

	options.Logger.Debug("scanner.Scan started. Root: %s, Groups: %d, Concurrent: %v, Workers: %d",
		absRoot, len(groups), options.Concurrent, options.MaxWorkers)

	var stats counters
	stopProgress := startProgress(options.ProgressFn, &stats)
	defer stopProgress()

	tracker := NewSkippedTracker(64)
	entries, err := walkEntries(ctx, absRoot, rules, options, tracker)
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}
		return nil, fmt.Errorf("scanner: cannot read root: %w", err)
	}

	candidates := expand(groups, entries, options.Dedupe)
	stats.candidates.Store(int64(len(candidates)))
	options.Logger.Debug("scanner: %d entries, %d candidates", len(entries), len(candidates))

	outcomes := make([]outcome, len(candidates))
	check := func(i int) {
		outcomes[i] = checkCandidate(candidates[i], rules, options)
		stats.checked.Add(1)
		if outcomes[i].file != nil {
			stats.included.Add(1)
		} else {
			stats.skipped.Add(1)
		}
	}

	if options.Concurrent && options.MaxWorkers > 1 {
		err = checkConcurrently(ctx, len(candidates), options.MaxWorkers, check)
	} else {
		err = checkSequentially(ctx, len(candidates), check)
	}
	if err != nil {
		return nil, cancelled(ctx)
	}

	result := &Result{Candidates: len(candidates)}
	for i, o := range outcomes {
		if o.file != nil {
			result.Files = append(result.Files, *o.file)
			continue
		}
		tracker.Track(candidates[i].rel, o.reason, candidates[i].isDir)
	}
	result.Skipped = tracker.Items()

	options.Logger.Debug("scanner: %d included, %d skipped in %s",
		len(result.Files), len(result.Skipped), time.Since(startTime))
	return result, nil
}

func checkSequentially(ctx context.Context, n int, check func(int)) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		check(i)
	}
	return ctx.Err()
}

// checkConcurrently fans checks out over at most workers goroutines. Each
// check writes only its own slot, so results keep candidate order.
func checkConcurrently(ctx context.Context, n, workers int, check func(int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			check(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func checkCandidate(c candidate, rules *ignore.Rules, options Options) outcome {
	log := options.Logger

	if c.duplicate {
		log.Debug("Skipping %s: already yielded by an earlier group", c.rel)
		return outcome{reason: ReasonDuplicate}
	}

	info, err := os.Stat(c.abs)
	if err != nil {
		log.Debug("Skipping %s: %v", c.rel, err)
		if errors.Is(err, fs.ErrPermission) {
			return outcome{reason: ReasonPermError}
		}
		return outcome{reason: ReasonInfoError}
	}
	if !info.Mode().IsRegular() {
		log.Debug("Skipping %s: not a regular file", c.rel)
		return outcome{reason: ReasonNotRegular}
	}

	if IsDenylisted(c.name) {
		log.Debug("Skipping %s: built-in denylist", c.rel)
		return outcome{reason: ReasonDenylisted}
	}

	if rules.IsExcluded(c.abs, false) {
		return outcome{reason: ReasonIgnoredRule}
	}

	binary, err := IsBinary(c.abs)
	if err != nil {
		log.Debug("Binary probe failed for %s, treating as binary: %v", c.rel, err)
		return outcome{reason: ReasonBinary}
	}
	if binary {
		log.Debug("Skipping %s: binary content", c.rel)
		return outcome{reason: ReasonBinary}
	}

	if options.MaxFileSize > 0 && info.Size() > options.MaxFileSize {
		log.Debug("Skipping %s: exceeds size limit (%d > %d bytes)", c.rel, info.Size(), options.MaxFileSize)
		return outcome{reason: ReasonSizeLimit}
	}

	return outcome{file: &File{Path: c.rel, AbsPath: c.abs, Size: info.Size(), Group: c.group}}
}

// IsDenylisted reports whether name is one of the built-in denylisted names.
func IsDenylisted(name string) bool {
	return name == StructureReportName || name == LockfileName
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
}

// startProgress reports stats periodically until the returned func is called,
// which sends one final report.
func startProgress(fn ProgressCallback, stats *counters) func() {
	if fn == nil {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(300 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn(stats.snapshot())
			}
		}
	}()

	return func() {
		close(done)
		<-finished
		fn(stats.snapshot())
	}
}

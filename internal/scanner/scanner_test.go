package scanner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svjt78/code-to-pdf/internal/ignore"
)

func writeFile(t *testing.T, root, rel string, content []byte) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func loadRules(t *testing.T, root string) *ignore.Rules {
	t.Helper()
	rules, err := ignore.Load(root)
	require.NoError(t, err)
	return rules
}

type warnRecorder struct {
	mu       sync.Mutex
	warnings []string
}

func (l *warnRecorder) Debug(format string, args ...interface{}) {}
func (l *warnRecorder) Info(format string, args ...interface{})  {}
func (l *warnRecorder) Warn(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}
func (l *warnRecorder) Error(format string, args ...interface{}) {}

func skippedReason(res *Result, path string) (SkippedReason, bool) {
	for _, s := range res.Skipped {
		if s.Path == path {
			return s.Reason, true
		}
	}
	return "", false
}

func TestScan_Scenario1_RuleFileExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", []byte("print('a')\n"))
	writeFile(t, root, "b.py", []byte("print('b')\n"))
	writeFile(t, root, ".gitignore", []byte("b.py\n"))

	res, err := Scan(context.Background(), root, loadRules(t, root),
		WithExtensions([]string{"py"}), WithNames(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"a.py"}, res.Paths())
	reason, ok := skippedReason(res, "b.py")
	require.True(t, ok)
	assert.Equal(t, ReasonIgnoredRule, reason)
}

func TestScan_Scenario3_SizeCeiling(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.py", bytes.Repeat([]byte("a"), 3<<20))

	res, err := Scan(context.Background(), root, nil,
		WithExtensions([]string{"py"}), WithMaxFileSize(2<<20))
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	reason, _ := skippedReason(res, "big.py")
	assert.Equal(t, ReasonSizeLimit, reason)

	res, err = Scan(context.Background(), root, nil,
		WithExtensions([]string{"py"}), WithMaxFileSize(4<<20))
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, int64(3<<20), res.Files[0].Size)

	res, err = Scan(context.Background(), root, nil,
		WithExtensions([]string{"py"}), WithMaxFileSize(0))
	require.NoError(t, err)
	assert.Len(t, res.Files, 1, "a zero ceiling disables the check")
}

func TestScan_DenylistIgnoresRuleFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package-lock.json", []byte("{}\n"))
	writeFile(t, root, "sub/package-lock.json", []byte("{}\n"))
	writeFile(t, root, "project_structure.txt", []byte("tree\n"))
	writeFile(t, root, "package.json", []byte("{}\n"))
	writeFile(t, root, ".gitignore", []byte("!package-lock.json\n"))

	res, err := Scan(context.Background(), root, loadRules(t, root),
		WithExtensions([]string{"json", "txt"}), WithNames(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"package.json"}, res.Paths())
	for _, p := range []string{"package-lock.json", "sub/package-lock.json", "project_structure.txt"} {
		reason, ok := skippedReason(res, p)
		require.True(t, ok, p)
		assert.Equal(t, ReasonDenylisted, reason, p)
	}
}

func TestScan_BinaryContentExcluded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "data.py", []byte{'a', 0x00, 'b', 0x01})
	writeFile(t, root, "empty.py", nil)
	writeFile(t, root, "unicode.py", []byte("s = 'héllo wörld ✓'\n"))

	res, err := Scan(context.Background(), root, nil, WithExtensions([]string{"py"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"empty.py", "unicode.py"}, res.Paths())
	reason, _ := skippedReason(res, "data.py")
	assert.Equal(t, ReasonBinary, reason)
}

func TestScan_GroupOrderAndPathOrder(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"b.py", "a.py", "a/z.py", "README.md", "docs/guide.md", "Dockerfile", "svc/Dockerfile"} {
		writeFile(t, root, rel, []byte("x\n"))
	}

	res, err := Scan(context.Background(), root, nil,
		WithExtensions([]string{"md", ".py"}), WithNames([]string{"Dockerfile"}))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"README.md", "docs/guide.md",
		"a/z.py", "a.py", "b.py",
		"Dockerfile", "svc/Dockerfile",
	}, res.Paths())
	assert.Equal(t, "*.md", res.Files[0].Group)
	assert.Equal(t, "*.py", res.Files[2].Group)
	assert.Equal(t, "Dockerfile", res.Files[5].Group)
	assert.Equal(t, filepath.Join(root, "a", "z.py"), res.Files[2].AbsPath)
}

func TestScan_ExtensionCaseIsKept(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "top.py", []byte("x\n"))
	writeFile(t, root, "B.PY", []byte("x\n"))

	res, err := Scan(context.Background(), root, nil, WithExtensions([]string{"PY"}), WithNames(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"B.PY"}, res.Paths())

	res, err = Scan(context.Background(), root, nil, WithExtensions([]string{"py", "PY"}), WithNames(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"top.py", "B.PY"}, res.Paths())
}

func TestScan_DuplicatesAcrossGroups(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", []byte("x\n"))

	opts := []Option{WithExtensions([]string{"py"}), WithNames([]string{"main.py"})}

	res, err := Scan(context.Background(), root, nil, opts...)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.py", "main.py"}, res.Paths())

	res, err = Scan(context.Background(), root, nil, append(opts, WithDedupe(true))...)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.py"}, res.Paths())
	reason, _ := skippedReason(res, "main.py")
	assert.Equal(t, ReasonDuplicate, reason)
}

func TestScan_PrunesIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", []byte("build/\n"))
	writeFile(t, root, "build/out.py", []byte("x\n"))
	writeFile(t, root, "src/app.py", []byte("x\n"))

	res, err := Scan(context.Background(), root, loadRules(t, root), WithExtensions([]string{"py"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"src/app.py"}, res.Paths())
	assert.Contains(t, res.Skipped, SkippedItem{Path: "build", Reason: ReasonIgnoredRule, IsDir: true})
}

func TestScan_AnchoredPatternOnlyAtRuleFileDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", []byte("/*.py\n"))
	writeFile(t, root, "top.py", []byte("x\n"))
	writeFile(t, root, "sub/a.py", []byte("x\n"))

	res, err := Scan(context.Background(), root, loadRules(t, root), WithExtensions([]string{"py"}), WithNames(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"sub/a.py"}, res.Paths())
	reason, ok := skippedReason(res, "top.py")
	require.True(t, ok)
	assert.Equal(t, ReasonIgnoredRule, reason)
}

func TestScan_WhitelistedDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", []byte("/*\n!/src/\n"))
	writeFile(t, root, "setup.py", []byte("x\n"))
	writeFile(t, root, "src/a.py", []byte("x\n"))
	writeFile(t, root, "docs/b.py", []byte("x\n"))

	res, err := Scan(context.Background(), root, loadRules(t, root), WithExtensions([]string{"py"}), WithNames(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"src/a.py"}, res.Paths())
	assert.Contains(t, res.Skipped, SkippedItem{Path: "docs", Reason: ReasonIgnoredRule, IsDir: true})
}

func TestScan_SkipsUnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}

	root := t.TempDir()
	writeFile(t, root, "a.py", []byte("x\n"))
	writeFile(t, root, "locked/b.py", []byte("x\n"))
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	log := &warnRecorder{}
	res, err := Scan(context.Background(), root, nil, WithExtensions([]string{"py"}), WithNames(nil), WithLogger(log))
	require.NoError(t, err)

	assert.Equal(t, []string{"a.py"}, res.Paths())
	assert.Contains(t, res.Skipped, SkippedItem{Path: "locked", Reason: ReasonPermError, IsDir: true})
	require.Len(t, log.warnings, 1)
	assert.Contains(t, log.warnings[0], "locked")
}

func TestScan_DirectoryNamedLikeCandidate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg.py"), 0o755))
	writeFile(t, root, "pkg.py/inner.py", []byte("x\n"))

	res, err := Scan(context.Background(), root, nil, WithExtensions([]string{"py"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"pkg.py/inner.py"}, res.Paths())
	assert.Contains(t, res.Skipped, SkippedItem{Path: "pkg.py", Reason: ReasonNotRegular, IsDir: true})
}

func TestScan_FollowsFileSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	writeFile(t, root, "target.txt", []byte("x\n"))
	require.NoError(t, os.Symlink(filepath.Join(root, "target.txt"), filepath.Join(root, "link.py")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling.py")))

	res, err := Scan(context.Background(), root, nil, WithExtensions([]string{"py"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"link.py"}, res.Paths())
	reason, _ := skippedReason(res, "dangling.py")
	assert.Equal(t, ReasonInfoError, reason)
}

func TestScan_ConcurrentMatchesSequential(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", []byte("*_skip.py\n"))
	for i := 0; i < 60; i++ {
		writeFile(t, root, fmt.Sprintf("d%02d/f%02d.py", i%7, i), []byte("x\n"))
		writeFile(t, root, fmt.Sprintf("d%02d/f%02d_skip.py", i%5, i), []byte("x\n"))
		writeFile(t, root, fmt.Sprintf("m%02d.md", i), []byte("# x\n"))
	}
	writeFile(t, root, "bin.py", []byte{0, 1, 2, 3})
	rules := loadRules(t, root)
	opts := []Option{WithExtensions([]string{"py", "md"})}

	seq, err := Scan(context.Background(), root, rules, opts...)
	require.NoError(t, err)

	conc, err := Scan(context.Background(), root, rules,
		append(opts, WithConcurrency(true), WithMaxWorkers(8))...)
	require.NoError(t, err)

	assert.Equal(t, seq.Files, conc.Files)
	assert.Equal(t, seq.Skipped, conc.Skipped)
	assert.Len(t, seq.Files, 120)
}

func TestScan_CancelledReturnsNoResult(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", []byte("x\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, concurrent := range []bool{false, true} {
		res, err := Scan(ctx, root, nil, WithConcurrency(concurrent), WithMaxWorkers(4))
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrCancelled)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestScan_RootErrors(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "f.py")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = Scan(context.Background(), file, nil)
	assert.ErrorIs(t, err, ignore.ErrRootNotDir)
}

func TestScan_InvalidNamePattern(t *testing.T) {
	_, err := Scan(context.Background(), t.TempDir(), nil, WithNames([]string{"[unclosed"}))
	assert.Error(t, err)
}

func TestScan_ReportsFinalProgress(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", []byte("x\n"))
	writeFile(t, root, "b.py", []byte{0})

	var mu sync.Mutex
	var last ProgressStats
	res, err := Scan(context.Background(), root, nil,
		WithExtensions([]string{"py"}),
		WithProgress(func(s ProgressStats) {
			mu.Lock()
			last = s
			mu.Unlock()
		}))
	require.NoError(t, err)
	require.Len(t, res.Files, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, ProgressStats{Candidates: 2, Checked: 2, Included: 1, Skipped: 1}, last)
}

func TestScan_DefaultGroups(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"app.ts", "Dockerfile", "notes.txt", "settings.prod"} {
		writeFile(t, root, rel, []byte("x\n"))
	}

	res, err := Scan(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"settings.prod", "app.ts", "Dockerfile"}, res.Paths())
}

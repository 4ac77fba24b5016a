// Package scanner selects the files of a project that belong in an export.
package scanner

import (
	"errors"
	"sync"
)

// Built-in denylist. These names are never exported, whatever the rule
// files say.
const (
	StructureReportName = "project_structure.txt"
	LockfileName        = "package-lock.json"
)

// ErrCancelled is returned when the context ends before the scan completes.
// The context's own error is wrapped alongside it.
var ErrCancelled = errors.New("scanner: scan cancelled")

// SkippedReason clarifies why a candidate was not exported.
type SkippedReason string

const (
	ReasonNotRegular  SkippedReason = "Skipped (Not a Regular File)"
	ReasonDenylisted  SkippedReason = "Skipped (Built-in Denylist)"
	ReasonIgnoredRule SkippedReason = "Ignored (Gitignore/Custom Rule)"
	ReasonBinary      SkippedReason = "Skipped (Binary Content)"
	ReasonSizeLimit   SkippedReason = "Skipped (Size Limit Exceeded)"
	ReasonDuplicate   SkippedReason = "Skipped (Duplicate Candidate)"
	ReasonInfoError   SkippedReason = "Skipped (File Info Error)"
	ReasonPermError   SkippedReason = "Skipped (Permission Error)"
	ReasonWalkError   SkippedReason = "Skipped (Walk Error)"
)

// SkippedItem holds information about a skipped path.
type SkippedItem struct {
	Path   string        `json:"path"`
	Reason SkippedReason `json:"reason"`
	IsDir  bool          `json:"is_dir"`
}

// File is one exported file.
type File struct {
	// Path is relative to the scan root, slash separated.
	Path    string `json:"path"`
	AbsPath string `json:"-"`
	Size    int64  `json:"size"`
	// Group is the candidate pattern that produced the file, e.g. "*.py".
	Group string `json:"group"`
}

// Result is the ordered outcome of one scan.
type Result struct {
	Files      []File        `json:"files"`
	Skipped    []SkippedItem `json:"skipped,omitempty"`
	Candidates int           `json:"candidates"`
}

// Paths returns the relative paths of the exported files in order.
func (r *Result) Paths() []string {
	if r == nil {
		return nil
	}
	paths := make([]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Path
	}
	return paths
}

// ProgressCallback is a function that receives progress updates
type ProgressCallback func(stats ProgressStats)

// ProgressStats holds statistics about the scan progress
type ProgressStats struct {
	Candidates int64 // Candidates enumerated for all groups
	Checked    int64 // Candidates that went through every check
	Included   int64
	Skipped    int64
}

// SkippedTracker collects skipped items; safe for concurrent use.
type SkippedTracker struct {
	items []SkippedItem
	mutex sync.Mutex
}

// NewSkippedTracker creates a new SkippedTracker
func NewSkippedTracker(capacity int) *SkippedTracker {
	return &SkippedTracker{
		items: make([]SkippedItem, 0, capacity),
	}
}

// Track adds a skipped item to the tracker
func (st *SkippedTracker) Track(path string, reason SkippedReason, isDir bool) {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.items = append(st.items, SkippedItem{Path: path, Reason: reason, IsDir: isDir})
}

// Items returns a copy of the tracked skipped items
func (st *SkippedTracker) Items() []SkippedItem {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	out := make([]SkippedItem, len(st.items))
	copy(out, st.items)
	return out
}

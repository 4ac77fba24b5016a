// Package printer handles output formatting and display
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/fatih/color"

	"github.com/svjt78/code-to-pdf/internal/scanner"
	"github.com/svjt78/code-to-pdf/internal/utils"
)

// Supported formats
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Document is everything one export contains.
type Document struct {
	Root  string
	Files []scanner.File
	// Structure is the filtered project listing; empty omits the appendix.
	Structure string
	TreeDepth int
}

// Printer writes a Document to the configured output destination
type Printer struct {
	output    io.Writer
	format    string
	useColors bool
	logger    utils.Logger
	count     int
}

// New creates a new Printer with default settings
func New() *Printer {
	return &Printer{
		output: os.Stdout,
		format: FormatText,
		logger: utils.NoopLogger{},
	}
}

// WithOutput sets the output destination
func (p *Printer) WithOutput(w io.Writer) *Printer {
	p.output = w
	return p
}

// WithFormat selects text, json or markdown
func (p *Printer) WithFormat(format string) *Printer {
	p.format = format
	return p
}

// WithColors enables or disables colored path headers in text mode
func (p *Printer) WithColors(enabled bool) *Printer {
	p.useColors = enabled
	return p
}

// WithLogger sets the logger used for per-file read problems
func (p *Printer) WithLogger(l utils.Logger) *Printer {
	p.logger = utils.OrNoop(l)
	return p
}

// GetCount returns the number of files exported
func (p *Printer) GetCount() int {
	return p.count
}

// Export writes doc in the configured format.
func (p *Printer) Export(doc Document) error {
	var err error
	switch p.format {
	case FormatJSON:
		err = p.exportJSON(doc)
	case FormatMarkdown:
		err = p.exportMarkdown(doc)
	case FormatText, "":
		err = p.exportText(doc)
	default:
		return fmt.Errorf("printer: unknown format %q", p.format)
	}
	if err != nil {
		return fmt.Errorf("printer: %w", err)
	}
	p.count = len(doc.Files)
	return nil
}

func (p *Printer) exportText(doc Document) error {
	header := color.New(color.FgCyan, color.Bold)
	if !p.useColors {
		header.DisableColor()
	}

	w := &errWriter{w: p.output}
	for _, f := range doc.Files {
		header.Fprint(w, f.Path)
		fmt.Fprintf(w, "  (%d bytes)\n", f.Size)
	}
	if doc.Structure != "" {
		fmt.Fprintf(w, "\n%s\n\n%s", structureTitle(doc.TreeDepth), ensureNewline(doc.Structure))
	}
	return w.err
}

// JSONFileEntry represents a file entry in JSON output
type JSONFileEntry struct {
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	Group string `json:"group"`
}

// JSONDocument is the top-level JSON export.
type JSONDocument struct {
	Root      string          `json:"root"`
	Files     []JSONFileEntry `json:"files"`
	Structure string          `json:"structure,omitempty"`
}

func (p *Printer) exportJSON(doc Document) error {
	out := JSONDocument{
		Root:      doc.Root,
		Files:     make([]JSONFileEntry, 0, len(doc.Files)),
		Structure: doc.Structure,
	}
	for _, f := range doc.Files {
		out.Files = append(out.Files, JSONFileEntry{Path: f.Path, Size: f.Size, Group: f.Group})
	}

	enc := json.NewEncoder(p.output)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (p *Printer) exportMarkdown(doc Document) error {
	w := &errWriter{w: p.output}

	fmt.Fprintf(w, "# %s\n\n## Table of Contents\n\n", path.Base(strings.ReplaceAll(doc.Root, "\\", "/")))
	for i, f := range doc.Files {
		fmt.Fprintf(w, "%d. [%s](#file-%d)\n", i+1, f.Path, i+1)
	}

	for i, f := range doc.Files {
		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			p.logger.Warn("Cannot read %s: %v", f.Path, err)
			content = []byte(fmt.Sprintf("(unreadable: %v)", err))
		}
		fence := fenceFor(content)
		fmt.Fprintf(w, "\n<a id=\"file-%d\"></a>\n\n## %s\n\n%s%s\n%s%s\n",
			i+1, f.Path, fence, language(f.Path), ensureNewline(string(content)), fence)
	}

	if doc.Structure != "" {
		fmt.Fprintf(w, "\n## %s\n\n```\n%s```\n", structureTitle(doc.TreeDepth), ensureNewline(doc.Structure))
	}
	return w.err
}

func structureTitle(depth int) string {
	return fmt.Sprintf("Project Structure (depth %d)", depth)
}

// fenceFor returns a backtick fence longer than any run inside content.
func fenceFor(content []byte) string {
	longest, run := 0, 0
	for _, b := range content {
		if b == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

func language(p string) string {
	base := path.Base(p)
	if base == "Dockerfile" {
		return "dockerfile"
	}
	return strings.TrimPrefix(path.Ext(base), ".")
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// errWriter remembers the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(b)
	e.err = err
	return n, err
}

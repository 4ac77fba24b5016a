package printer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svjt78/code-to-pdf/internal/scanner"
)

func testDoc(t *testing.T) Document {
	t.Helper()
	root := filepath.Join(t.TempDir(), "proj")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	files := map[string]string{
		"src/app.py": "print('hi')\n",
		"README.md":  "# Title\n\n```sh\nmake\n```",
		"Dockerfile": "FROM scratch\n",
	}
	var out []scanner.File
	for _, rel := range []string{"README.md", "src/app.py", "Dockerfile"} {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.WriteFile(abs, []byte(files[rel]), 0o644))
		out = append(out, scanner.File{Path: rel, AbsPath: abs, Size: int64(len(files[rel])), Group: "g"})
	}

	return Document{Root: root, Files: out, Structure: ".\n└── src\n", TreeDepth: 3}
}

func TestExport_Text(t *testing.T) {
	doc := testDoc(t)
	var buf bytes.Buffer

	p := New().WithOutput(&buf).WithFormat(FormatText)
	require.NoError(t, p.Export(doc))

	assert.Equal(t, "README.md  (23 bytes)\nsrc/app.py  (12 bytes)\nDockerfile  (13 bytes)\n"+
		"\nProject Structure (depth 3)\n\n.\n└── src\n", buf.String())
	assert.Equal(t, 3, p.GetCount())
}

func TestExport_TextWithoutStructure(t *testing.T) {
	doc := testDoc(t)
	doc.Structure = ""
	var buf bytes.Buffer

	require.NoError(t, New().WithOutput(&buf).Export(doc))

	assert.NotContains(t, buf.String(), "Project Structure")
}

func TestExport_JSON(t *testing.T) {
	doc := testDoc(t)
	var buf bytes.Buffer

	require.NoError(t, New().WithOutput(&buf).WithFormat(FormatJSON).Export(doc))

	var got JSONDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, doc.Root, got.Root)
	require.Len(t, got.Files, 3)
	assert.Equal(t, "src/app.py", got.Files[1].Path)
	assert.Equal(t, int64(12), got.Files[1].Size)
	assert.Equal(t, doc.Structure, got.Structure)
}

func TestExport_Markdown(t *testing.T) {
	doc := testDoc(t)
	var buf bytes.Buffer

	require.NoError(t, New().WithOutput(&buf).WithFormat(FormatMarkdown).Export(doc))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# proj\n\n## Table of Contents\n\n1. [README.md](#file-1)\n2. [src/app.py](#file-2)\n3. [Dockerfile](#file-3)\n"))
	assert.Contains(t, out, "<a id=\"file-2\"></a>\n\n## src/app.py\n\n```py\nprint('hi')\n```\n")
	assert.Contains(t, out, "````md\n# Title\n\n```sh\nmake\n```\n````\n", "fence grows past inner fences")
	assert.Contains(t, out, "```dockerfile\nFROM scratch\n```\n")
	assert.True(t, strings.HasSuffix(out, "## Project Structure (depth 3)\n\n```\n.\n└── src\n```\n"))
}

func TestExport_MarkdownUnreadableFile(t *testing.T) {
	doc := testDoc(t)
	doc.Files = append(doc.Files, scanner.File{Path: "gone.py", AbsPath: filepath.Join(doc.Root, "gone.py")})
	var buf bytes.Buffer

	require.NoError(t, New().WithOutput(&buf).WithFormat(FormatMarkdown).Export(doc))

	assert.Contains(t, buf.String(), "## gone.py\n\n```py\n(unreadable:")
}

func TestExport_UnknownFormat(t *testing.T) {
	err := New().WithOutput(&bytes.Buffer{}).WithFormat("pdf").Export(Document{})
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, os.ErrClosed }

func TestExport_WriteError(t *testing.T) {
	err := New().WithOutput(failingWriter{}).Export(testDoc(t))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestFenceFor(t *testing.T) {
	assert.Equal(t, "```", fenceFor([]byte("no ticks")))
	assert.Equal(t, "```", fenceFor([]byte("a `b` ``c``")))
	assert.Equal(t, "`````", fenceFor([]byte("````x")))
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "blank", input: "  ", want: nil},
		{name: "single", input: "Dockerfile", want: []string{"Dockerfile"}},
		{name: "trims and drops empties", input: " py, ,js ,,md", want: []string{"py", "js", "md"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.input))
		})
	}
}

func TestCleanExtensions(t *testing.T) {
	got := CleanExtensions([]string{".py", "js", " .md ", "py", ""})
	assert.Equal(t, []string{"py", "js", "md"}, got)

	assert.Equal(t, []string{"PY", "py"}, CleanExtensions([]string{".PY", "py", "PY"}), "case is kept")
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, NoopLogger{}, OrNoop(nil))

	var l Logger = NoopLogger{}
	assert.Equal(t, l, OrNoop(l))
}

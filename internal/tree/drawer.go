// Package tree renders the project structure appendix.
package tree

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrUnavailable means the drawing facility cannot be used at all.
var ErrUnavailable = errors.New("tree: drawing facility not available")

// Drawer produces an indentation-based listing of root, descending at most
// depth levels and never entering entries whose name matches exclude.
type Drawer interface {
	Draw(ctx context.Context, root string, depth int, exclude []string) (string, error)
}

// DefaultCommand is the external program run by ExecDrawer.
const DefaultCommand = "tree"

// ExecDrawer runs the external tree program inside root.
type ExecDrawer struct {
	// Command overrides DefaultCommand.
	Command string
}

// Draw runs `tree -L <depth> -I <a|b|...>` with root as working directory.
// A missing program yields an error wrapping ErrUnavailable.
func (d ExecDrawer) Draw(ctx context.Context, root string, depth int, exclude []string) (string, error) {
	name := d.Command
	if name == "" {
		name = DefaultCommand
	}

	args := []string{"-L", strconv.Itoa(depth)}
	if len(exclude) > 0 {
		args = append(args, "-I", strings.Join(exclude, "|"))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = root
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return stdout.String(), nil
}

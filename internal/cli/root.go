// Package cli provides the root command and CLI setup for code2pdf.
package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/svjt78/code-to-pdf/internal/app"
	"github.com/svjt78/code-to-pdf/internal/config"
)

// NewRootCmd builds the export command with its own Config.
func NewRootCmd() *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "code2pdf [root]",
		Short: "Select the source files of a project for export, with its structure",
		Long: `code2pdf walks a project root, selects source files by extension and name,
and drops anything excluded by .gitignore files found at any depth, binary
content, oversized files and generated lockfiles. The selected files are
exported in order, followed by a project structure listing filtered with the
same rules.

Every rule file is applied to its own directory and all exclusions are
combined: a negation in a nested rule file cannot re-include a path that
another rule file excludes.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.RootDir = args[0]
			}
			if err := cfg.Finalize(cmd.Flags()); err != nil {
				return err
			}
			return app.New(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr()).Run(cmd.Context())
		},
	}

	cfg.BindFlags(cmd.Flags())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on failure. This is
// called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// Package cli defines the toprompt command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bethropolis/toprompt/internal/app"
	"github.com/bethropolis/toprompt/internal/config"
	"github.com/bethropolis/toprompt/internal/diag"
	"github.com/bethropolis/toprompt/internal/version"
)

const longHelp = `toprompt collects source files into one bundle ready to paste into an LLM prompt.

Arguments may be files, directories or glob patterns. Directories contribute
their immediate files, or every file beneath them with -r. Patterns that do
not name an existing path are expanded here, so quote them to keep the shell
from doing it.

By default the bundle is copied to the clipboard as Markdown, one fenced code
block per file. Use --xml for <file path="..."> elements, and --stdout or
-o FILE to write it elsewhere.`

const examples = `  toprompt main.go util.go
  toprompt -ri .                    # whole tree, honouring .gitignore
  toprompt -r src --ext go,md       # only Go and Markdown files under src
  toprompt '**/*.py' --xml --stdout # every Python file, XML, to stdout`

// NewRootCommand builds the root command. Options are passed to the App for
// every run.
func NewRootCommand(opts ...app.Option) *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:           "toprompt [flags] <file|dir|glob>...",
		Short:         "Bundle source files into a single prompt-ready text",
		Long:          longHelp,
		Example:       examples,
		Version:       version.Get().String(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.PrintErr(cmd.UsageString())
				return diag.ErrNoArguments
			}
			cfg.Paths = args
			return app.New(cfg, opts...).Run(cmd.Context())
		},
	}
	cmd.SetVersionTemplate("toprompt {{.Version}}\n")

	cfg.BindFlags(cmd.Flags())
	return cmd
}

// Execute runs the command line with args (without the program name).
func Execute(ctx context.Context, args []string, opts ...app.Option) error {
	cmd := NewRootCommand(opts...)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// PrintError reports err on w. Errors that are not fatal pipeline errors come
// from command line parsing and get a pointer to --help.
func PrintError(w io.Writer, err error) {
	color.New(color.FgRed).Fprint(w, "Error: ")
	fmt.Fprintln(w, err)
	if !diag.IsFatal(err) {
		fmt.Fprintln(w, "Run 'toprompt --help' for usage.")
	}
}

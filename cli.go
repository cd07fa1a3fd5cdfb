package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harshvasudeva/dialog-companion/config"
	"github.com/harshvasudeva/dialog-companion/dialog"
)

// exitFailure is returned when no dialog outcome was produced.
const exitFailure = 2

type app struct {
	stderr       io.Writer
	service      func() *dialog.Service
	runCompanion func() int
}

// execute runs the command line and returns the process exit code. For the
// one-shot dialog commands that is the dialog program's own exit code.
func execute(args []string, a *app) int {
	if args == nil {
		// cobra falls back to os.Args for a nil slice
		args = []string{}
	}
	code := 0
	root := newRootCmd(a, &code)
	root.SetArgs(args)
	root.SetErr(a.stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitFailure
	}
	return code
}

func newRootCmd(a *app, code *int) *cobra.Command {
	root := &cobra.Command{
		Use:           "dialog-companion",
		Short:         "Native message dialogs for local scripts",
		Long:          "Runs the tray companion serving dialogs on 127.0.0.1, or shows a single dialog and exits with its result.",
		Version:       config.AppVersion,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, args []string) {
			*code = a.runCompanion()
		},
	}

	for _, kind := range []dialog.Kind{dialog.KindError, dialog.KindInfo, dialog.KindWarning} {
		root.AddCommand(newKindCmd(a, code, kind))
	}
	root.AddCommand(newShowCmd(a, code))
	return root
}

func newKindCmd(a *app, code *int, kind dialog.Kind) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   string(kind) + " <message...>",
		Short: fmt.Sprintf("Show %s dialog and exit with its result", article(kind)),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showOnce(a, code, dialog.Request{Kind: kind, Message: strings.Join(args, " "), Title: title})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "dialog title (default from config)")
	return cmd
}

func newShowCmd(a *app, code *int) *cobra.Command {
	var title, kind string
	cmd := &cobra.Command{
		Use:   "show <message...>",
		Short: "Show a dialog of any kind and exit with its result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showOnce(a, code, dialog.Request{Kind: dialog.Kind(kind), Message: strings.Join(args, " "), Title: title})
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(dialog.KindInfo), "dialog kind: error, info or warning")
	cmd.Flags().StringVarP(&title, "title", "t", "", "dialog title (default from config)")
	return cmd
}

func showOnce(a *app, code *int, req dialog.Request) error {
	out, err := a.service().Show(req)
	if err != nil {
		return err
	}
	*code = out.ExitCode
	return nil
}

func article(kind dialog.Kind) string {
	if kind == dialog.KindError || kind == dialog.KindInfo {
		return "an " + string(kind)
	}
	return "a " + string(kind)
}

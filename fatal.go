package main

import (
	"fmt"
	"os"

	"github.com/harshvasudeva/dialog-companion/dialog"
)

// showFatalDialog reports a startup failure with a native error dialog,
// falling back to stderr when no dialog program is available.
func showFatalDialog(title, message string) {
	if _, err := dialog.New(dialog.Options{}).Error(message, title); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %s: %s\n", title, message)
	}
}

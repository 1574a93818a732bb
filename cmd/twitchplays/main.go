// Package main is the entry point for the twitchplays bot.
package main

import (
	"errors"
	"fmt"
	"os"

	"golang.design/x/hotkey/mainthread"

	_ "github.com/dshills/twitchplays/internal/emulator/keybd"
	_ "github.com/dshills/twitchplays/internal/emulator/robotgo"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Global hotkeys must be registered from the main thread on macOS, so
	// the whole program runs inside mainthread.Init.
	code := 0
	mainthread.Init(func() { code = run(os.Args[1:]) })
	os.Exit(code)
}

func run(args []string) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", exit.err)
			}
			return exit.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// exitError carries a specific process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

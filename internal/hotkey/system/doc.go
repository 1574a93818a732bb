// Package system registers hotkey bindings with the operating system
// through golang.design/x/hotkey.
//
// On Linux the X11 backend of that library refuses to load without a
// display, so it is only compiled into binaries built with -tags x11.
// Without the tag, or without cgo on macOS, Register reports
// hotkey.ErrUnavailable and the bot runs with the hotkey disabled.
package system

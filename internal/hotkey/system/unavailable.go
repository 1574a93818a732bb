//go:build !((darwin && cgo) || windows || (linux && cgo && x11))

package system

import (
	"fmt"
	"runtime"

	"github.com/dshills/twitchplays/internal/hotkey"
)

// Available reports whether this build can grab global hotkeys.
const Available = false

// Register always fails on this build.
func Register(b hotkey.Binding) (hotkey.Handle, error) {
	if runtime.GOOS == "linux" {
		return nil, fmt.Errorf("%w: rebuild with -tags x11 to grab %q", hotkey.ErrUnavailable, b.String())
	}
	return nil, fmt.Errorf("%w on %s", hotkey.ErrUnavailable, runtime.GOOS)
}

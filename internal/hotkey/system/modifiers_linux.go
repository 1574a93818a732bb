//go:build cgo && x11

package system

import (
	xhotkey "golang.design/x/hotkey"

	"github.com/dshills/twitchplays/internal/hotkey"
)

// X11 maps alt to Mod1 and the super key to Mod4 on common layouts.
var modifiers = map[hotkey.Modifier]xhotkey.Modifier{
	hotkey.ModCtrl:  xhotkey.ModCtrl,
	hotkey.ModShift: xhotkey.ModShift,
	hotkey.ModAlt:   xhotkey.Mod1,
	hotkey.ModSuper: xhotkey.Mod4,
}

//go:build cgo

package system

import (
	xhotkey "golang.design/x/hotkey"

	"github.com/dshills/twitchplays/internal/hotkey"
)

var modifiers = map[hotkey.Modifier]xhotkey.Modifier{
	hotkey.ModCtrl:  xhotkey.ModCtrl,
	hotkey.ModShift: xhotkey.ModShift,
	hotkey.ModAlt:   xhotkey.ModOption,
	hotkey.ModSuper: xhotkey.ModCmd,
}

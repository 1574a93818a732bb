//go:build windows

package keybd

import (
	"log/slog"

	"github.com/micmonay/keybd_event"

	"github.com/dshills/twitchplays/internal/emulator"
)

// scanCodes maps canonical key names to keybd_event codes.
var scanCodes = map[string]int{
	"esc":       keybd_event.VK_ESC,
	"enter":     keybd_event.VK_ENTER,
	"tab":       keybd_event.VK_TAB,
	"backspace": keybd_event.VK_BACKSPACE,
	"space":     keybd_event.VK_SPACE,
	"delete":    keybd_event.VK_DELETE,
	"insert":    keybd_event.VK_INSERT,
	"home":      keybd_event.VK_HOME,
	"end":       keybd_event.VK_END,
	"pageup":    keybd_event.VK_PAGEUP,
	"pagedown":  keybd_event.VK_PAGEDOWN,
	"up":        keybd_event.VK_UP,
	"down":      keybd_event.VK_DOWN,
	"left":      keybd_event.VK_LEFT,
	"right":     keybd_event.VK_RIGHT,
	"f1":        keybd_event.VK_F1,
	"f2":        keybd_event.VK_F2,
	"f3":        keybd_event.VK_F3,
	"f4":        keybd_event.VK_F4,
	"f5":        keybd_event.VK_F5,
	"f6":        keybd_event.VK_F6,
	"f7":        keybd_event.VK_F7,
	"f8":        keybd_event.VK_F8,
	"f9":        keybd_event.VK_F9,
	"f10":       keybd_event.VK_F10,
	"f11":       keybd_event.VK_F11,
	"f12":       keybd_event.VK_F12,
	"a":         keybd_event.VK_A,
	"b":         keybd_event.VK_B,
	"c":         keybd_event.VK_C,
	"d":         keybd_event.VK_D,
	"e":         keybd_event.VK_E,
	"f":         keybd_event.VK_F,
	"g":         keybd_event.VK_G,
	"h":         keybd_event.VK_H,
	"i":         keybd_event.VK_I,
	"j":         keybd_event.VK_J,
	"k":         keybd_event.VK_K,
	"l":         keybd_event.VK_L,
	"m":         keybd_event.VK_M,
	"n":         keybd_event.VK_N,
	"o":         keybd_event.VK_O,
	"p":         keybd_event.VK_P,
	"q":         keybd_event.VK_Q,
	"r":         keybd_event.VK_R,
	"s":         keybd_event.VK_S,
	"t":         keybd_event.VK_T,
	"u":         keybd_event.VK_U,
	"v":         keybd_event.VK_V,
	"w":         keybd_event.VK_W,
	"x":         keybd_event.VK_X,
	"y":         keybd_event.VK_Y,
	"z":         keybd_event.VK_Z,
	"0":         keybd_event.VK_0,
	"1":         keybd_event.VK_1,
	"2":         keybd_event.VK_2,
	"3":         keybd_event.VK_3,
	"4":         keybd_event.VK_4,
	"5":         keybd_event.VK_5,
	"6":         keybd_event.VK_6,
	"7":         keybd_event.VK_7,
	"8":         keybd_event.VK_8,
	"9":         keybd_event.VK_9,
}

// Backend presses keys with a fresh keybd_event.KeyBonding per call, so
// concurrent workers never share modifier state.
type Backend struct {
	logger *slog.Logger
}

// New creates a keybd backend.
func New(logger *slog.Logger) *Backend {
	return &Backend{logger: logger}
}

// PressDown holds the key down.
func (b *Backend) PressDown(key emulator.ActionKey) error {
	kb, err := b.bonding(emulator.OpPressDown, key)
	if err != nil {
		return err
	}
	if err := kb.Press(); err != nil {
		return emulator.NewEmulationError(emulator.OpPressDown, key, err)
	}
	return nil
}

// PressUp releases the key.
func (b *Backend) PressUp(key emulator.ActionKey) error {
	kb, err := b.bonding(emulator.OpPressUp, key)
	if err != nil {
		return err
	}
	if err := kb.Release(); err != nil {
		return emulator.NewEmulationError(emulator.OpPressUp, key, err)
	}
	return nil
}

func (b *Backend) bonding(op string, key emulator.ActionKey) (*keybd_event.KeyBonding, error) {
	name, ok := emulator.Canonical(key)
	if !ok {
		return nil, emulator.NewEmulationError(op, key, emulator.ErrUnknownKey)
	}

	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, emulator.NewEmulationError(op, key, err)
	}

	switch name {
	case "shift":
		kb.HasSHIFT(true)
	case "rshift":
		kb.HasSHIFTR(true)
	case "ctrl":
		kb.HasCTRL(true)
	case "rctrl":
		kb.HasCTRLR(true)
	case "alt":
		kb.HasALT(true)
	case "ralt":
		kb.HasALTGR(true)
	default:
		code, ok := scanCodes[name]
		if !ok {
			return nil, emulator.NewEmulationError(op, key, emulator.ErrUnknownKey)
		}
		kb.SetKeys(code)
	}

	b.logger.Debug("keybd bonding prepared", "key", name, "op", op)
	return &kb, nil
}

func init() {
	emulator.Register(emulator.BackendKeybd, func(logger *slog.Logger) (emulator.Emulator, error) {
		return New(logger), nil
	})
}

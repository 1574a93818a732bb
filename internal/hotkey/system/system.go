//go:build (darwin && cgo) || windows || (linux && cgo && x11)

package system

import (
	"fmt"

	xhotkey "golang.design/x/hotkey"

	"github.com/dshills/twitchplays/internal/hotkey"
)

// Available reports whether this build can grab global hotkeys.
const Available = true

var keys = func() map[string]xhotkey.Key {
	m := map[string]xhotkey.Key{
		"space":  xhotkey.KeySpace,
		"enter":  xhotkey.KeyReturn,
		"esc":    xhotkey.KeyEscape,
		"delete": xhotkey.KeyDelete,
		"tab":    xhotkey.KeyTab,
		"left":   xhotkey.KeyLeft,
		"right":  xhotkey.KeyRight,
		"up":     xhotkey.KeyUp,
		"down":   xhotkey.KeyDown,
		"f1":     xhotkey.KeyF1,
		"f2":     xhotkey.KeyF2,
		"f3":     xhotkey.KeyF3,
		"f4":     xhotkey.KeyF4,
		"f5":     xhotkey.KeyF5,
		"f6":     xhotkey.KeyF6,
		"f7":     xhotkey.KeyF7,
		"f8":     xhotkey.KeyF8,
		"f9":     xhotkey.KeyF9,
		"f10":    xhotkey.KeyF10,
		"f11":    xhotkey.KeyF11,
		"f12":    xhotkey.KeyF12,
	}
	letters := []xhotkey.Key{
		xhotkey.KeyA, xhotkey.KeyB, xhotkey.KeyC, xhotkey.KeyD, xhotkey.KeyE,
		xhotkey.KeyF, xhotkey.KeyG, xhotkey.KeyH, xhotkey.KeyI, xhotkey.KeyJ,
		xhotkey.KeyK, xhotkey.KeyL, xhotkey.KeyM, xhotkey.KeyN, xhotkey.KeyO,
		xhotkey.KeyP, xhotkey.KeyQ, xhotkey.KeyR, xhotkey.KeyS, xhotkey.KeyT,
		xhotkey.KeyU, xhotkey.KeyV, xhotkey.KeyW, xhotkey.KeyX, xhotkey.KeyY,
		xhotkey.KeyZ,
	}
	for i, k := range letters {
		m[string(rune('a'+i))] = k
	}
	digits := []xhotkey.Key{
		xhotkey.Key0, xhotkey.Key1, xhotkey.Key2, xhotkey.Key3, xhotkey.Key4,
		xhotkey.Key5, xhotkey.Key6, xhotkey.Key7, xhotkey.Key8, xhotkey.Key9,
	}
	for i, k := range digits {
		m[string(rune('0'+i))] = k
	}
	return m
}()

// translate maps a parsed binding onto the library's platform codes.
func translate(b hotkey.Binding) ([]xhotkey.Modifier, xhotkey.Key, error) {
	mods := make([]xhotkey.Modifier, 0, len(b.Modifiers))
	for _, m := range b.Modifiers {
		mod, ok := modifiers[m]
		if !ok {
			return nil, 0, fmt.Errorf("%w %q on this platform", hotkey.ErrUnknownModifier, m)
		}
		mods = append(mods, mod)
	}
	key, ok := keys[b.Key]
	if !ok {
		return nil, 0, fmt.Errorf("%w %q on this platform", hotkey.ErrUnknownKey, b.Key)
	}
	return mods, key, nil
}

// Register grabs b from the operating system. The grab keeps the key event
// from reaching other applications.
func Register(b hotkey.Binding) (hotkey.Handle, error) {
	mods, key, err := translate(b)
	if err != nil {
		return nil, err
	}
	hk := xhotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, err
	}

	h := &handle{hk: hk, pressed: make(chan struct{}, 1)}
	go h.forward(hk.Keydown())
	return h, nil
}

// handle adapts *xhotkey.Hotkey to hotkey.Handle.
type handle struct {
	hk      *xhotkey.Hotkey
	pressed chan struct{}
}

func (h *handle) Pressed() <-chan struct{} {
	return h.pressed
}

func (h *handle) Unregister() error {
	return h.hk.Unregister()
}

// forward ends when Unregister closes the library's keydown channel. A
// press arriving while the previous one is still unread is dropped, so an
// abandoned handle never blocks this goroutine.
func (h *handle) forward(keydown <-chan xhotkey.Event) {
	defer close(h.pressed)
	for range keydown {
		select {
		case h.pressed <- struct{}{}:
		default:
		}
	}
}

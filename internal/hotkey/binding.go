// Package hotkey binds a global keyboard shortcut to a callback.
//
// Bindings are written as "+"-separated specs, modifiers first and the key
// last: "ctrl+shift+t", "alt+f9", "cmd+option+p". This package only parses
// and dispatches; grabbing the key from the operating system is done by a
// Registrar such as the one in package system.
package hotkey

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Parse errors.
var (
	ErrEmptySpec       = errors.New("empty hotkey specification")
	ErrInvalidHotkey   = errors.New("invalid hotkey specification")
	ErrUnknownModifier = errors.New("unknown hotkey modifier")
	ErrUnknownKey      = errors.New("unknown hotkey key")
)

// Modifier is a canonical modifier name.
type Modifier string

// Canonical modifiers. Super is the Windows key on Windows, Cmd on macOS
// and Mod4 on X11; Alt is Option on macOS.
const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModSuper Modifier = "super"
)

var modifierAliases = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"shift":   ModShift,
	"alt":     ModAlt,
	"option":  ModAlt,
	"super":   ModSuper,
	"win":     ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
	"meta":    ModSuper,
}

var keyAliases = map[string]string{
	"return": "enter",
	"escape": "esc",
}

// Keys accepted as the last part of a spec, after alias resolution.
var keyNames = func() map[string]bool {
	m := map[string]bool{
		"space": true, "enter": true, "esc": true, "delete": true, "tab": true,
		"left": true, "right": true, "up": true, "down": true,
	}
	for c := 'a'; c <= 'z'; c++ {
		m[string(c)] = true
	}
	for c := '0'; c <= '9'; c++ {
		m[string(c)] = true
	}
	for i := 1; i <= 12; i++ {
		m[fmt.Sprintf("f%d", i)] = true
	}
	return m
}()

// Binding is a parsed hotkey specification.
type Binding struct {
	Spec      string
	Modifiers []Modifier
	Key       string
}

// String returns the normalized spec.
func (b Binding) String() string {
	return b.Spec
}

// Parse parses a spec such as "ctrl+shift+t".
//
// Names are case-insensitive and surrounding whitespace is ignored. At least
// one modifier is required so the binding cannot swallow ordinary typing.
func Parse(spec string) (Binding, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Binding{}, ErrEmptySpec
	}

	parts := strings.Split(strings.ToLower(spec), "+")
	if len(parts) < 2 {
		return Binding{}, fmt.Errorf("%w: %q needs at least one modifier", ErrInvalidHotkey, spec)
	}

	var (
		mods  []Modifier
		names []string
		seen  = make(map[Modifier]bool)
	)
	for _, p := range parts[:len(parts)-1] {
		p = strings.TrimSpace(p)
		mod, ok := modifierAliases[p]
		if !ok {
			return Binding{}, fmt.Errorf("%w %q in %q", ErrUnknownModifier, p, spec)
		}
		if seen[mod] {
			return Binding{}, fmt.Errorf("%w: modifier %q repeated in %q", ErrInvalidHotkey, p, spec)
		}
		seen[mod] = true
		mods = append(mods, mod)
		names = append(names, string(mod))
	}

	key := strings.TrimSpace(parts[len(parts)-1])
	if key == "" {
		return Binding{}, fmt.Errorf("%w: missing key in %q", ErrInvalidHotkey, spec)
	}
	if alias, ok := keyAliases[key]; ok {
		key = alias
	}
	if !keyNames[key] {
		return Binding{}, fmt.Errorf("%w %q in %q", ErrUnknownKey, key, spec)
	}

	return Binding{
		Spec:      strings.Join(append(names, key), "+"),
		Modifiers: mods,
		Key:       key,
	}, nil
}

// ModifierNames returns every accepted modifier name, aliases included.
func ModifierNames() []string {
	out := make([]string, 0, len(modifierAliases))
	for name := range modifierAliases {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// KeyNames returns the canonical key names a binding may end in.
func KeyNames() []string {
	out := make([]string, 0, len(keyNames))
	for name := range keyNames {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

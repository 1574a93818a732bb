package emulator

import (
	"sort"
	"strings"
)

// keyNameMap maps accepted key names (lowercase) to canonical names.
// Canonical names follow the pyautogui/robotgo vocabulary so existing
// Twitch Plays configurations keep working.
var keyNameMap = map[string]string{
	"escape":     "esc",
	"esc":        "esc",
	"enter":      "enter",
	"return":     "enter",
	"tab":        "tab",
	"backspace":  "backspace",
	"delete":     "delete",
	"del":        "delete",
	"insert":     "insert",
	"ins":        "insert",
	"home":       "home",
	"end":        "end",
	"pageup":     "pageup",
	"pgup":       "pageup",
	"pagedown":   "pagedown",
	"pgdn":       "pagedown",
	"up":         "up",
	"down":       "down",
	"left":       "left",
	"right":      "right",
	"space":      "space",
	"shift":      "shift",
	"shiftleft":  "shift",
	"lshift":     "shift",
	"shiftright": "rshift",
	"rshift":     "rshift",
	"ctrl":       "ctrl",
	"ctrlleft":   "ctrl",
	"lctrl":      "ctrl",
	"ctrlright":  "rctrl",
	"rctrl":      "rctrl",
	"alt":        "alt",
	"altleft":    "alt",
	"lalt":       "alt",
	"altright":   "ralt",
	"ralt":       "ralt",
	"f1":         "f1",
	"f2":         "f2",
	"f3":         "f3",
	"f4":         "f4",
	"f5":         "f5",
	"f6":         "f6",
	"f7":         "f7",
	"f8":         "f8",
	"f9":         "f9",
	"f10":        "f10",
	"f11":        "f11",
	"f12":        "f12",
}

// Canonical returns the canonical name for a key, accepting aliases,
// single letters and digits. The boolean is false for unknown names.
func Canonical(key ActionKey) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(string(key)))
	if canon, ok := keyNameMap[name]; ok {
		return canon, true
	}
	if len(name) == 1 {
		c := name[0]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			return name, true
		}
	}
	return "", false
}

// KnownKey reports whether the key name is understood by the bundled
// backends.
func KnownKey(key ActionKey) bool {
	_, ok := Canonical(key)
	return ok
}

// UnknownKeys returns the sorted, de-duplicated keys that KnownKey rejects.
func UnknownKeys(keys []ActionKey) []ActionKey {
	seen := make(map[ActionKey]bool)
	var unknown []ActionKey
	for _, k := range keys {
		if KnownKey(k) || seen[k] {
			continue
		}
		seen[k] = true
		unknown = append(unknown, k)
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return unknown
}

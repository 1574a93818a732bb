//go:build (darwin && cgo) || windows || (linux && cgo && x11)

package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/twitchplays/internal/hotkey"
)

func TestTranslate_EveryParsableName(t *testing.T) {
	for _, key := range hotkey.KeyNames() {
		b, err := hotkey.Parse("ctrl+shift+alt+super+" + key)
		require.NoError(t, err, key)

		mods, _, err := translate(b)
		require.NoError(t, err, key)
		assert.Len(t, mods, 4)
	}
}

func TestTranslate_UnknownKey(t *testing.T) {
	_, _, err := translate(hotkey.Binding{Modifiers: []hotkey.Modifier{hotkey.ModCtrl}, Key: "pause"})
	assert.ErrorIs(t, err, hotkey.ErrUnknownKey)
}

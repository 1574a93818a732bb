//go:build !windows

package keybd

import (
	"log/slog"

	"github.com/dshills/twitchplays/internal/emulator"
)

func init() {
	emulator.Register(emulator.BackendKeybd, func(*slog.Logger) (emulator.Emulator, error) {
		return nil, emulator.ErrUnsupported
	})
}

package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/twitchplays/internal/command"
	"github.com/dshills/twitchplays/internal/config"
	"github.com/dshills/twitchplays/internal/emulator"
	"github.com/dshills/twitchplays/internal/hotkey"
)

// Check runs the checks that need more than the config package knows:
// the commandset builds, every key is one the emulator understands, the
// hotkey parses and the backend exists. Running the bot only warns about
// unknown keys; Check treats them as errors.
func Check(cfg *config.Config) error {
	var errs []error

	table, err := command.NewTable(cfg.Keys, cfg.Bot.CaseInsensitive)
	if err != nil {
		errs = append(errs, fmt.Errorf("keys: %w", err))
	} else {
		for _, key := range emulator.UnknownKeys(table.Actions()) {
			errs = append(errs, fmt.Errorf("keys: %w: %q", emulator.ErrUnknownKey, key))
		}
	}

	if _, err := hotkey.Parse(cfg.Hotkeys.ToggleAllowTwitchplaysCommands); err != nil {
		errs = append(errs, fmt.Errorf("hotkeys.toggle_allow_twitchplays_commands: %w", err))
	}

	backend := cfg.Emulator.Backend
	if backend != "" && backend != emulator.BackendAuto && !slices.Contains(emulator.Backends(), backend) {
		errs = append(errs, fmt.Errorf("emulator.backend: %w: %q (available: %v)",
			emulator.ErrUnknownBackend, backend, emulator.Backends()))
	}

	return errors.Join(errs...)
}

package config

import (
	"errors"
	"fmt"

	"github.com/dshills/twitchplays/internal/credential"
)

// ErrNoToken is returned when a username is configured but no token can be
// found in the config, the environment or the keyring.
var ErrNoToken = errors.New("no twitch token configured")

// ResolveToken fills Twitch.Token from store when the config leaves it empty.
// Anonymous configs are left alone.
func (c *Config) ResolveToken(store credential.Store) error {
	if c.Twitch.Token != "" {
		c.Twitch.Token = credential.NormalizeToken(c.Twitch.Token)
		return nil
	}
	if c.Anonymous() {
		return nil
	}
	if store == nil {
		return fmt.Errorf("%w for %s", ErrNoToken, c.Twitch.Username)
	}

	token, err := store.Get(c.Twitch.Username)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return fmt.Errorf("%w for %s: set twitch.token or run `twitchplays token set %s`",
				ErrNoToken, c.Twitch.Username, c.Twitch.Username)
		}
		return err
	}
	c.Twitch.Token = credential.NormalizeToken(token)
	return nil
}

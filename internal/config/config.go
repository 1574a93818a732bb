package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dshills/twitchplays/internal/config/loader"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "config.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TWITCHPLAYS_"

// Config is the complete bot configuration.
type Config struct {
	Twitch   TwitchConfig
	Bot      BotConfig
	Hotkeys  HotkeysConfig
	Emulator EmulatorConfig
	Logging  LoggingConfig

	// Keys is the commandset: chat text -> key name.
	Keys map[string]string

	// Path is the file the config was loaded from, if any.
	Path string
}

// TwitchConfig holds chat connection settings.
type TwitchConfig struct {
	// Token is the OAuth token. Empty falls back to the system keyring.
	Token string
	// Username is the bot account; required to log in with a token.
	Username string
	// ChannelToJoin is the channel whose chat drives the inputs.
	ChannelToJoin string
}

// BotConfig holds command processing settings.
type BotConfig struct {
	Prefix           string
	CaseInsensitive  bool
	InputThreads     int
	KeypressDuration time.Duration
	KeypressDelay    time.Duration
	ReloadCommands   bool
}

// HotkeysConfig holds global hotkey bindings.
type HotkeysConfig struct {
	ToggleAllowTwitchplaysCommands string
}

// EmulatorConfig selects the key emulation backend.
type EmulatorConfig struct {
	Backend string
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// Default returns the built-in configuration.
func Default() *Config {
	c, err := fromMap(defaultMap())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return c
}

// defaults holds the built-in values in the shape the loaders produce.
// DeepMerge writes into its destination, so callers take a copy from
// defaultMap.
var defaults = map[string]any{
	"twitch": map[string]any{
		"token":           "",
		"username":        "",
		"channel_to_join": "",
	},
	"bot": map[string]any{
		"prefix":            "!",
		"case_insensitive":  true,
		"input_threads":     int64(1),
		"keypress_duration": 0.1,
		"keypress_delay":    0.1,
		"reload_commands":   false,
	},
	"hotkeys": map[string]any{
		"toggle_allow_twitchplays_commands": "ctrl+shift+t",
	},
	"emulator": map[string]any{
		"backend": "auto",
	},
	"logging": map[string]any{
		"level":  "info",
		"format": "text",
	},
	"keys": map[string]any{},
}

// defaultMap returns a private copy of the default configuration values.
func defaultMap() map[string]any {
	return loader.Clone(defaults)
}

// Load reads path, applies environment overrides and validates the result.
// A missing file is ErrFileNotFound.
func Load(path string) (*Config, error) {
	return LoadWithFS(loader.DefaultFS(), path)
}

// LoadWithFS is Load on a custom file system.
func LoadWithFS(fsys loader.FileSystem, path string) (*Config, error) {
	fileMap, err := loader.ForFile(fsys, path).Load()
	if err != nil {
		return nil, err
	}
	if fileMap == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	envMap, err := loader.NewEnvLoader(EnvPrefix).Load()
	if err != nil {
		return nil, err
	}

	merged := loader.DeepMerge(defaultMap(), fileMap)
	merged = loader.DeepMerge(merged, envMap)

	c, err := fromMap(merged)
	if err != nil {
		return nil, err
	}
	c.Path = path

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadKeys reads only the [keys] section of path. It is used to reload the
// commandset while the bot runs.
func LoadKeys(path string) (map[string]string, error) {
	fileMap, err := loader.ForFile(loader.DefaultFS(), path).Load()
	if err != nil {
		return nil, err
	}
	if fileMap == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	var errs errorList
	keys := stringMap(fileMap, "keys", &errs)
	if err := errs.err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// fromMap reads every known setting out of a merged map.
func fromMap(m map[string]any) (*Config, error) {
	var errs errorList
	c := &Config{
		Twitch: TwitchConfig{
			Token:         getString(m, "twitch.token", &errs),
			Username:      getString(m, "twitch.username", &errs),
			ChannelToJoin: getString(m, "twitch.channel_to_join", &errs),
		},
		Bot: BotConfig{
			Prefix:           getString(m, "bot.prefix", &errs),
			CaseInsensitive:  getBool(m, "bot.case_insensitive", &errs),
			InputThreads:     getInt(m, "bot.input_threads", &errs),
			KeypressDuration: getSeconds(m, "bot.keypress_duration", &errs),
			KeypressDelay:    getSeconds(m, "bot.keypress_delay", &errs),
			ReloadCommands:   getBool(m, "bot.reload_commands", &errs),
		},
		Hotkeys: HotkeysConfig{
			ToggleAllowTwitchplaysCommands: getString(m, "hotkeys.toggle_allow_twitchplays_commands", &errs),
		},
		Emulator: EmulatorConfig{
			Backend: getString(m, "emulator.backend", &errs),
		},
		Logging: LoggingConfig{
			Level:  getString(m, "logging.level", &errs),
			Format: getString(m, "logging.format", &errs),
		},
		Keys: stringMap(m, "keys", &errs),
	}
	return c, errs.err()
}

// Validate checks value ranges and required settings. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs errorList

	if strings.TrimSpace(c.Twitch.ChannelToJoin) == "" {
		errs.invalid("twitch.channel_to_join", "is required", nil)
	}
	if c.Twitch.Token != "" && strings.TrimSpace(c.Twitch.Username) == "" {
		errs.invalid("twitch.username", "is required when a token is set", nil)
	}
	if c.Bot.InputThreads < 1 {
		errs.invalid("bot.input_threads", "must be at least 1", c.Bot.InputThreads)
	}
	if c.Bot.KeypressDuration < 0 {
		errs.invalid("bot.keypress_duration", "must not be negative", c.Bot.KeypressDuration.Seconds())
	}
	if c.Bot.KeypressDelay < 0 {
		errs.invalid("bot.keypress_delay", "must not be negative", c.Bot.KeypressDelay.Seconds())
	}
	if strings.TrimSpace(c.Hotkeys.ToggleAllowTwitchplaysCommands) == "" {
		errs.invalid("hotkeys.toggle_allow_twitchplays_commands", "is required", nil)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs.invalid("logging.format", "must be text or json", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs.invalid("logging.level", "must be debug, info, warn or error", c.Logging.Level)
	}
	if len(c.Keys) == 0 {
		errs.invalid("keys", "no commands configured", nil)
	}
	for _, text := range sortedKeys(c.Keys) {
		if text == "" {
			errs.invalid("keys", "command text must not be empty", nil)
		}
		if strings.TrimSpace(c.Keys[text]) == "" {
			errs.invalid("keys."+text, "key must not be empty", nil)
		}
	}

	return errs.err()
}

// Anonymous reports whether chat is joined without logging in.
func (c *Config) Anonymous() bool {
	return c.Twitch.Username == ""
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

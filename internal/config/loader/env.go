package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from environment variables.
//
// TWITCHPLAYS_BOT_INPUT_THREADS=4 becomes bot.input_threads = 4: the first
// segment after the prefix is the section and the rest is the setting name.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "TWITCHPLAYS_")
	mapping map[string]string // Env var -> config path
	skip    map[string]bool   // Sections never read from the environment
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "TWITCHPLAYS_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		skip:    map[string]bool{"keys": true},
		environ: os.Environ,
	}
}

// defaultEnvMapping returns shorthand variables that don't follow the
// SECTION_SETTING pattern.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "TOKEN":     "twitch.token",
		prefix + "CHANNEL":   "twitch.channel_to_join",
		prefix + "LOG_LEVEL": "logging.level",
	}
}

// Load reads environment variables and returns a configuration map.
// Empty values are treated as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}

		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		section, _, _ := strings.Cut(path, ".")
		if !mapped && l.skip[section] {
			continue
		}
		setByPath(config, path, parseValue(value))
	}

	return config, nil
}

// envToPath converts TWITCHPLAYS_BOT_KEYPRESS_DELAY to bot.keypress_delay.
// Names without a setting part map to "".
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, setting, ok := strings.Cut(name, "_")
	if !ok || section == "" || setting == "" {
		return ""
	}
	return section + "." + setting
}

// parseValue converts a variable to bool, int64 or float64 when it reads as
// one, and leaves it a string otherwise.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Only with a decimal point so "1e3" style channel names stay strings.
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			next := make(map[string]any)
			current[part] = next
			current = next
		}
	}

	current[parts[len(parts)-1]] = value
}

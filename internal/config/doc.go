// Package config loads the bot configuration.
//
// Values are layered, lowest priority first:
//
//  1. Built-in defaults
//  2. The config file (TOML, or YAML for .yaml/.yml paths)
//  3. TWITCHPLAYS_<SECTION>_<SETTING> environment variables
//
// The [keys] section is the commandset: chat text on the left, the key to
// press on the right. It is only read from the file, because environment
// variable names cannot carry the case or spaces a command may use.
//
// Durations are given in (fractional) seconds, e.g. keypress_duration = 0.1.
package config

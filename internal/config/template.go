package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dshills/twitchplays/internal/config/loader"
)

var (
	//go:embed config.example.toml
	templateTOML []byte

	//go:embed config.example.yaml
	templateYAML []byte
)

// Template returns the example config for the format of path.
func Template(path string) []byte {
	if loader.FormatFor(path) == loader.FormatYAML {
		return templateYAML
	}
	return templateTOML
}

// WriteTemplate creates path from the example config. An existing file is
// never overwritten.
func WriteTemplate(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrFileExists, path)
		}
		return fmt.Errorf("creating config template: %w", err)
	}

	if _, err := f.Write(Template(path)); err != nil {
		f.Close()
		return fmt.Errorf("writing config template: %w", err)
	}
	return f.Close()
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

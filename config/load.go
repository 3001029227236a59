package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads and parses a config file, picking the dialect from the file
// extension: .yml/.yaml selects the YAML dialect, anything else the
// nginx-like dialect. This is the only entry point the core (or the CLI)
// needs — dialect selection never leaks past this function.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var f *File
	switch ext {
	case ".yml", ".yaml":
		f, err = parseYAML(raw)
	default:
		f, err = parseNginxLike(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

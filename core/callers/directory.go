// Package callers resolves phone numbers to known caller profiles.
package callers

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultKey is the directory entry used for numbers with no profile of
// their own. A directory must always carry one.
const DefaultKey = "default"

// Caller is one directory entry.
type Caller struct {
	Name     string `yaml:"name"`
	Greeting string `yaml:"greeting"`
	Locale   string `yaml:"locale"`
}

// Directory maps phone numbers in E.164 form to caller profiles. It is
// loaded once at startup and read-only afterwards.
type Directory struct {
	entries map[string]Caller
}

func NewDirectory(entries map[string]Caller) (*Directory, error) {
	if _, ok := entries[DefaultKey]; !ok {
		return nil, fmt.Errorf("caller directory has no %q entry", DefaultKey)
	}
	copied := make(map[string]Caller, len(entries))
	for number, caller := range entries {
		copied[number] = caller
	}
	return &Directory{entries: copied}, nil
}

// LoadDirectory reads a YAML file mapping phone numbers to profiles.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read caller directory: %w", err)
	}

	var entries map[string]Caller
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse caller directory: %w", err)
	}

	return NewDirectory(entries)
}

// Lookup resolves a phone number, falling back to the default profile for
// unknown numbers.
func (d *Directory) Lookup(number string) Caller {
	if caller, ok := d.entries[number]; ok {
		return caller
	}
	return d.entries[DefaultKey]
}

// Known reports whether the number has a profile of its own.
func (d *Directory) Known(number string) bool {
	_, ok := d.entries[number]
	return ok
}

// Count returns the number of entries, the default included.
func (d *Directory) Count() int {
	return len(d.entries)
}

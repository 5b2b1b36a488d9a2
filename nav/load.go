package nav

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// rawEntry mirrors MenuEntry with a pointer for auth so a missing key can be
// told apart from an explicit false.
type rawEntry struct {
	Title string `yaml:"title"`
	Href  string `yaml:"href"`
	Auth  *bool  `yaml:"auth"`
}

// Load reads a YAML sequence of menu entries:
//
//	- title: Рецепты
//	  href: /recipes
//	  auth: false
//
// Every entry must set auth explicitly. Unknown keys are rejected.
func Load(r io.Reader) (Menu, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Menu{}, fmt.Errorf("nav: read: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var raw []rawEntry
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		return Menu{}, fmt.Errorf("nav: decode: %w", err)
	}
	entries := make([]MenuEntry, 0, len(raw))
	for i, re := range raw {
		if re.Auth == nil {
			return Menu{}, &ValidationError{Index: i, Field: "auth", Msg: "is missing"}
		}
		entries = append(entries, MenuEntry{Title: re.Title, Href: re.Href, Auth: *re.Auth})
	}
	return New(entries)
}

// LoadFile opens path and loads a menu from it.
func LoadFile(path string) (Menu, error) {
	f, err := os.Open(path)
	if err != nil {
		return Menu{}, fmt.Errorf("nav: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// MarshalYAML encodes the menu in the format Load accepts.
func (m Menu) MarshalYAML() (interface{}, error) {
	return m.entries, nil
}

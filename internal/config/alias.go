package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Alias is a named schedule the user can pass in place of an expression.
type Alias struct {
	Name        string `yaml:"name,omitempty" json:"name"`
	Schedule    string `yaml:"schedule" json:"schedule"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	FilePath    string `yaml:"-" json:"-"`
}

func isSafeAliasName(name string) bool {
	if name == "" {
		return false
	}
	for _, ch := range name {
		isLower := ch >= 'a' && ch <= 'z'
		isUpper := ch >= 'A' && ch <= 'Z'
		isDigit := ch >= '0' && ch <= '9'
		if isLower || isUpper || isDigit || ch == '-' || ch == '_' || ch == '.' {
			continue
		}
		return false
	}
	return true
}

// ParseAliasYAML parses a single alias YAML payload.
func ParseAliasYAML(data []byte) (*Alias, error) {
	var a Alias
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	a.Name = strings.TrimSpace(a.Name)
	a.Schedule = strings.TrimSpace(a.Schedule)
	return &a, nil
}

// LoadAliases reads all *.yaml files from dir, parses each into an
// Alias, and returns them sorted by name. An alias without a name takes
// the file's base name.
func LoadAliases(dir string) ([]*Alias, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var aliases []*Alias
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		a, err := ParseAliasYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if a.Name == "" {
			a.Name = strings.TrimSuffix(name, ".yaml")
		}
		if a.Schedule == "" {
			return nil, fmt.Errorf("%s: alias schedule is required", path)
		}
		if prev, dup := seen[a.Name]; dup {
			return nil, fmt.Errorf("duplicate alias name %q in %s and %s", a.Name, prev, path)
		}
		seen[a.Name] = path

		a.FilePath = path
		aliases = append(aliases, a)
	}

	sort.Slice(aliases, func(i, j int) bool { return aliases[i].Name < aliases[j].Name })
	return aliases, nil
}

package option

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ParseError represents an error while parsing an option file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadFile reads option values from a TOML or YAML file.
//
// The format is picked from the extension: .yaml and .yml are YAML,
// everything else is TOML. Nested tables are flattened into dotted names.
// A missing file returns nil, nil.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading option file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(path, data)
	default:
		return ParseTOML(path, data)
	}
}

// ParseTOML parses TOML option data. source names the data in errors.
func ParseTOML(source string, data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return flatten(raw), nil
}

// ParseYAML parses YAML option data. source names the data in errors.
func ParseYAML(source string, data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return flatten(raw), nil
}

// flatten turns nested tables into dotted option names.
func flatten(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			name := k
			if prefix != "" {
				name = prefix + "." + k
			}
			if nested, ok := m[k].(map[string]any); ok {
				walk(name, nested)
				continue
			}
			out[name] = m[k]
		}
	}
	walk("", src)
	return out
}

// Package tokens loads design systems from YAML, JSON or TOML documents.
//
// Two layouts are accepted: namespaces at the top level
//
//	colors:
//	  primary: "#6366f1"
//
// or nested under a "tokens" key, with "name" and "rules" kept at the top level.
package tokens

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed default.json
var defaultDocument []byte

// Format identifies the encoding of a token document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the document format from the file extension. YAML is the default.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// Load reads and validates the design system stored at path.
func Load(path string) (*domain.DesignSystem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read design system: %w", err)
	}
	ds, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Default returns the design system bundled with the binary.
func Default() *domain.DesignSystem {
	ds, err := Parse(defaultDocument, FormatJSON)
	if err != nil {
		panic(fmt.Sprintf("tokens: bundled design system is invalid: %v", err))
	}
	return ds
}

// LoadOrDefault loads path, or returns the bundled design system when path is empty.
func LoadOrDefault(path string) (*domain.DesignSystem, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes a token document and validates its colors.
func Parse(data []byte, format Format) (*domain.DesignSystem, error) {
	raw := make(map[string]any)

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}

	ds, err := decode(flatten(normalize(raw).(map[string]any)))
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// flatten lifts the namespaces of a "tokens" wrapper to the top level.
func flatten(raw map[string]any) map[string]any {
	nested, ok := raw["tokens"].(map[string]any)
	if !ok {
		return raw
	}
	out := make(map[string]any, len(raw)+len(nested))
	for k, v := range raw {
		if k != "tokens" {
			out[k] = v
		}
	}
	for k, v := range nested {
		out[k] = v
	}
	return out
}

// normalize rewrites map[any]any nodes (yaml.v3 emits them for non-string
// keys such as numeric shades) into map[string]any.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			val[k] = normalize(child)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []any:
		for i, child := range val {
			val[i] = normalize(child)
		}
		return val
	}
	return v
}

func decode(raw map[string]any) (*domain.DesignSystem, error) {
	var ds domain.DesignSystem
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &ds,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDesignSystem, err)
	}
	return &ds, nil
}

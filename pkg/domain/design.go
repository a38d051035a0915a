package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// DesignSystem is the immutable set of named tokens generated code must use.
// Colors may be nested (e.g. colors.primary.hover); every leaf is a hex literal.
type DesignSystem struct {
	Name       string         `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Colors     map[string]any `json:"colors" yaml:"colors" mapstructure:"colors"`
	Typography map[string]any `json:"typography,omitempty" yaml:"typography,omitempty" mapstructure:"typography"`
	Radius     map[string]any `json:"radius,omitempty" yaml:"radius,omitempty" mapstructure:"radius"`
	Spacing    map[string]any `json:"spacing,omitempty" yaml:"spacing,omitempty" mapstructure:"spacing"`
	Effects    map[string]any `json:"effects,omitempty" yaml:"effects,omitempty" mapstructure:"effects"`
	Rules      []string       `json:"rules,omitempty" yaml:"rules,omitempty" mapstructure:"rules"`

	// Extra keeps namespaces the engine does not interpret. They are still
	// rendered into prompts.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty" mapstructure:",remain"`
}

// ColorToken is one flattened entry of the colors namespace.
type ColorToken struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

// FlattenColors returns every color leaf ordered by its dotted path.
func (d *DesignSystem) FlattenColors() []ColorToken {
	if d == nil {
		return nil
	}
	var out []ColorToken
	flattenColors("", d.Colors, &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func flattenColors(prefix string, node map[string]any, out *[]ColorToken) {
	for k, v := range node {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			*out = append(*out, ColorToken{Path: path, Value: val})
		case map[string]any:
			flattenColors(path, val, out)
		case map[any]any:
			converted := make(map[string]any, len(val))
			for ik, iv := range val {
				converted[fmt.Sprint(ik)] = iv
			}
			flattenColors(path, converted, out)
		}
	}
}

// AllowedColors returns the distinct color literals of the design system,
// in path order, keeping the spelling of their first occurrence.
func (d *DesignSystem) AllowedColors() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range d.FlattenColors() {
		key := strings.ToLower(tok.Value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tok.Value)
	}
	return out
}

// AllowedColorSet returns the allowed literals lower-cased for membership tests.
func (d *DesignSystem) AllowedColorSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, c := range d.AllowedColors() {
		set[strings.ToLower(c)] = struct{}{}
	}
	return set
}

// Validate checks that the colors namespace exists and holds only hex literals.
func (d *DesignSystem) Validate() error {
	if d == nil || len(d.Colors) == 0 {
		return fmt.Errorf("%w: colors namespace is empty", ErrInvalidDesignSystem)
	}
	return validateColorNode("colors", d.Colors)
}

func validateColorNode(prefix string, node map[string]any) error {
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := prefix + "." + k
		switch val := node[k].(type) {
		case string:
			if !hexColor.MatchString(val) {
				return fmt.Errorf("%w: %s: %q is not a hex color", ErrInvalidDesignSystem, path, val)
			}
		case map[string]any:
			if err := validateColorNode(path, val); err != nil {
				return err
			}
		case map[any]any:
			converted := make(map[string]any, len(val))
			for ik, iv := range val {
				converted[fmt.Sprint(ik)] = iv
			}
			if err := validateColorNode(path, converted); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s: unsupported value of type %T", ErrInvalidDesignSystem, path, val)
		}
	}
	return nil
}

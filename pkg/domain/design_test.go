package domain_test

import (
	"errors"
	"testing"

	"github.com/aretw0/architect/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDesignSystem() *domain.DesignSystem {
	return &domain.DesignSystem{
		Colors: map[string]any{
			"primary": "#6366f1",
			"surface": map[string]any{
				"base":  "#FFFFFF",
				"muted": "#f3f4f6",
			},
			"white": "#ffffff",
		},
	}
}

func TestDesignSystem_FlattenColors(t *testing.T) {
	ds := sampleDesignSystem()

	got := ds.FlattenColors()
	require.Len(t, got, 4)
	assert.Equal(t, domain.ColorToken{Path: "primary", Value: "#6366f1"}, got[0])
	assert.Equal(t, "surface.base", got[1].Path)
	assert.Equal(t, "surface.muted", got[2].Path)
	assert.Equal(t, "white", got[3].Path)
}

func TestDesignSystem_AllowedColors_DedupesCaseInsensitively(t *testing.T) {
	ds := sampleDesignSystem()

	assert.Equal(t, []string{"#6366f1", "#FFFFFF", "#f3f4f6"}, ds.AllowedColors())

	set := ds.AllowedColorSet()
	assert.Contains(t, set, "#ffffff")
	assert.Len(t, set, 3)
}

func TestDesignSystem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		colors  map[string]any
		wantErr bool
	}{
		{"valid long and short", map[string]any{"a": "#abc", "b": "#AABBCC"}, false},
		{"nested", map[string]any{"a": map[string]any{"b": "#123456"}}, false},
		{"empty", nil, true},
		{"not hex", map[string]any{"a": "red"}, true},
		{"wrong length", map[string]any{"a": "#12345"}, true},
		{"non string leaf", map[string]any{"a": 42}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&domain.DesignSystem{Colors: tt.colors}).Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrInvalidDesignSystem), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package validator_test

import (
	"strings"
	"testing"

	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func designSystem() *domain.DesignSystem {
	return &domain.DesignSystem{
		Colors: map[string]any{
			"primary":    "#6366f1",
			"background": "#0f172a",
			"text":       map[string]any{"base": "#F8FAFC"},
		},
	}
}

const validComponent = `import { Component } from '@angular/core';

@Component({
  selector: 'app-login-card',
  standalone: true,
  template: ` + "`" + `
    <div class="p-8 bg-[#0f172a]">
      <h2 class="text-[#f8fafc]">Login</h2>
      <input type="email" />
      <img src="logo.svg">
      <button class="bg-[#6366F1]">Sign In</button>
    </div>
  ` + "`" + `
})
export class LoginCardComponent {}`

func kinds(res domain.ValidationResult) []domain.ErrorKind {
	out := make([]domain.ErrorKind, len(res.Errors))
	for i, e := range res.Errors {
		out[i] = e.Kind
	}
	return out
}

func TestValidate_CompliantArtifact(t *testing.T) {
	res := validator.Validate(validComponent, designSystem())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidate_BracketImbalance(t *testing.T) {
	code := strings.TrimSuffix(validComponent, "}")
	res := validator.Validate(code, designSystem())

	require.False(t, res.Valid)
	assert.Equal(t, []domain.ErrorKind{domain.KindSyntaxImbalance}, kinds(res))
	assert.Contains(t, res.Errors[0].Detail, "curly braces")
	assert.Contains(t, res.Errors[0].Detail, "3 opening vs 2 closing")
}

func TestValidate_MissingMarkers(t *testing.T) {
	code := strings.Replace(validComponent, "  standalone: true,\n", "", 1)
	res := validator.Validate(code, designSystem())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, domain.KindMissingMarker, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Detail, "standalone: true")

	res = validator.Validate("export class X {}", designSystem())
	assert.Equal(t, []domain.ErrorKind{domain.KindMissingMarker, domain.KindMissingMarker}, kinds(res))
	assert.Contains(t, res.Errors[0].Detail, "@Component")
}

func TestValidate_ColorViolations(t *testing.T) {
	code := strings.Replace(validComponent, `class="p-8 bg-[#0f172a]"`,
		`class="p-8" style="color: #FF0000; border-color: #ff0000; background: #abc; outline: #6366f1"`, 1)
	res := validator.Validate(code, designSystem())

	require.Equal(t, []domain.ErrorKind{domain.KindUnauthorizedToken, domain.KindUnauthorizedToken}, kinds(res))
	assert.Contains(t, res.Errors[0].Detail, "'#FF0000'")
	assert.Contains(t, res.Errors[0].Detail, "#0f172a, #6366f1, #F8FAFC")
	assert.Contains(t, res.Errors[1].Detail, "'#abc'")
}

func TestValidate_ColorViolationCountMatchesDistinctLiterals(t *testing.T) {
	ds := designSystem()
	allowed := ds.AllowedColorSet()

	artifacts := []string{
		"",
		"#123 #123 #456",
		"#abcdef #ABCDEF #6366f1 #0F172A #fff",
		"color: #12345678",
		"#zzz #1a2b3c",
	}
	for _, a := range artifacts {
		distinct := map[string]struct{}{}
		for _, lit := range regexpHex(a) {
			if _, ok := allowed[strings.ToLower(lit)]; !ok {
				distinct[strings.ToLower(lit)] = struct{}{}
			}
		}
		v := validator.New(ds, validator.WithMarkers(), validator.WithPairs(), validator.WithStructuralTags())
		res := v.Validate(a)
		assert.Len(t, res.Errors, len(distinct), "artifact %q", a)
	}
}

func TestValidate_ColorCap(t *testing.T) {
	v := validator.New(designSystem(), validator.WithMaxColorViolations(1), validator.WithMarkers())
	res := v.Validate("#111 #222 #333")
	assert.Len(t, res.Errors, 1)
}

func TestValidate_UnclosedStructure(t *testing.T) {
	code := strings.Replace(validComponent, "    </div>\n", "", 1)
	code = strings.Replace(code, "<h2 class", "<section><h2 class", 1)
	res := validator.Validate(code, designSystem())

	require.Equal(t, []domain.ErrorKind{domain.KindUnclosedStructure}, kinds(res))
	assert.Contains(t, res.Errors[0].Detail, "<div> (1 unclosed)")
	assert.Contains(t, res.Errors[0].Detail, "<section> (1 unclosed)")
}

func TestValidate_UnclosedStructure_CustomElements(t *testing.T) {
	code := strings.Replace(validComponent,
		"<button class",
		`<p-button label="Go"></p-button><a-link></a-link><button class`, 1)
	res := validator.Validate(code, designSystem())
	assert.True(t, res.Valid, "%v", res.Details())

	code = strings.Replace(code, "</a-link>", "", 1)
	code = strings.Replace(code, "<h2 class", "<p-panel><a><h2 class", 1)
	res = validator.Validate(code, designSystem())
	require.Equal(t, []domain.ErrorKind{domain.KindUnclosedStructure}, kinds(res))
	assert.Contains(t, res.Errors[0].Detail, "<a> (1 unclosed)")
	assert.NotContains(t, res.Errors[0].Detail, "<p>")
}

func TestValidate_ErrorOrder(t *testing.T) {
	code := `<div style="color: #f00">{`
	res := validator.Validate(code, designSystem())
	assert.Equal(t, []domain.ErrorKind{
		domain.KindSyntaxImbalance,
		domain.KindMissingMarker,
		domain.KindMissingMarker,
		domain.KindUnauthorizedToken,
		domain.KindUnclosedStructure,
	}, kinds(res))
}

func TestValidate_Deterministic(t *testing.T) {
	code := `<div><span style="color:#123">(` + "\n"
	v := validator.New(designSystem())
	first := v.Validate(code)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, v.Validate(code))
	}
}

func TestValidate_DisabledChecks(t *testing.T) {
	v := validator.New(designSystem(),
		validator.WithPairs(),
		validator.WithMarkers(),
		validator.WithoutColorCheck(),
		validator.WithStructuralTags(),
	)
	res := v.Validate("{{{ <div> #123456")
	assert.True(t, res.Valid)
}

package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/architect/pkg/domain"
)

var hexLiteral = regexp.MustCompile(`#[0-9a-fA-F]{6}|#[0-9a-fA-F]{3}`)

// Validator lints artifacts against one design system. It is immutable and
// safe for concurrent use.
type Validator struct {
	cfg         Config
	allowed     map[string]struct{}
	allowedList string
	tags        []string
	openingTag  *regexp.Regexp
	closingTag  *regexp.Regexp
}

// New builds a Validator for ds.
func New(ds *domain.DesignSystem, opts ...Option) *Validator {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	v := &Validator{
		cfg:         cfg,
		allowed:     ds.AllowedColorSet(),
		allowedList: strings.Join(ds.AllowedColors(), ", "),
	}

	void := make(map[string]struct{}, len(cfg.VoidTags))
	for _, t := range cfg.VoidTags {
		void[strings.ToLower(t)] = struct{}{}
	}
	for _, t := range cfg.StructuralTags {
		t = strings.ToLower(t)
		if _, skip := void[t]; skip {
			continue
		}
		v.tags = append(v.tags, t)
	}

	if len(v.tags) > 0 {
		alts := make([]string, len(v.tags))
		for i, t := range v.tags {
			alts[i] = regexp.QuoteMeta(t)
		}
		group := strings.Join(alts, "|")
		// The name must end at whitespace, "/" or ">" so custom elements
		// such as <p-button> are not read as <p>.
		v.openingTag = regexp.MustCompile(`(?i)<(` + group + `)((?:[\s/][^>]*)?)>`)
		v.closingTag = regexp.MustCompile(`(?i)</(` + group + `)\s*>`)
	}
	return v
}

// Validate lints artifact against ds with the default rules.
func Validate(artifact string, ds *domain.DesignSystem) domain.ValidationResult {
	return New(ds).Validate(artifact)
}

// Validate runs every enabled check and returns the accumulated findings.
func (v *Validator) Validate(artifact string) domain.ValidationResult {
	var errs []domain.ValidationError
	errs = append(errs, v.checkBalance(artifact)...)
	errs = append(errs, v.checkMarkers(artifact)...)
	errs = append(errs, v.checkColors(artifact)...)
	errs = append(errs, v.checkClosure(artifact)...)
	return domain.NewValidationResult(errs)
}

func (v *Validator) checkBalance(artifact string) []domain.ValidationError {
	var errs []domain.ValidationError
	for _, p := range v.cfg.Pairs {
		opens := strings.Count(artifact, string(p.Open))
		closes := strings.Count(artifact, string(p.Close))
		if opens == closes {
			continue
		}
		errs = append(errs, domain.ValidationError{
			Kind:   domain.KindSyntaxImbalance,
			Detail: fmt.Sprintf("Unbalanced %s in the generated code: %d opening vs %d closing.", p.Name, opens, closes),
		})
	}
	return errs
}

func (v *Validator) checkMarkers(artifact string) []domain.ValidationError {
	var errs []domain.ValidationError
	for _, m := range v.cfg.Markers {
		if strings.Contains(artifact, m.Substring) {
			continue
		}
		msg := m.Message
		if msg == "" {
			msg = fmt.Sprintf("Missing required marker %q.", m.Substring)
		}
		errs = append(errs, domain.ValidationError{Kind: domain.KindMissingMarker, Detail: msg})
	}
	return errs
}

func (v *Validator) checkColors(artifact string) []domain.ValidationError {
	if !v.cfg.CheckColors {
		return nil
	}
	var errs []domain.ValidationError
	reported := make(map[string]struct{})
	for _, lit := range hexLiteral.FindAllString(artifact, -1) {
		key := strings.ToLower(lit)
		if _, ok := v.allowed[key]; ok {
			continue
		}
		if _, dup := reported[key]; dup {
			continue
		}
		reported[key] = struct{}{}

		detail := fmt.Sprintf("Hardcoded color '%s' found.", lit)
		if v.cfg.ListAllowed {
			detail += fmt.Sprintf(" Please use tokens from the design system: %s", v.allowedList)
		}
		errs = append(errs, domain.ValidationError{Kind: domain.KindUnauthorizedToken, Detail: detail})

		if v.cfg.MaxColorViolations > 0 && len(errs) >= v.cfg.MaxColorViolations {
			break
		}
	}
	return errs
}

func (v *Validator) checkClosure(artifact string) []domain.ValidationError {
	if v.openingTag == nil {
		return nil
	}
	net := make(map[string]int, len(v.tags))
	for _, m := range v.openingTag.FindAllStringSubmatch(artifact, -1) {
		if strings.HasSuffix(strings.TrimSpace(m[2]), "/") {
			continue
		}
		net[strings.ToLower(m[1])]++
	}
	for _, m := range v.closingTag.FindAllStringSubmatch(artifact, -1) {
		net[strings.ToLower(m[1])]--
	}

	var unclosed []string
	for _, t := range v.tags {
		if n := net[t]; n > 0 {
			unclosed = append(unclosed, fmt.Sprintf("<%s> (%d unclosed)", t, n))
		}
	}
	if len(unclosed) == 0 {
		return nil
	}
	return []domain.ValidationError{{
		Kind:   domain.KindUnclosedStructure,
		Detail: fmt.Sprintf("Unclosed markup tags in the template: %s.", strings.Join(unclosed, ", ")),
	}}
}

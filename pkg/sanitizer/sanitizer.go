// Package sanitizer rejects or neutralises user requests before they reach a prompt.
package sanitizer

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/architect/pkg/domain"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "ARCHITECT_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = fmt.Errorf("%w: input exceeds maximum allowed size", domain.ErrInputRejected)
	ErrInvalidUTF8   = fmt.Errorf("%w: input contains invalid UTF-8 sequences", domain.ErrInputRejected)
	ErrEmptyInput    = fmt.Errorf("%w: input is empty", domain.ErrInputRejected)
)

// Placeholder replaces reserved framing tags found in user text.
const Placeholder = "[filtered]"

// Pattern is a named manipulation phrase.
type Pattern struct {
	Name string
	Expr *regexp.Regexp
}

// DefaultPatterns is the ordered list of rejected phrases.
var DefaultPatterns = []Pattern{
	{"ignore previous instructions", regexp.MustCompile(`(?i)ignore\s+(?:all\s+|any\s+)?(?:the\s+)?previous\s+instructions`)},
	{"disregard instructions", regexp.MustCompile(`(?i)disregard\s+(?:all\s+|any\s+)?(?:the\s+)?(?:previous|prior|above)\s+(?:instructions|rules)`)},
	{"bypass governance", regexp.MustCompile(`(?i)bypass\s+(?:the\s+)?governance`)},
	{"role override", regexp.MustCompile(`(?i)you\s+are\s+now\s+(?:a|an)\b`)},
	{"forget rules", regexp.MustCompile(`(?i)forget\s+(?:all\s+)?(?:your|previous|the)\s+(?:rules|instructions)`)},
	{"reveal system prompt", regexp.MustCompile(`(?i)(?:reveal|print|show)\s+(?:me\s+)?(?:the\s+|your\s+)?system\s+prompt`)},
	{"override design system", regexp.MustCompile(`(?i)(?:override|ignore)\s+(?:the\s+)?design\s+system`)},
}

var reservedTags = regexp.MustCompile(`(?i)</?\s*user_request\s*>|</?\s*system\s*>|\[/?INST\]|<</?SYS>>`)

// InjectionError reports the pattern a request matched.
type InjectionError struct {
	Pattern string
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("%v: request matches %q", domain.ErrInjectionDetected, e.Pattern)
}

func (e *InjectionError) Unwrap() error {
	return domain.ErrInjectionDetected
}

// Sanitizer applies the input policy, the injection screen and tag neutralisation.
type Sanitizer struct {
	maxSize  int
	patterns []Pattern
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithMaxInputSize overrides the size limit. Non-positive values are ignored.
func WithMaxInputSize(n int) Option {
	return func(s *Sanitizer) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithPatterns replaces the injection patterns.
func WithPatterns(patterns ...Pattern) Option {
	return func(s *Sanitizer) {
		s.patterns = patterns
	}
}

// New creates a Sanitizer. The size limit defaults to EnvMaxInputSize or DefaultMaxInputSize.
func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{
		maxSize:  getMaxInputSize(),
		patterns: DefaultPatterns,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sanitize runs the request through every stage with default settings.
func Sanitize(input string) (string, error) {
	return New().Sanitize(input)
}

// Sanitize returns the cleaned request, or an error wrapping
// domain.ErrInputRejected or domain.ErrInjectionDetected.
func (s *Sanitizer) Sanitize(input string) (string, error) {
	cleaned, err := s.enforcePolicy(input)
	if err != nil {
		return "", err
	}

	for _, p := range s.patterns {
		if p.Expr.MatchString(cleaned) {
			return "", &InjectionError{Pattern: p.Name}
		}
	}

	cleaned = reservedTags.ReplaceAllString(cleaned, Placeholder)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", ErrEmptyInput
	}
	return cleaned, nil
}

// IsInjection reports whether err came from the injection screen.
func IsInjection(err error) bool {
	var ie *InjectionError
	return errors.As(err, &ie)
}

func (s *Sanitizer) enforcePolicy(input string) (string, error) {
	// 1. Enforce Size Limit
	if len(input) > s.maxSize {
		// Rejected rather than truncated so a request is never half-processed.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), s.maxSize)
	}

	// 2. Validate UTF-8
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// 3. Strip Control Characters, keeping \n, \t and \r.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func getMaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}

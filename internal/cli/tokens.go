package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/architect"
	"github.com/aretw0/architect/pkg/cleaner"
	"github.com/aretw0/architect/pkg/domain"
	"gopkg.in/yaml.v3"
)

// PrintDesignSystem writes ds in the requested format ("json" or "yaml").
func PrintDesignSystem(ds *domain.DesignSystem, format string, w io.Writer) error {
	switch format {
	case "", "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(ds)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ds)
	default:
		return fmt.Errorf("unknown format %q (use yaml or json)", format)
	}
}

// ValidateFile lints the code in path. Fenced model replies are cleaned first.
func ValidateFile(eng *architect.Engine, path string, w io.Writer) (domain.ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	code := string(data)
	if strings.Contains(code, "```") {
		code = cleaner.Clean(code)
	}
	res := eng.Validate(code)
	if res.Valid {
		fmt.Fprintln(w, "Component is valid! ✅")
		return res, nil
	}
	fmt.Fprintf(w, "%d validation errors:\n", len(res.Errors))
	for _, d := range res.Details() {
		fmt.Fprintln(w, "- "+d)
	}
	return res, ErrNotValid
}

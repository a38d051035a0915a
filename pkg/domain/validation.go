package domain

// ErrorKind classifies a validation finding.
type ErrorKind string

const (
	KindSyntaxImbalance   ErrorKind = "syntax_imbalance"
	KindMissingMarker     ErrorKind = "missing_marker"
	KindUnauthorizedToken ErrorKind = "unauthorized_token"
	KindUnclosedStructure ErrorKind = "unclosed_structure"
)

// ValidationError is a single linter finding. Detail is fed verbatim into
// repair prompts, so it must be self-explanatory.
type ValidationError struct {
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"detail"`
}

func (e ValidationError) String() string {
	return e.Detail
}

// ValidationResult is the ordered outcome of one validation pass.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors"`
}

// NewValidationResult builds a result whose Valid flag agrees with its errors.
func NewValidationResult(errs []ValidationError) ValidationResult {
	if errs == nil {
		errs = []ValidationError{}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// Details returns the error messages in order.
func (r ValidationResult) Details() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Detail
	}
	return out
}

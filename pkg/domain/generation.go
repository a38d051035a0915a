package domain

import "time"

// Mode selects the prompt shape used for an attempt.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeRepair   Mode = "repair"
)

// Outcome is the terminal state of a generation run.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeExhausted Outcome = "exhausted"
	OutcomeFailure   Outcome = "failure"
)

// GenerateRequest is the inbound request of a single generation.
type GenerateRequest struct {
	Prompt    string `json:"prompt"`
	PriorCode string `json:"prior_code,omitempty"`
}

// GenerationAttempt records one generate → validate iteration.
type GenerationAttempt struct {
	Iteration int               `json:"iteration"`
	Mode      Mode              `json:"mode"`
	Model     string            `json:"model,omitempty"`
	Code      string            `json:"code"`
	Errors    []ValidationError `json:"errors,omitempty"`
	Elapsed   time.Duration     `json:"elapsed"`
}

// GenerationResult is returned to the caller of a generation run.
//
// On failure Code carries the diagnostic message, matching the wire contract
// {code, iterations, logs, success}.
type GenerationResult struct {
	Code       string              `json:"code"`
	Iterations int                 `json:"iterations"`
	Logs       []string            `json:"logs"`
	Success    bool                `json:"success"`
	ModelUsed  string              `json:"model_used,omitempty"`
	Outcome    Outcome             `json:"outcome"`
	Diagnostic string              `json:"diagnostic,omitempty"`
	Attempts   []GenerationAttempt `json:"attempts,omitempty"`

	// Err is the fatal error behind an OutcomeFailure.
	Err error `json:"-"`
}

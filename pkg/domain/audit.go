package domain

import "time"

// AuditEntry is the record kept for every finished generation.
type AuditEntry struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Prompt     string    `json:"prompt"`
	Outcome    Outcome   `json:"outcome"`
	Success    bool      `json:"success"`
	Model      string    `json:"model,omitempty"`
	Iterations int       `json:"iterations"`
}

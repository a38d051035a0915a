package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/architect/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultAuditLimit bounds the audit list length.
const DefaultAuditLimit = 10000

// AuditLog implements ports.AuditRecorder as a capped Redis list.
type AuditLog struct {
	client *backend.Client
	key    string
	limit  int64
}

// NewAuditLog creates a recorder writing to prefix+"audit". limit <= 0 uses DefaultAuditLimit.
func NewAuditLog(client *backend.Client, prefix string, limit int) *AuditLog {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	return &AuditLog{client: client, key: prefix + "audit", limit: int64(limit)}
}

// Record appends entry and drops the oldest entries beyond the limit.
func (a *AuditLog) Record(ctx context.Context, entry domain.AuditEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	pipe := a.client.Pipeline()
	pipe.RPush(ctx, a.key, data)
	pipe.LTrim(ctx, a.key, -a.limit, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// Recent returns up to n of the newest entries, oldest first.
func (a *AuditLog) Recent(ctx context.Context, n int) ([]domain.AuditEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := a.client.LRange(ctx, a.key, int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	entries := make([]domain.AuditEntry, 0, len(raw))
	for _, r := range raw {
		var e domain.AuditEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

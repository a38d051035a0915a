package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/architect/pkg/ports"
)

// ListSessions prints the stored session ids.
func ListSessions(ctx context.Context, store ports.HistoryStore, w io.Writer) error {
	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}
	fmt.Fprintln(w, "Active Sessions:")
	for _, id := range ids {
		fmt.Fprintln(w, "- "+id)
	}
	return nil
}

// InspectSession prints one conversation as indented JSON.
func InspectSession(ctx context.Context, store ports.HistoryStore, id string, w io.Writer) error {
	conv, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load session '%s': %w", id, err)
	}
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveSessions deletes every id, reporting each one. The first error is returned
// after all ids were tried.
func RemoveSessions(ctx context.Context, store ports.HistoryStore, ids []string, w io.Writer) error {
	var first error
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			if first == nil {
				first = err
			}
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return first
}

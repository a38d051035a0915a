package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/architect"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoCompleter_RepairsOnSecondAttempt(t *testing.T) {
	eng, err := architect.New(architect.WithCompleter(DemoCompleter(0)))
	require.NoError(t, err)

	res := eng.Generate(context.Background(), domain.GenerateRequest{Prompt: "a login card"})

	assert.True(t, res.Success)
	assert.Equal(t, domain.OutcomeSuccess, res.Outcome)
	assert.Equal(t, 2, res.Iterations)
	assert.Contains(t, res.Code, "Welcome Back")
	require.Len(t, res.Attempts, 2)
	var details []string
	for _, e := range res.Attempts[0].Errors {
		details = append(details, e.Detail)
	}
	assert.Contains(t, strings.Join(details, "\n"), "#ff0000")
	assert.Empty(t, res.Attempts[1].Errors)
}

func TestDemoCompleter_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DemoCompleter(time.Hour).Complete(ctx, ports.CompletionRequest{User: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

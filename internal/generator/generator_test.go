package generator

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlcprobe/internal/httpapi"
	"mlcprobe/pkg/types"
)

func newTestGenerator() *Generator {
	g := New(zerolog.Nop())
	g.now = func() time.Time { return time.Unix(1700000000, 0) }
	g.newID = func() string { return "cmpl-test" }
	return g
}

func ptr(v float64) *float64 { return &v }

func TestComplete_Deterministic(t *testing.T) {
	g := newTestGenerator()
	req := types.CompletionRequest{Model: "m", Prompt: "What is the capital of France?", TopP: ptr(0.9), Seed: 7}
	a, err := g.Complete(context.Background(), req)
	require.NoError(t, err)
	b, err := g.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	require.Len(t, a.Choices, 1)
	assert.NotEmpty(t, a.Choices[0].Text)
	assert.Equal(t, "text_completion", a.Object)
	assert.Equal(t, int64(1700000000), a.Created)
}

func TestComplete_UsageAndLimits(t *testing.T) {
	g := newTestGenerator()
	resp, err := g.Complete(context.Background(), types.CompletionRequest{Prompt: "one two three", MaxTokens: 4})
	require.NoError(t, err)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 3, resp.Usage.PromptTokens)
	assert.LessOrEqual(t, resp.Usage.CompletionTokens, 4)
	assert.Equal(t, resp.Usage.PromptTokens+resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
	assert.Equal(t, DefaultModel, resp.Model)

	switch resp.Choices[0].FinishReason {
	case "stop":
		assert.True(t, strings.HasSuffix(resp.Choices[0].Text, stopToken))
	case "length":
		assert.Equal(t, 4, resp.Usage.CompletionTokens)
	default:
		t.Fatalf("unexpected finish reason %q", resp.Choices[0].FinishReason)
	}

	resp, err = g.Complete(context.Background(), types.CompletionRequest{Prompt: "x", MaxTokens: 10_000})
	require.NoError(t, err)
	assert.LessOrEqual(t, resp.Usage.CompletionTokens, MaxTokensLimit)
}

func TestComplete_RejectsBadSampling(t *testing.T) {
	g := newTestGenerator()
	for _, req := range []types.CompletionRequest{
		{Prompt: "p", TopP: ptr(1.5)},
		{Prompt: "p", TopP: ptr(-0.1)},
		{Prompt: "p", Temperature: ptr(-1)},
	} {
		_, err := g.Complete(context.Background(), req)
		require.Error(t, err)
		var he httpapi.HTTPError
		require.True(t, errors.As(err, &he), "want HTTPError, got %T", err)
		assert.Equal(t, http.StatusBadRequest, he.StatusCode())
	}
}

func TestComplete_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestGenerator().Complete(ctx, types.CompletionRequest{Prompt: "p"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRender(t *testing.T) {
	assert.Equal(t, "Paris is the capital.", render([]string{"Paris", "is", "the", "capital", "."}))
	assert.Equal(t, "", render(nil))
}

func TestComplete_GreedyIgnoresSeed(t *testing.T) {
	g := newTestGenerator()
	var texts []string
	for seed := int64(1); seed <= 5; seed++ {
		resp, err := g.Complete(context.Background(), types.CompletionRequest{
			Prompt: "What is the capital of France?", Temperature: ptr(0), Seed: seed,
		})
		require.NoError(t, err)
		texts = append(texts, resp.Choices[0].Text)
	}
	for _, text := range texts[1:] {
		assert.Equal(t, texts[0], text)
	}

	resp, err := g.Complete(context.Background(), types.CompletionRequest{
		Prompt: "What is the capital of France?", TopP: ptr(0), Seed: 99,
	})
	require.NoError(t, err)
	assert.Equal(t, texts[0], resp.Choices[0].Text)
}

func TestComplete_SamplingDependsOnSeed(t *testing.T) {
	g := newTestGenerator()
	seen := map[string]bool{}
	for seed := int64(1); seed <= 8; seed++ {
		resp, err := g.Complete(context.Background(), types.CompletionRequest{Prompt: "p", MaxTokens: 8, Seed: seed})
		require.NoError(t, err)
		seen[resp.Choices[0].Text] = true
	}
	assert.Greater(t, len(seen), 1)
}

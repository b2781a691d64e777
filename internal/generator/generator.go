// Package generator produces deterministic completions from a small fixed
// vocabulary. It stands in for a model runtime behind the mock server.
package generator

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mlcprobe/internal/httpapi"
	"mlcprobe/internal/sampler"
	"mlcprobe/pkg/types"
)

const (
	DefaultMaxTokens = 16
	MaxTokensLimit   = 256
	DefaultModel     = "mock"
)

var defaultVocab = []string{
	"Paris", "is", "the", "capital", "of", "France", "and", "a", "city",
	"on", "Seine", "river", "with", "old", "bridges", "in", "Europe", ".",
}

// stopToken ends generation early with finish_reason "stop".
const stopToken = "."

// greedyTemperature is the threshold below which sampling becomes argmax.
const greedyTemperature = 1e-5

// Generator implements httpapi.Service.
type Generator struct {
	vocab []string
	now   func() time.Time
	newID func() string
	log   zerolog.Logger
}

// New returns a generator over the built-in vocabulary.
func New(log zerolog.Logger) *Generator {
	return &Generator{
		vocab: defaultVocab,
		now:   time.Now,
		newID: func() string { return "cmpl-" + uuid.NewString() },
		log:   log,
	}
}

// Ready always reports true; there is nothing to load.
func (g *Generator) Ready() bool { return true }

// Complete generates text for req. Identical requests with the same seed
// yield identical text; a zero seed is derived from the prompt.
func (g *Generator) Complete(ctx context.Context, req types.CompletionRequest) (types.CompletionResponse, error) {
	temperature, topP := 1.0, 1.0
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if req.TopP != nil {
		topP = *req.TopP
	}
	if topP < 0 || topP > 1 {
		return types.CompletionResponse{}, httpapi.BadRequest(fmt.Sprintf("top_p must be in [0, 1], got %v", topP))
	}
	if temperature < 0 {
		return types.CompletionResponse{}, httpapi.BadRequest(fmt.Sprintf("temperature must be >= 0, got %v", temperature))
	}
	// Near-zero temperature decodes greedily: top_p 0 makes the sampler
	// return the argmax, which softmax at temperature 1 preserves.
	if temperature < greedyTemperature {
		temperature, topP = 1, 0
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if maxTokens > MaxTokensLimit {
		maxTokens = MaxTokensLimit
	}

	seed := uint64(req.Seed)
	if seed == 0 {
		seed = hash64(req.Prompt)
	}
	rng := rand.New(rand.NewPCG(seed, hash64(req.Model)))

	var out []string
	finish := "length"
	prev := req.Prompt
	for len(out) < maxTokens {
		if err := ctx.Err(); err != nil {
			return types.CompletionResponse{}, err
		}
		probs := sampler.Softmax(g.logits(prev), temperature)
		_, id, err := sampler.SampleTopP(probs, topP, rng.Float64())
		if err != nil {
			return types.CompletionResponse{}, fmt.Errorf("sample token %d: %w", len(out), err)
		}
		tok := g.vocab[id]
		out = append(out, tok)
		if tok == stopToken {
			finish = "stop"
			break
		}
		prev = tok
	}

	model := req.Model
	if model == "" {
		model = DefaultModel
	}
	promptTokens := len(strings.Fields(req.Prompt))
	resp := types.CompletionResponse{
		ID:      g.newID(),
		Object:  "text_completion",
		Created: g.now().Unix(),
		Model:   model,
		Choices: []types.CompletionChoice{{Index: 0, Text: render(out), FinishReason: finish}},
		Usage: &types.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: len(out),
			TotalTokens:      promptTokens + len(out),
		},
	}
	g.log.Debug().Str("id", resp.ID).Int("tokens", len(out)).Str("finish", finish).Msg("generated")
	return resp, nil
}

// logits scores every vocabulary entry given the previous token. Scores are
// a pure function of (prev, candidate) in [-2, 2).
func (g *Generator) logits(prev string) []float32 {
	out := make([]float32, len(g.vocab))
	for i, w := range g.vocab {
		h := hash64(prev + "\x00" + w)
		out[i] = float32(h%4000)/1000 - 2
	}
	return out
}

func render(tokens []string) string {
	var sb strings.Builder
	for i, t := range tokens {
		if i > 0 && t != stopToken {
			sb.WriteByte(' ')
		}
		sb.WriteString(t)
	}
	return sb.String()
}

func hash64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

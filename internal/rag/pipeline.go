// Package rag implements the retrieval-augmented query pipeline: embed the
// question, search the knowledge-base index, assemble a grounding context,
// and synthesize a grounded answer.
package rag

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/avenhq/support-agent/internal/llm"
	"github.com/avenhq/support-agent/internal/vector"
)

const (
	// DefaultTopK is the retrieval depth. Fixed by configuration, not
	// tunable per request.
	DefaultTopK = 5

	// DefaultTemperature biases synthesis toward deterministic, grounded
	// phrasing.
	DefaultTemperature = 0.3

	// fallbackAnswer substitutes for an empty completion so Answer never
	// returns an empty string on success.
	fallbackAnswer = "No response generated."

	tracerName = "github.com/avenhq/support-agent/internal/rag"
)

// Config tunes a Pipeline.
type Config struct {
	TopK        int
	Temperature float64
}

// Pipeline composes the embedding, retrieval and synthesis capabilities into
// one Answer operation. Construct it once at process start and inject it into
// the dispatchers; it holds the only long-lived client handles in the system.
type Pipeline struct {
	provider    llm.Provider
	index       vector.Repository
	topK        int
	temperature float64
	tracer      trace.Tracer
}

// New creates a Pipeline over the given provider and index.
func New(provider llm.Provider, index vector.Repository, cfg Config) *Pipeline {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	return &Pipeline{
		provider:    provider,
		index:       index,
		topK:        cfg.TopK,
		temperature: cfg.Temperature,
		tracer:      otel.Tracer(tracerName),
	}
}

// Answer runs the four pipeline stages strictly in sequence. Each stage's
// failure aborts the rest and surfaces as a *StageError; there is no retry
// and no partial-result fallback. On success the answer is a non-empty,
// trimmed string.
func (p *Pipeline) Answer(ctx context.Context, question string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "rag.Answer",
		trace.WithAttributes(attribute.Int("rag.top_k", p.topK)))
	defer span.End()

	queryVector, err := p.embed(ctx, question)
	if err != nil {
		return "", &StageError{Stage: StageEmbed, Err: err}
	}

	matches, err := p.retrieve(ctx, queryVector)
	if err != nil {
		return "", &StageError{Stage: StageRetrieve, Err: err}
	}

	// Assembly is pure and cannot fail; an empty context flows through to
	// synthesis, where the system prompt turns it into a refusal.
	grounding := AssembleContext(matches)
	span.SetAttributes(
		attribute.Int("rag.matches", len(matches)),
		attribute.Int("rag.context_bytes", len(grounding)),
	)

	answer, err := p.synthesize(ctx, grounding, question)
	if err != nil {
		return "", &StageError{Stage: StageSynthesize, Err: err}
	}
	return answer, nil
}

// embed turns the question into a query vector via the embedding capability.
func (p *Pipeline) embed(ctx context.Context, question string) ([]float32, error) {
	ctx, span := p.tracer.Start(ctx, "rag.embed")
	defer span.End()

	vectors, err := p.provider.Embed(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}
	return vectors[0], nil
}

// retrieve runs the top-k similarity query. An empty result is not an error;
// it means no grounding is available.
func (p *Pipeline) retrieve(ctx context.Context, queryVector []float32) ([]vector.SearchResult, error) {
	ctx, span := p.tracer.Start(ctx, "rag.retrieve")
	defer span.End()

	return p.index.Search(ctx, queryVector, p.topK)
}

// synthesize asks the completion capability for a grounded answer.
func (p *Pipeline) synthesize(ctx context.Context, grounding, question string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "rag.synthesize")
	defer span.End()

	temperature := p.temperature
	resp, err := p.provider.Complete(ctx, &llm.Prompt{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMessage(grounding, question)},
		},
	}, &llm.RequestOptions{Temperature: &temperature})
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(llm.StripThinkingTags(resp.Content))
	if answer == "" {
		return fallbackAnswer, nil
	}
	return answer, nil
}

package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/avenhq/support-agent/internal/llm"
	"github.com/avenhq/support-agent/internal/vector"
)

type mockProvider struct {
	embedVectors [][]float32
	embedErr     error
	embedCalls   int
	embedInput   []string

	completeResp  *llm.Response
	completeErr   error
	completeCalls int
	lastPrompt    *llm.Prompt
	lastOpts      *llm.RequestOptions
}

func (m *mockProvider) Complete(_ context.Context, prompt *llm.Prompt, opts *llm.RequestOptions) (*llm.Response, error) {
	m.completeCalls++
	m.lastPrompt = prompt
	m.lastOpts = opts
	if m.completeErr != nil {
		return nil, m.completeErr
	}
	return m.completeResp, nil
}

func (m *mockProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.embedCalls++
	m.embedInput = texts
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedVectors, nil
}

func (m *mockProvider) Name() string { return "mock" }

type mockIndex struct {
	results    []vector.SearchResult
	err        error
	calls      int
	lastVector []float32
	lastTopK   int
}

func (m *mockIndex) Search(_ context.Context, vec []float32, topK int) ([]vector.SearchResult, error) {
	m.calls++
	m.lastVector = vec
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockIndex) Close() error { return nil }

func newTestPipeline(p *mockProvider, idx *mockIndex) *Pipeline {
	return New(p, idx, Config{})
}

func TestAnswer_Success(t *testing.T) {
	provider := &mockProvider{
		embedVectors: [][]float32{{0.1, 0.2}},
		completeResp: &llm.Response{Content: "  Aven cards have no annual fee.  "},
	}
	index := &mockIndex{results: []vector.SearchResult{
		{Metadata: map[string]string{"text": "Aven has no annual fee."}},
	}}

	answer, err := newTestPipeline(provider, index).Answer(context.Background(), "Is there an annual fee?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Aven cards have no annual fee." {
		t.Errorf("expected trimmed answer, got %q", answer)
	}

	if provider.embedCalls != 1 || len(provider.embedInput) != 1 || provider.embedInput[0] != "Is there an annual fee?" {
		t.Errorf("embed called with %v", provider.embedInput)
	}
	if index.lastTopK != DefaultTopK {
		t.Errorf("expected topK %d, got %d", DefaultTopK, index.lastTopK)
	}
	if provider.lastOpts == nil || provider.lastOpts.Temperature == nil || *provider.lastOpts.Temperature != DefaultTemperature {
		t.Error("expected default temperature on completion request")
	}
}

func TestAnswer_ContextReachesSynthesis(t *testing.T) {
	provider := &mockProvider{
		embedVectors: [][]float32{{1}},
		completeResp: &llm.Response{Content: "ok"},
	}
	index := &mockIndex{results: []vector.SearchResult{
		{Metadata: map[string]string{"text": "first passage"}},
		{Metadata: map[string]string{"text": "second passage"}},
	}}

	if _, err := newTestPipeline(provider, index).Answer(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.lastPrompt == nil || len(provider.lastPrompt.Messages) != 1 {
		t.Fatal("expected a single user message")
	}
	content := provider.lastPrompt.Messages[0].Content
	want := "Context:\nfirst passage\n\nsecond passage\n\nQuestion: q"
	if content != want {
		t.Errorf("expected user message %q, got %q", want, content)
	}
	if provider.lastPrompt.SystemPrompt == "" {
		t.Error("expected a system prompt")
	}
}

func TestAnswer_EmptyRetrievalForwardsEmptyContext(t *testing.T) {
	provider := &mockProvider{
		embedVectors: [][]float32{{1}},
		completeResp: &llm.Response{Content: "refusal"},
	}
	index := &mockIndex{results: nil}

	if _, err := newTestPipeline(provider, index).Answer(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No fallback context is injected; synthesis sees the empty context and
	// the system prompt handles the refusal.
	if !strings.HasPrefix(provider.lastPrompt.Messages[0].Content, "Context:\n\n\nQuestion:") {
		t.Errorf("expected empty context forwarded, got %q", provider.lastPrompt.Messages[0].Content)
	}
	if provider.completeCalls != 1 {
		t.Errorf("expected synthesis to run, got %d calls", provider.completeCalls)
	}
}

func TestAnswer_EmptyCompletionFallback(t *testing.T) {
	provider := &mockProvider{
		embedVectors: [][]float32{{1}},
		completeResp: &llm.Response{Content: "   "},
	}
	index := &mockIndex{}

	answer, err := newTestPipeline(provider, index).Answer(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "No response generated." {
		t.Errorf("expected fallback literal, got %q", answer)
	}
}

func TestAnswer_EmbedFailure(t *testing.T) {
	provider := &mockProvider{embedErr: errors.New("boom")}
	index := &mockIndex{}

	_, err := newTestPipeline(provider, index).Answer(context.Background(), "q")
	assertStage(t, err, StageEmbed)

	if index.calls != 0 {
		t.Error("retrieval must not run after embedding failure")
	}
	if provider.completeCalls != 0 {
		t.Error("synthesis must not run after embedding failure")
	}
}

func TestAnswer_RetrieveFailure(t *testing.T) {
	provider := &mockProvider{embedVectors: [][]float32{{1}}}
	index := &mockIndex{err: errors.New("index down")}

	_, err := newTestPipeline(provider, index).Answer(context.Background(), "q")
	assertStage(t, err, StageRetrieve)

	if provider.completeCalls != 0 {
		t.Error("synthesis must not run after retrieval failure")
	}
}

func TestAnswer_SynthesizeFailure(t *testing.T) {
	provider := &mockProvider{
		embedVectors: [][]float32{{1}},
		completeErr:  errors.New("model unavailable"),
	}
	index := &mockIndex{}

	_, err := newTestPipeline(provider, index).Answer(context.Background(), "q")
	assertStage(t, err, StageSynthesize)
}

func TestAnswer_EmptyEmbeddingResponse(t *testing.T) {
	provider := &mockProvider{embedVectors: [][]float32{}}
	index := &mockIndex{}

	_, err := newTestPipeline(provider, index).Answer(context.Background(), "q")
	assertStage(t, err, StageEmbed)
}

func assertStage(t *testing.T, err error, want Stage) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected *StageError, got %T: %v", err, err)
	}
	if stageErr.Stage != want {
		t.Errorf("expected stage %q, got %q", want, stageErr.Stage)
	}
}

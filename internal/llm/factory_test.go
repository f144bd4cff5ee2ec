package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type mockTestProvider struct {
	name string
}

func (m *mockTestProvider) Complete(context.Context, *Prompt, *RequestOptions) (*Response, error) {
	return &Response{Content: "ok"}, nil
}

func (m *mockTestProvider) Embed(context.Context, []string) ([][]float32, error) {
	return [][]float32{{0}}, nil
}

func (m *mockTestProvider) Name() string { return m.name }

func TestFactoryCreate_UnknownProvider(t *testing.T) {
	f := NewFactory()
	f.Register("openai", func(cfg ProviderConfig) (Provider, error) {
		return &mockTestProvider{name: "openai"}, nil
	})

	_, err := f.Create(ProviderConfig{Provider: "unknown"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "unknown") {
		t.Errorf("error should name the unknown provider: %v", err)
	}
}

func TestFactoryCreate_EmptyDefaultsToOpenAI(t *testing.T) {
	f := NewFactory()
	called := false
	f.Register("openai", func(cfg ProviderConfig) (Provider, error) {
		called = true
		return &mockTestProvider{name: "openai"}, nil
	})

	p, err := f.Create(ProviderConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil || !called {
		t.Fatal("expected openai constructor to run for empty provider name")
	}
}

func TestFactoryCreate_NoWrappersByDefault(t *testing.T) {
	f := NewFactory()
	inner := &mockTestProvider{name: "test"}
	f.Register("test", func(cfg ProviderConfig) (Provider, error) {
		return inner, nil
	})

	p, err := f.Create(ProviderConfig{Provider: "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The default configuration keeps the pipeline's no-retry contract: the
	// provider must come back unwrapped.
	if p != inner {
		t.Fatalf("expected bare provider, got %T", p)
	}
}

func TestFactoryCreate_RetryWrapperWhenConfigured(t *testing.T) {
	f := NewFactory()
	f.Register("test", func(cfg ProviderConfig) (Provider, error) {
		return &mockTestProvider{name: "test"}, nil
	})

	p, err := f.Create(ProviderConfig{Provider: "test", MaxRetries: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*RetryProvider); !ok {
		t.Fatalf("expected *RetryProvider, got %T", p)
	}
}

func TestFactoryCreate_RateLimitWrapperWhenConfigured(t *testing.T) {
	f := NewFactory()
	f.Register("test", func(cfg ProviderConfig) (Provider, error) {
		return &mockTestProvider{name: "test"}, nil
	})

	p, err := f.Create(ProviderConfig{Provider: "test", RequestsPerMinute: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*RateLimitProvider); !ok {
		t.Fatalf("expected *RateLimitProvider, got %T", p)
	}
}

func TestFactoryCreate_ConstructorError(t *testing.T) {
	f := NewFactory()
	wantErr := errors.New("constructor failed")
	f.Register("failing", func(cfg ProviderConfig) (Provider, error) {
		return nil, wantErr
	})

	_, err := f.Create(ProviderConfig{Provider: "failing"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected constructor error, got %v", err)
	}
}

package rag

import (
	"testing"

	"github.com/avenhq/support-agent/internal/vector"
)

func matchWithText(text string) vector.SearchResult {
	return vector.SearchResult{Metadata: map[string]string{"text": text}}
}

func TestAssembleContext_OrderPreserving(t *testing.T) {
	matches := []vector.SearchResult{
		matchWithText("x"),
		matchWithText("y"),
		matchWithText("z"),
	}

	got := AssembleContext(matches)
	want := "x\n\ny\n\nz"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestAssembleContext_FiltersEmptyText(t *testing.T) {
	matches := []vector.SearchResult{
		matchWithText(""),
		matchWithText("hello"),
	}

	got := AssembleContext(matches)
	if got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
}

func TestAssembleContext_FiltersMissingText(t *testing.T) {
	matches := []vector.SearchResult{
		{Metadata: map[string]string{"source": "faq.html"}},
		matchWithText("kept"),
		{Metadata: nil},
	}

	got := AssembleContext(matches)
	if got != "kept" {
		t.Errorf("expected %q, got %q", "kept", got)
	}
}

func TestAssembleContext_Empty(t *testing.T) {
	if got := AssembleContext(nil); got != "" {
		t.Errorf("nil matches: expected empty context, got %q", got)
	}
	if got := AssembleContext([]vector.SearchResult{}); got != "" {
		t.Errorf("empty matches: expected empty context, got %q", got)
	}
}

func TestAssembleContext_Idempotent(t *testing.T) {
	matches := []vector.SearchResult{
		matchWithText("a"),
		{Metadata: map[string]string{"text": ""}},
		matchWithText("b"),
	}

	first := AssembleContext(matches)
	second := AssembleContext(matches)
	if first != second {
		t.Errorf("assembly is not idempotent: %q vs %q", first, second)
	}
}

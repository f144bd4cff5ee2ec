package rag

import (
	"strings"

	"github.com/avenhq/support-agent/internal/vector"
)

// contextSeparator joins retrieved passages in the grounding context.
const contextSeparator = "\n\n"

// AssembleContext joins the "text" metadata of each match, in ranked order,
// into a single grounding context. Matches with a missing or empty text field
// are dropped; ingestion does not guarantee the field is present, and a blank
// entry would only add stray separators.
//
// Pure function: empty or fully-filtered input yields "", never an error.
// An empty context is forwarded to synthesis as-is; the system prompt makes
// the model refuse rather than fabricate.
func AssembleContext(matches []vector.SearchResult) string {
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		if t := m.Metadata["text"]; t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, contextSeparator)
}

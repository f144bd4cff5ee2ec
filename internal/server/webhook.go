package server

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Fixed tool-result literals. The voice transport speaks these verbatim, so
// they must stay stable across releases.
const (
	clarificationPrompt = "I didn't catch that. Could you please repeat your question?"
	voiceFallback       = "I'm having trouble looking that up right now. Please try again in a moment."
)

// KnowledgeBaseFunction is the only tool the voice assistant may invoke.
const KnowledgeBaseFunction = "queryAvenKnowledgeBase"

// eventType is the closed set of voice-session event types this webhook
// understands. Anything else is acknowledged without action; new event
// types roll out on the voice platform ahead of handler support, and a hard
// reject would break live calls.
type eventType string

const (
	eventStatusUpdate eventType = "status-update"
	eventTranscript   eventType = "transcript"
	eventFunctionCall eventType = "function-call"
)

type webhookRequest struct {
	Message *voiceEvent `json:"message"`
}

type voiceEvent struct {
	Type eventType `json:"type"`

	// status-update fields
	Call *callInfo `json:"call,omitempty"`

	// transcript fields
	Role       string `json:"role,omitempty"`
	Transcript string `json:"transcript,omitempty"`

	// function-call fields
	FunctionCall *functionCall `json:"functionCall,omitempty"`
}

type callInfo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type functionCall struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

type receivedResponse struct {
	Received bool `json:"received"`
}

type toolResultResponse struct {
	Result string `json:"result"`
}

// handleWebhook is the voice tool-call dispatcher. Lifecycle events are
// logged and acknowledged; only the knowledge-base function call reaches the
// pipeline. Tool results are always 200 since the voice transport treats any
// other status as a dead tool, so pipeline failures become a spoken fallback
// instead of an error status.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.metrics.IncRequest("webhook")

	if s.webhookSecret != "" {
		got := r.Header.Get("X-Vapi-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.webhookSecret)) != 1 {
			s.metrics.IncRejected()
			writeError(w, http.StatusUnauthorized, "Invalid webhook secret")
			return
		}
	}

	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == nil {
		s.metrics.IncRejected()
		writeError(w, http.StatusBadRequest, "Missing message payload")
		return
	}

	event := req.Message
	switch event.Type {
	case eventStatusUpdate:
		call := event.Call
		if call == nil {
			call = &callInfo{}
		}
		slog.Info("voice call status", "call_id", call.ID, "status", call.Status)
		writeJSON(w, http.StatusOK, receivedResponse{Received: true})

	case eventTranscript:
		slog.Info("voice transcript", "role", event.Role, "transcript", event.Transcript)
		writeJSON(w, http.StatusOK, receivedResponse{Received: true})

	case eventFunctionCall:
		s.handleFunctionCall(w, r, event.FunctionCall)

	default:
		// Unknown event type: soft accept. Contrast with unknown function
		// names below, which are hard client errors.
		slog.Debug("unhandled voice event", "type", string(event.Type))
		writeJSON(w, http.StatusOK, receivedResponse{Received: true})
	}
}

func (s *Server) handleFunctionCall(w http.ResponseWriter, r *http.Request, fc *functionCall) {
	if fc == nil {
		s.metrics.IncRejected()
		writeError(w, http.StatusBadRequest, "Missing functionCall in message")
		return
	}
	if fc.Name != KnowledgeBaseFunction {
		s.metrics.IncRejected()
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown function: %s", fc.Name))
		return
	}

	question := stringParam(fc.Parameters, "question")
	if question == "" {
		// Legacy assistants send the argument as "query".
		question = stringParam(fc.Parameters, "query")
	}
	if question == "" {
		writeJSON(w, http.StatusOK, toolResultResponse{Result: clarificationPrompt})
		return
	}

	done := s.metrics.RequestStarted()
	answer, err := s.answerer.Answer(r.Context(), question)
	done()
	if err != nil {
		s.recordFailure(err)
		slog.Error("rag query failed", "route", "webhook", "error", err)
		writeJSON(w, http.StatusOK, toolResultResponse{Result: voiceFallback})
		return
	}

	s.metrics.IncAnswer()
	writeJSON(w, http.StatusOK, toolResultResponse{Result: answer})
}

func stringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	v, _ := params[key].(string)
	return v
}

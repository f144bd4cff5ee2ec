package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// chatFallback is the only failure text a chat caller ever sees; upstream
// error detail stays in the logs.
const chatFallback = "Something went wrong. Please try again."

type askRequest struct {
	Message json.RawMessage `json:"message"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// handleAsk is the direct-chat dispatcher: validates {message: string},
// invokes the pipeline, and maps failure to a fixed apology with a 500.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.metrics.IncRequest("ask")

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.IncRejected()
		writeError(w, http.StatusBadRequest, "Missing or invalid 'message' in request body")
		return
	}

	// The field must be present, a JSON string, and non-empty; anything
	// else is a client error and never reaches the pipeline.
	var message string
	if req.Message == nil || json.Unmarshal(req.Message, &message) != nil || message == "" {
		s.metrics.IncRejected()
		writeError(w, http.StatusBadRequest, "Missing or invalid 'message' in request body")
		return
	}

	done := s.metrics.RequestStarted()
	answer, err := s.answerer.Answer(r.Context(), message)
	done()
	if err != nil {
		s.recordFailure(err)
		slog.Error("rag query failed", "route", "ask", "error", err)
		writeError(w, http.StatusInternalServerError, chatFallback)
		return
	}

	s.metrics.IncAnswer()
	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

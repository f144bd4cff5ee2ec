package server

import "net/http"

type voiceConfigResponse struct {
	PublicKey   string `json:"publicKey"`
	AssistantID string `json:"assistantId"`
}

// handleVoiceConfig serves the public voice-session credentials the browser
// widget needs to start a call. Only the public key is exposed; the webhook
// secret never leaves the server.
func (s *Server) handleVoiceConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, voiceConfigResponse{
		PublicKey:   s.voicePublicKey,
		AssistantID: s.voiceAssistantID,
	})
}

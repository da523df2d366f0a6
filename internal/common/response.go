package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
	// ArtifactURL is set when the artifact was committed but the sheet
	// write failed, so the client knows not to re-submit the code.
	ArtifactURL string `json:"artifact_url,omitempty"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithDomainError maps a domain error to its HTTP status. Partial
// writes carry the committed artifact URL in the body.
func RespondWithDomainError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var pw *PartialWriteError
	if errors.As(err, &pw) {
		resp.ArtifactURL = pw.ArtifactURL
	}
	RespondWithJSON(w, HTTPStatusFromError(err), resp)
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

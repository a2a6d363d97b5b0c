package routers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondDetail(w http.ResponseWriter, status int, detail, code string) {
	body := map[string]string{"detail": detail}
	if code != "" {
		body["code"] = code
	}
	respondJSON(w, status, body)
}

// internalError logs the cause and answers with a generic 500 so no detail reaches the client.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.Logger.Error(msg,
		zap.String("method", r.Method),
		zap.String("url", r.URL.Path),
		zap.Error(err),
	)
	respondError(w, http.StatusInternalServerError, internalErrorMessage)
}

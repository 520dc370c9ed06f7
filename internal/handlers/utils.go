package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/paperchat/paperchat/internal/adapter"
	"github.com/paperchat/paperchat/internal/config"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logFH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, message, httpCode))
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logFH.Warn("context error", "error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logFH.Warn("context cancelled")
		return false
	default:
		return true

	}
}

// callerID pulls the authenticated user out of the request context; the auth
// middleware guarantees it is set on every /api route.
func callerID(r *http.Request) string {
	userId, _ := r.Context().Value(config.UserIDKey).(string)
	return userId
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/paperchat/paperchat/internal/api"
	"github.com/paperchat/paperchat/internal/data/store"
	"github.com/paperchat/paperchat/internal/metrics"
)

// SendMessageHandler godoc
// @Summary      Ask a question about a document
// @Description  Streams the answer as chunked plain text, one flush per token. The question and the completed answer land in the chat history.
// @Tags         chat
// @Accept       json
// @Produce      plain
// @Param        request  body  api.SendMessageRequest  true  "Document id and question"
// @Success      200  {string}  string  "Streamed answer"
// @Failure      400  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/message [post]
func SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logMH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	var req api.SendMessageRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logMH.Error("Couldn't close the message reader", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileID == "" || req.Message == "" {
		logMH.Warn("Bad message request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, req.FileID, "fileId and message are required")
		return
	}

	stream, err := handlerInstance.chatSvc.Answer(r.Context(), req.FileID, callerID(r), req.Message)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteErrorResponse(w, http.StatusNotFound, req.FileID, "file not found")
			return
		}
		logMH.Error("Could not start answer", "docId", req.FileID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, req.FileID, "could not answer")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logMH.Error("Response writer does not support streaming")
		WriteErrorResponse(w, http.StatusInternalServerError, req.FileID, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	for token := range stream.Tokens() {
		if _, err := io.WriteString(w, token); err != nil {
			// client went away; drain so the producer can finish and decide
			// whether to persist
			logMH.Warn("Client disconnected mid-stream", "docId", req.FileID)
			for range stream.Tokens() {
			}
			return
		}
		flusher.Flush()
		metrics.CountTokenStreamed()
	}

	if err := stream.Err(); err != nil {
		// headers are long gone, all we can do is note the truncation
		logMH.Error("Answer stream ended with error", "docId", req.FileID, "error", err)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/paperchat/paperchat/internal/adapter"
	"github.com/paperchat/paperchat/internal/adapter/utils"
	"github.com/paperchat/paperchat/internal/api"
	"github.com/paperchat/paperchat/internal/config"
	"github.com/paperchat/paperchat/internal/data/store"
	"github.com/paperchat/paperchat/internal/domain/docModel"
	"github.com/paperchat/paperchat/internal/job"
)

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// RegisterFileHandler godoc
// @Summary      Register an uploaded file
// @Description  Called after the raw bytes landed in object storage; creates the document and queues ingestion.
// @Tags         files
// @Accept       json
// @Produce      json
// @Param        request  body      api.RegisterFileRequest  true  "Uploaded file location and owner plan"
// @Success      202      {object}  api.FileResponse         "Queued for ingestion"
// @Failure      400      {object}  api.ErrorResponse
// @Failure      503      {object}  api.ErrorResponse        "Ingestion queue full"
// @Router       /api/files [post]
func RegisterFileHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logFH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	var req api.RegisterFileRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logFH.Error("Couldn't close the register reader", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || (req.Key == "" && req.URL == "") {
		logFH.Warn("Bad register request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "name and one of key/url are required")
		return
	}

	now := time.Now()
	doc := docModel.Document{
		Id:        utils.GetNewUUID(),
		UserId:    callerID(r),
		Name:      req.Name,
		Key:       req.Key,
		URL:       req.URL,
		Status:    docModel.StatusPendingUpload,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// the broker only calls once the bytes are stored, so the document goes
	// straight to PROCESSING
	next, err := doc.Status.Transition(docModel.StatusProcessing)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, doc.Id, "invalid document state")
		return
	}
	doc.Status = next

	if err := handlerInstance.docs.Create(r.Context(), doc); err != nil {
		logFH.Error("Could not create document", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, doc.Id, "storage error")
		return
	}

	traceId, _ := r.Context().Value(config.TraceIDKey).(string)
	queued := handlerInstance.ingest.Enqueue(job.IngestJob{
		Doc:     doc,
		Plan:    docModel.ParsePlan(req.Plan),
		TraceId: traceId,
	})
	if !queued {
		logFH.Warn("Ingestion queue full", "docId", doc.Id)
		WriteErrorResponse(w, http.StatusServiceUnavailable, doc.Id, "ingestion queue full, retry later")
		return
	}

	logFH.Info("Document registered", "docId", doc.Id)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToFileResponse(doc))
}

// ListFilesHandler godoc
// @Summary      List the caller's documents
// @Tags         files
// @Produce      json
// @Success      200  {object}  api.FileListResponse
// @Router       /api/files [get]
func ListFilesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	docs, err := handlerInstance.docs.ListByUser(r.Context(), callerID(r))
	if err != nil {
		logFH.Error("Could not list documents", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToFileListResponse(docs))
}

// GetFileHandler godoc
// @Summary      Fetch one document
// @Tags         files
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.FileResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/files/{id} [get]
func GetFileHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")
	doc, err := handlerInstance.docs.GetByID(r.Context(), id, callerID(r))
	if err != nil {
		writeStoreError(w, id, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToFileResponse(doc))
}

// DeleteFileHandler godoc
// @Summary      Delete a document
// @Description  Removes the document row, its chat history and its vectors.
// @Tags         files
// @Param        id   path  string  true  "Document ID"
// @Success      204  "Deleted"
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/files/{id} [delete]
func DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")
	if err := handlerInstance.docs.Delete(r.Context(), id, callerID(r)); err != nil {
		writeStoreError(w, id, err)
		return
	}

	// cleanup is best effort, orphaned rows or vectors are harmless
	if err := handlerInstance.msgs.DeleteByDocument(r.Context(), id); err != nil {
		logFH.Error("Could not delete chat history", "docId", id, "error", err)
	}
	if err := handlerInstance.index.DeleteNamespace(r.Context(), id); err != nil {
		logFH.Error("Could not delete vectors", "docId", id, "error", err)
	}

	logFH.Info("Document deleted", "docId", id)
	w.WriteHeader(http.StatusNoContent)
}

// GetStatusHandler godoc
// @Summary      Poll ingestion status
// @Tags         files
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.StatusResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/files/{id}/status [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")
	status, err := handlerInstance.docs.GetStatus(r.Context(), id, callerID(r))
	if err != nil {
		writeStoreError(w, id, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToStatusResponse(id, status))
}

// GetMessagesHandler godoc
// @Summary      Page through a document's chat history
// @Description  Newest first; pass the returned cursor to fetch the next page.
// @Tags         chat
// @Produce      json
// @Param        id      path      string  true   "Document ID"
// @Param        limit   query     int     false  "Page size, default 10"
// @Param        cursor  query     string  false  "Message id from a previous page"
// @Success      200     {object}  api.MessagePageResponse
// @Failure      404     {object}  api.ErrorResponse
// @Router       /api/files/{id}/messages [get]
func GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")
	if _, err := handlerInstance.docs.GetByID(r.Context(), id, callerID(r)); err != nil {
		writeStoreError(w, id, err)
		return
	}

	limit := config.MessagePageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			WriteErrorResponse(w, http.StatusBadRequest, id, "limit must be a positive integer")
			return
		}
		if n > config.MessagePageLimitMax {
			n = config.MessagePageLimitMax
		}
		limit = n
	}

	msgs, nextCursor, err := handlerInstance.msgs.ListByDocument(r.Context(), id, limit, r.URL.Query().Get("cursor"))
	if err != nil {
		logFH.Error("Could not list messages", "docId", id, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, id, "storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToMessagePageResponse(msgs, nextCursor))
}

func writeStoreError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		WriteErrorResponse(w, http.StatusNotFound, id, "file not found")
		return
	}
	logFH.Error("Store error", "id", id, "error", err)
	WriteErrorResponse(w, http.StatusInternalServerError, id, "storage error")
}

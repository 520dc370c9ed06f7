package docModel

import (
	"fmt"
	"time"
)

type UploadStatus string

const (
	StatusPendingUpload UploadStatus = "PENDING_UPLOAD"
	StatusProcessing    UploadStatus = "PROCESSING"
	StatusSuccess       UploadStatus = "SUCCESS"
	StatusFailed        UploadStatus = "FAILED"
)

// The status machine is linear: PENDING_UPLOAD -> PROCESSING -> SUCCESS|FAILED.
// SUCCESS and FAILED are terminal, there are no back edges.
var allowedTransitions = map[UploadStatus][]UploadStatus{
	StatusPendingUpload: {StatusProcessing},
	StatusProcessing:    {StatusSuccess, StatusFailed},
}

func (s UploadStatus) CanTransition(to UploadStatus) bool {
	for _, next := range allowedTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates the edge before returning the new status, so an
// illegal transition is an error at construction time instead of a silent
// overwrite.
func (s UploadStatus) Transition(to UploadStatus) (UploadStatus, error) {
	if !s.CanTransition(to) {
		return s, fmt.Errorf("illegal upload status transition %s -> %s", s, to)
	}
	return to, nil
}

func (s UploadStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

func ParseUploadStatus(raw string) (UploadStatus, error) {
	switch UploadStatus(raw) {
	case StatusPendingUpload, StatusProcessing, StatusSuccess, StatusFailed:
		return UploadStatus(raw), nil
	default:
		return "", fmt.Errorf("unknown upload status %q", raw)
	}
}

type Document struct {
	Id        string       `json:"id"`
	UserId    string       `json:"user_id"`
	Name      string       `json:"name"`
	Key       string       `json:"key"`
	URL       string       `json:"url"`
	PageCount int          `json:"page_count"`
	Status    UploadStatus `json:"upload_status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	ERR  DocType = "ERROR"
)

// Page is one extracted page of document text.
type Page struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

// DocChunk is the unit written to the vector index. The namespace every
// chunk lands in is its document id.
type DocChunk struct {
	DocId   string `json:"doc_id"`
	ChunkId string `json:"chunk_id"`
	Text    string `json:"content"`
	PageNum int    `json:"page_num"`
	Order   int    `json:"chunk_order"`
}

// ScoredChunk is a retrieval hit, alive only for the duration of one chat
// turn.
type ScoredChunk struct {
	Text  string
	Score float32
}

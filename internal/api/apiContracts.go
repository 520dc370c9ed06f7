package api

import "time"

type FileResponse struct {
	Id        string    `json:"id" example:"f3b61c0a-8d5e-4c37-9a70-2f1d9f6f2c11"`
	Name      string    `json:"name" example:"lecture-notes.pdf"`
	Status    string    `json:"upload_status" example:"PROCESSING"`
	PageCount int       `json:"page_count,omitempty" example:"5"`
	CreatedAt time.Time `json:"created_at"`
}

type FileListResponse struct {
	Files []FileResponse `json:"files"`
}

type StatusResponse struct {
	Id     string `json:"id"`
	Status string `json:"upload_status" example:"SUCCESS"`
}

type MessageResponse struct {
	Id            string    `json:"id"`
	Text          string    `json:"text"`
	IsUserMessage bool      `json:"is_user_message"`
	CreatedAt     time.Time `json:"created_at"`
}

type MessagePageResponse struct {
	Messages   []MessageResponse `json:"messages"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"404"`
	Message string `json:"message" example:"file not found"`
	Id      string `json:"id,omitempty"`
}

// requests---------------------

// RegisterFileRequest is what the upload broker posts once the raw bytes are
// stored: either a storage key or a direct URL must be set.
type RegisterFileRequest struct {
	Name string `json:"name" validate:"required"`
	Key  string `json:"key,omitempty"`
	URL  string `json:"url,omitempty"`
	Plan string `json:"plan,omitempty" example:"free"`
}

type SendMessageRequest struct {
	FileID  string `json:"fileId" validate:"required"`
	Message string `json:"message" validate:"required"`
}

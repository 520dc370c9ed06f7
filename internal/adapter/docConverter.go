package adapter

import (
	"github.com/paperchat/paperchat/internal/api"
	"github.com/paperchat/paperchat/internal/domain/chatModel"
	"github.com/paperchat/paperchat/internal/domain/docModel"
)

func ToFileResponse(doc docModel.Document) api.FileResponse {
	return api.FileResponse{
		Id:        doc.Id,
		Name:      doc.Name,
		Status:    string(doc.Status),
		PageCount: doc.PageCount,
		CreatedAt: doc.CreatedAt,
	}
}

func ToFileListResponse(docs []docModel.Document) api.FileListResponse {
	files := make([]api.FileResponse, 0, len(docs))
	for _, doc := range docs {
		files = append(files, ToFileResponse(doc))
	}
	return api.FileListResponse{Files: files}
}

func ToStatusResponse(id string, status docModel.UploadStatus) api.StatusResponse {
	return api.StatusResponse{Id: id, Status: string(status)}
}

func ToMessagePageResponse(msgs []chatModel.Message, nextCursor string) api.MessagePageResponse {
	out := make([]api.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, api.MessageResponse{
			Id:            m.Id,
			Text:          m.Text,
			IsUserMessage: m.IsUserMessage,
			CreatedAt:     m.CreatedAt,
		})
	}
	return api.MessagePageResponse{Messages: out, NextCursor: nextCursor}
}

func BadRequest(id string, message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Code:    code,
		Message: message,
		Id:      id,
	}
}

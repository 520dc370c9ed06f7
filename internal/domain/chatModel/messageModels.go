package chatModel

import "time"

// Message is one persisted chat turn half. The user half is written before
// any retrieval or generation starts; the assistant half only once a stream
// has fully completed.
type Message struct {
	Id            string    `json:"id"`
	DocumentId    string    `json:"document_id"`
	UserId        string    `json:"user_id"`
	Text          string    `json:"text"`
	IsUserMessage bool      `json:"is_user_message"`
	CreatedAt     time.Time `json:"created_at"`
}

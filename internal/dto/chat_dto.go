package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title" validate:"omitempty,max=200"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Chat      string    `json:"chat"`
	Route     int       `json:"route"`
	CreatedAt time.Time `json:"created_at"`
}

// AskRequest is the JSON form of a question. Attachments arrive as multipart
// file fields next to this payload.
type AskRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" form:"chat_session_id" validate:"required"`
	Query         string    `json:"query" form:"query" validate:"max=8000"`
}

// TranscriptMessage is the payload archived through the event bus after an
// answer stream completes.
type TranscriptMessage struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Query         string    `json:"query"`
	Answer        string    `json:"answer"`
	Route         int       `json:"route"`
	AskedAt       time.Time `json:"asked_at"`
}

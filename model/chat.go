package model

import "time"

// ChatMessage is one entry in the shared chat room. Usernames are chosen
// per-session by the client and are not authenticated.
type ChatMessage struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:100;not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"type:timestamp(6);index;autoCreateTime:false"`
}

// TableName keeps the table name fixed regardless of GORM's pluralization.
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// ChatPostRequest is the body of POST /chat.
type ChatPostRequest struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// ChatHistoryResponse is the payload of GET /chat.
type ChatHistoryResponse struct {
	Messages []*ChatMessage `json:"messages"`
}

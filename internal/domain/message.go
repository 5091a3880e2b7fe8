package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const MessageText MessageKind = "text"

// Message carries the author's username and avatar denormalized so a
// history read never needs a second account lookup.
type Message struct {
	ID        string      `json:"id"`
	UserID    UserID      `json:"user_id"`
	ChannelID string      `json:"channel_id"`
	Body      string      `json:"message"`
	Kind      MessageKind `json:"type"`
	Username  string      `json:"username"`
	Avatar    string      `json:"avatar"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewMessage(author Identity, channelID, body string, kind MessageKind) Message {
	if kind == "" {
		kind = MessageText
	}
	return Message{
		ID:        uuid.NewString(),
		UserID:    author.ID,
		ChannelID: channelID,
		Body:      body,
		Kind:      kind,
		Username:  author.Username,
		Avatar:    author.Avatar,
		CreatedAt: time.Now().UTC(),
	}
}

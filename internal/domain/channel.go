package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChannelKind string

const (
	ChannelText  ChannelKind = "text"
	ChannelVoice ChannelKind = "voice"
)

type Channel struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Kind      ChannelKind `json:"type"`
	CreatedBy UserID      `json:"created_by,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewChannel(name string, kind ChannelKind, creator UserID) Channel {
	return Channel{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      kind,
		CreatedBy: creator,
		CreatedAt: time.Now().UTC(),
	}
}

package app

import (
	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Courier/internal/domain"
)

// Outbound event payloads. Field names follow what the web client
// expects on the wire, so snake_case and camelCase are mixed on purpose.

type PresenceDTO struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
	Avatar   string        `json:"avatar"`
	Status   string        `json:"status"`
}

type UsersUpdateEvent struct {
	Type  string        `json:"type"`
	Users []PresenceDTO `json:"users"`
}

type ChannelsListEvent struct {
	Type     string           `json:"type"`
	Channels []domain.Channel `json:"channels"`
}

type ChannelCreatedEvent struct {
	Type    string         `json:"type"`
	Channel domain.Channel `json:"channel"`
}

// NewMessageEvent flattens the message into the envelope. The envelope
// discriminator shadows the message kind's own "type" tag, so the kind
// rides in messageType, the same field name clients send it under.
type NewMessageEvent struct {
	Type        string             `json:"type"`
	MessageType domain.MessageKind `json:"messageType"`
	domain.Message
}

type MessagesHistoryEvent struct {
	Type      string           `json:"type"`
	ChannelID string           `json:"channelId"`
	Messages  []domain.Message `json:"messages"`
}

type OfferEvent struct {
	Type       string                    `json:"type"`
	Offer      webrtc.SessionDescription `json:"offer"`
	Caller     domain.UserID             `json:"caller"`
	CallerName string                    `json:"callerName"`
}

type AnswerEvent struct {
	Type     string                    `json:"type"`
	Answer   webrtc.SessionDescription `json:"answer"`
	Answerer domain.UserID             `json:"answerer"`
}

type CandidateEvent struct {
	Type      string                  `json:"type"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

type MediaUpdateEvent struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
	Audio  bool          `json:"audio"`
	Video  bool          `json:"video"`
}

type ScreenShareStartedEvent struct {
	Type     string        `json:"type"`
	UserID   domain.UserID `json:"userId"`
	UserName string        `json:"userName"`
}

type ScreenShareStoppedEvent struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
}

type VoiceActivityEvent struct {
	Type       string        `json:"type"`
	UserID     domain.UserID `json:"userId"`
	IsSpeaking bool          `json:"isSpeaking"`
}

package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Courier/internal/app"
	"github.com/dkeye/Courier/internal/domain"
)

func (ctl *Controller) handleAuthenticate(sid string, cl *client, data []byte) {
	type authPayload struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var p authPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad authenticate payload")
		ctl.sendError(cl, "bad_payload")
		return
	}

	identity, err := ctl.Gateway.Authenticate(p.Token)
	if err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("sid", sid).Msg("authenticate rejected")
		ctl.sendError(cl, "unauthenticated")
		return
	}

	cl.identity = &identity
	// Register broadcasts users-update to everyone, this session
	// included, so no separate presence reply is needed.
	ctl.Reg.Register(identity, cl.conn)
	log.Info().Str("module", "ws").Str("sid", sid).Str("username", identity.Username).Msg("authenticated")

	channels, err := ctl.Router.Channels()
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("channel directory read")
		return
	}
	ctl.sendJSON(cl, app.ChannelsListEvent{Type: "channels-list", Channels: channels})
}

func (ctl *Controller) handleGetMessages(cl *client, data []byte) {
	type getPayload struct {
		Type      string `json:"type"`
		ChannelID string `json:"channelId"`
	}
	var p getPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad get-messages payload")
		ctl.sendError(cl, "bad_payload")
		return
	}

	messages, err := ctl.Router.FetchHistory(p.ChannelID, 0)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Str("channel", p.ChannelID).Msg("history read")
		return
	}
	ctl.sendJSON(cl, app.MessagesHistoryEvent{
		Type:      "messages-history",
		ChannelID: p.ChannelID,
		Messages:  messages,
	})
}

func (ctl *Controller) handleSendMessage(cl *client, data []byte) {
	if cl.identity == nil {
		log.Warn().Str("module", "ws").Msg("send-message without session, dropped")
		return
	}
	type sendPayload struct {
		Type      string             `json:"type"`
		ChannelID string             `json:"channelId"`
		Message   string             `json:"message"`
		Kind      domain.MessageKind `json:"messageType"`
	}
	var p sendPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad send-message payload")
		ctl.sendError(cl, "bad_payload")
		return
	}

	if !ctl.limiter.Allow(cl.identity.ID) {
		log.Warn().Str("module", "ws").Str("username", cl.identity.Username).Msg("send-message rate limited")
		ctl.sendError(cl, "rate_limited")
		return
	}

	if _, err := ctl.Router.PostMessage(cl.identity.ID, p.ChannelID, p.Message, p.Kind); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("channel", p.ChannelID).Msg("message rejected")
	}
}

func (ctl *Controller) handleCreateChannel(cl *client, data []byte) {
	if cl.identity == nil {
		log.Warn().Str("module", "ws").Msg("create-channel without session, dropped")
		return
	}
	type createPayload struct {
		Type string             `json:"type"`
		Name string             `json:"name"`
		Kind domain.ChannelKind `json:"channelType"`
	}
	var p createPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad create-channel payload")
		ctl.sendError(cl, "bad_payload")
		return
	}
	if p.Name == "" {
		ctl.sendError(cl, "empty name")
		return
	}

	if _, err := ctl.Router.CreateChannel(cl.identity.ID, p.Name, p.Kind); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("name", p.Name).Msg("channel rejected")
	}
}

package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Courier/internal/domain"
)

// MessageStore is the slice of the persistent store the router needs.
type MessageStore interface {
	SaveMessage(domain.Message) error
	Messages(channelID string, limit int) ([]domain.Message, error)
	SaveChannel(domain.Channel) error
	Channels() ([]domain.Channel, error)
}

// Router persists inbound chat traffic and fans it out. Fan-out is
// global: every registered session receives every message regardless of
// the channel it is viewing, and clients filter locally. Do not scope
// this per channel, the client contract depends on it.
type Router struct {
	reg          *Registry
	store        MessageStore
	historyLimit int
}

func NewRouter(reg *Registry, store MessageStore, historyLimit int) *Router {
	return &Router{reg: reg, store: store, historyLimit: historyLimit}
}

// PostMessage persists and broadcasts a chat message. The sender
// receives its own message back like everyone else. A store failure is
// logged and the broadcast still happens: the message may not survive a
// restart, but peers see it now.
func (rt *Router) PostMessage(sender domain.UserID, channelID, body string, kind domain.MessageKind) (domain.Message, error) {
	sess, ok := rt.reg.Get(sender)
	if !ok {
		return domain.Message{}, ErrUnauthenticated
	}

	m := domain.NewMessage(sess.Identity, channelID, body, kind)
	if err := rt.store.SaveMessage(m); err != nil {
		log.Error().Err(err).Str("module", "app.router").Str("channel", channelID).Msg("message not persisted")
	}

	rt.reg.Broadcast(NewMessageEvent{Type: "new-message", MessageType: m.Kind, Message: m})
	return m, nil
}

// CreateChannel persists a channel descriptor and announces it to all
// sessions.
func (rt *Router) CreateChannel(creator domain.UserID, name string, kind domain.ChannelKind) (domain.Channel, error) {
	if _, ok := rt.reg.Get(creator); !ok {
		return domain.Channel{}, ErrUnauthenticated
	}

	ch := domain.NewChannel(name, kind, creator)
	if err := rt.store.SaveChannel(ch); err != nil {
		log.Error().Err(err).Str("module", "app.router").Str("name", name).Msg("channel not persisted")
	}

	rt.reg.Broadcast(ChannelCreatedEvent{Type: "channel-created", Channel: ch})
	return ch, nil
}

// FetchHistory returns the most recent messages of a channel in
// ascending creation order, newest last.
func (rt *Router) FetchHistory(channelID string, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > rt.historyLimit {
		limit = rt.historyLimit
	}
	return rt.store.Messages(channelID, limit)
}

func (rt *Router) Channels() ([]domain.Channel, error) {
	return rt.store.Channels()
}

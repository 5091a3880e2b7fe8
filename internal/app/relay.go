package app

import (
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Courier/internal/domain"
)

// Relay forwards peer negotiation metadata between sessions. It keeps
// no state of its own: directed envelopes go to exactly one resolved
// target, media-state events go to everyone but the origin. Envelopes
// addressed to an identity with no live session are dropped without an
// error, the caller's negotiation simply times out.
type Relay struct {
	reg *Registry
}

func NewRelay(reg *Registry) *Relay {
	return &Relay{reg: reg}
}

// Offer forwards an SDP offer to the target, stamped with the caller's
// identity and display name.
func (rl *Relay) Offer(origin, target domain.UserID, offer webrtc.SessionDescription) error {
	sess, ok := rl.reg.Get(origin)
	if !ok {
		return ErrUnauthenticated
	}
	conn, ok := rl.reg.Resolve(target)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("target", string(target)).Msg("offer target offline, dropped")
		return nil
	}
	sendJSON(conn, OfferEvent{
		Type:       "webrtc-offer",
		Offer:      offer,
		Caller:     origin,
		CallerName: sess.Identity.Username,
	})
	return nil
}

// Answer forwards an SDP answer to the target, stamped with the
// answerer's identity.
func (rl *Relay) Answer(origin, target domain.UserID, answer webrtc.SessionDescription) error {
	if _, ok := rl.reg.Get(origin); !ok {
		return ErrUnauthenticated
	}
	conn, ok := rl.reg.Resolve(target)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("target", string(target)).Msg("answer target offline, dropped")
		return nil
	}
	sendJSON(conn, AnswerEvent{Type: "webrtc-answer", Answer: answer, Answerer: origin})
	return nil
}

// Candidate forwards an ICE candidate unchanged.
func (rl *Relay) Candidate(origin, target domain.UserID, cand webrtc.ICECandidateInit) error {
	if _, ok := rl.reg.Get(origin); !ok {
		return ErrUnauthenticated
	}
	conn, ok := rl.reg.Resolve(target)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("target", string(target)).Msg("candidate target offline, dropped")
		return nil
	}
	sendJSON(conn, CandidateEvent{Type: "webrtc-ice-candidate", Candidate: cand})
	return nil
}

// MediaToggle announces the origin's audio/video state to everyone else.
func (rl *Relay) MediaToggle(origin domain.UserID, audio, video bool) error {
	if _, ok := rl.reg.Get(origin); !ok {
		return ErrUnauthenticated
	}
	rl.reg.BroadcastExcept(origin, MediaUpdateEvent{
		Type:   "user-media-update",
		UserID: origin,
		Audio:  audio,
		Video:  video,
	})
	return nil
}

func (rl *Relay) StartScreenShare(origin domain.UserID) error {
	sess, ok := rl.reg.Get(origin)
	if !ok {
		return ErrUnauthenticated
	}
	rl.reg.BroadcastExcept(origin, ScreenShareStartedEvent{
		Type:     "user-screen-share-started",
		UserID:   origin,
		UserName: sess.Identity.Username,
	})
	return nil
}

func (rl *Relay) StopScreenShare(origin domain.UserID) error {
	if _, ok := rl.reg.Get(origin); !ok {
		return ErrUnauthenticated
	}
	rl.reg.BroadcastExcept(origin, ScreenShareStoppedEvent{
		Type:   "user-screen-share-stopped",
		UserID: origin,
	})
	return nil
}

func (rl *Relay) VoiceActivity(origin domain.UserID, speaking bool) error {
	if _, ok := rl.reg.Get(origin); !ok {
		return ErrUnauthenticated
	}
	rl.reg.BroadcastExcept(origin, VoiceActivityEvent{
		Type:       "user-voice-activity",
		UserID:     origin,
		IsSpeaking: speaking,
	})
	return nil
}

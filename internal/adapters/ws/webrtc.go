package ws

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Courier/internal/domain"
)

// Signaling events carry pion types so a malformed SDP or candidate is
// rejected at the edge; the relay itself never inspects them.

func (ctl *Controller) handleOffer(cl *client, data []byte) {
	if cl.identity == nil {
		log.Warn().Str("module", "ws").Msg("webrtc-offer without session, dropped")
		return
	}
	type offerPayload struct {
		Type   string                    `json:"type"`
		Target domain.UserID             `json:"target"`
		Offer  webrtc.SessionDescription `json:"offer"`
	}
	var p offerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad offer payload")
		return
	}
	if err := ctl.Relay.Offer(cl.identity.ID, p.Target, p.Offer); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("offer not relayed")
	}
}

func (ctl *Controller) handleAnswer(cl *client, data []byte) {
	if cl.identity == nil {
		log.Warn().Str("module", "ws").Msg("webrtc-answer without session, dropped")
		return
	}
	type answerPayload struct {
		Type   string                    `json:"type"`
		Target domain.UserID             `json:"target"`
		Answer webrtc.SessionDescription `json:"answer"`
	}
	var p answerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad answer payload")
		return
	}
	if err := ctl.Relay.Answer(cl.identity.ID, p.Target, p.Answer); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("answer not relayed")
	}
}

func (ctl *Controller) handleCandidate(cl *client, data []byte) {
	if cl.identity == nil {
		log.Warn().Str("module", "ws").Msg("webrtc-ice-candidate without session, dropped")
		return
	}
	type candidatePayload struct {
		Type      string                  `json:"type"`
		Target    domain.UserID           `json:"target"`
		Candidate webrtc.ICECandidateInit `json:"candidate"`
	}
	var p candidatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad candidate payload")
		return
	}
	if err := ctl.Relay.Candidate(cl.identity.ID, p.Target, p.Candidate); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("candidate not relayed")
	}
}

func (ctl *Controller) handleMediaToggle(cl *client, data []byte) {
	if cl.identity == nil {
		log.Warn().Str("module", "ws").Msg("media-toggle without session, dropped")
		return
	}
	type mediaPayload struct {
		Type  string `json:"type"`
		Audio bool   `json:"audio"`
		Video bool   `json:"video"`
	}
	var p mediaPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad media-toggle payload")
		return
	}
	if err := ctl.Relay.MediaToggle(cl.identity.ID, p.Audio, p.Video); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("media-toggle not relayed")
	}
}

func (ctl *Controller) handleScreenShare(cl *client, start bool) {
	if cl.identity == nil {
		log.Warn().Str("module", "ws").Msg("screen-share without session, dropped")
		return
	}
	var err error
	if start {
		err = ctl.Relay.StartScreenShare(cl.identity.ID)
	} else {
		err = ctl.Relay.StopScreenShare(cl.identity.ID)
	}
	if err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("screen-share not relayed")
	}
}

func (ctl *Controller) handleVoiceActivity(cl *client, data []byte) {
	if cl.identity == nil {
		log.Warn().Str("module", "ws").Msg("voice-activity without session, dropped")
		return
	}
	type voicePayload struct {
		Type       string `json:"type"`
		IsSpeaking bool   `json:"isSpeaking"`
	}
	var p voicePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad voice-activity payload")
		return
	}
	if err := ctl.Relay.VoiceActivity(cl.identity.ID, p.IsSpeaking); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("voice-activity not relayed")
	}
}

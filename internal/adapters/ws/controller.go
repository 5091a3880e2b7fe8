// Package ws is the transport adapter: one websocket per client, one
// read pump feeding the dispatcher so per-connection order is
// preserved, one write pump draining the send queue.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Courier/internal/app"
	"github.com/dkeye/Courier/internal/auth"
	"github.com/dkeye/Courier/internal/domain"
)

// Chat flood bounds, applied per identity on the send-message path.
const (
	messageRateLimit    = 10
	messageRateInterval = 10 * time.Second
)

type Controller struct {
	Gateway    *auth.Gateway
	Reg        *app.Registry
	Router     *app.Router
	Relay      *app.Relay
	ReadLimit  int64
	PingPeriod time.Duration

	limiter *MessageRateLimiter
}

func NewController(gw *auth.Gateway, reg *app.Registry, router *app.Router, relay *app.Relay, readLimit int64, pingPeriod time.Duration) *Controller {
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &Controller{
		Gateway:    gw,
		Reg:        reg,
		Router:     router,
		Relay:      relay,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
		limiter:    NewMessageRateLimiter(messageRateLimit, messageRateInterval),
	}
}

// client is the per-connection state. identity stays nil until the
// authenticate event succeeds.
type client struct {
	conn     *Conn
	identity *domain.Identity
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	sid := c.GetString("client_token")
	log.Info().Str("module", "ws").Str("sid", sid).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	cl := &client{conn: newConn(ws)}
	ctx, cancel := context.WithCancel(ctx)

	go cl.conn.writePump(ctx, ctl.PingPeriod)
	go ctl.readPump(ctx, cancel, sid, cl)
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, sid string, cl *client) {
	defer func() {
		log.Info().Str("module", "ws").Str("sid", sid).Msg("readPump closing")
		if cl.identity != nil {
			// The conn guard makes this a no-op when a newer session
			// has already replaced us.
			ctl.Reg.Unregister(*cl.identity, cl.conn)
		}
		cl.conn.Close()
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "ws").Str("sid", sid).Msg("readPump ctx done")
			return
		default:
			_, data, err := cl.conn.ws.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "ws").Str("sid", sid).Msg("readPump read error")
				return
			}
			ctl.dispatch(sid, cl, data)
		}
	}
}

func (ctl *Controller) dispatch(sid string, cl *client, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad json")
		ctl.sendError(cl, "bad_payload")
		return
	}

	switch env.Type {
	case "authenticate":
		ctl.handleAuthenticate(sid, cl, data)
	case "get-messages":
		ctl.handleGetMessages(cl, data)
	case "send-message":
		ctl.handleSendMessage(cl, data)
	case "create-channel":
		ctl.handleCreateChannel(cl, data)
	case "webrtc-offer":
		ctl.handleOffer(cl, data)
	case "webrtc-answer":
		ctl.handleAnswer(cl, data)
	case "webrtc-ice-candidate":
		ctl.handleCandidate(cl, data)
	case "media-toggle":
		ctl.handleMediaToggle(cl, data)
	case "start-screen-share":
		ctl.handleScreenShare(cl, true)
	case "stop-screen-share":
		ctl.handleScreenShare(cl, false)
	case "voice-activity":
		ctl.handleVoiceActivity(cl, data)
	case "ping":
		ctl.sendJSON(cl, map[string]string{"type": "pong"})
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) sendJSON(cl *client, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("sendJSON marshal")
		return
	}
	if err := cl.conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("sendJSON dropped")
	}
}

func (ctl *Controller) sendError(cl *client, msg string) {
	ctl.sendJSON(cl, map[string]any{"type": "error", "error": msg})
}

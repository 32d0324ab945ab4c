package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"wishlist/internal/apperr"
	"wishlist/internal/metrics"
	"wishlist/internal/models"
)

// Authenticator turns an access token into a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Authorizer decides who may watch a list. Neither method may count a
// public-link view.
type Authorizer interface {
	CanView(ctx context.Context, userID, listID uuid.UUID) error
	CheckPublic(ctx context.Context, token string) (uuid.UUID, error)
}

// Config tunes connection liveness.
type Config struct {
	PingInterval     time.Duration
	HandshakeTimeout time.Duration
}

// ConnectParams are the credentials supplied on the upgrade URL.
type ConnectParams struct {
	AccessToken string
	PublicToken string
}

// Gateway runs the connection lifecycle: rate check, handshake, room
// membership, heartbeat and the control read loop.
type Gateway struct {
	hub     *Hub
	auth    Authenticator
	access  Authorizer
	limiter *ConnLimiter
	cfg     Config
	logger  *slog.Logger
}

// NewGateway creates a gateway. limiter may be nil.
func NewGateway(hub *Hub, auth Authenticator, access Authorizer, limiter *ConnLimiter, cfg Config, logger *slog.Logger) *Gateway {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 25 * time.Second
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		hub:     hub,
		auth:    auth,
		access:  access,
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
	}
}

// errHandshakeClosed ends a handshake whose socket went away.
var errHandshakeClosed = errors.New("connection closed during handshake")

// rejection is how a failed handshake is reported on the wire.
type rejection struct {
	code      string
	message   string
	closeCode int
}

// rejectionFor maps a handshake error onto an error event and close code.
func rejectionFor(err error) rejection {
	r := rejection{closeCode: CloseAuthFailed, message: apperr.Message(err, "Access denied")}
	switch {
	case errors.Is(err, errHandshakeClosed):
		r.code, r.message, r.closeCode = CodeInvalid, err.Error(), CloseNormal
	case errors.Is(err, apperr.ErrProtocol):
		r.code, r.closeCode = CodeInvalid, ClosePolicy
	case errors.Is(err, apperr.ErrRateLimited):
		r.code, r.closeCode = CodeRateLimited, CloseRateLimited
	case errors.Is(err, apperr.ErrNotFound):
		r.code = CodeNotFound
	case errors.Is(err, apperr.ErrForbidden):
		r.code = CodeForbidden
	case errors.Is(err, apperr.ErrValidation):
		r.code = CodeInvalid
	default:
		r.code = CodeUnauthorized
	}
	return r
}

// Serve owns conn until the client disconnects or ctx is cancelled. It
// returns only after the heartbeat has stopped and the session has left its
// room.
func (g *Gateway) Serve(ctx context.Context, conn Conn, params ConnectParams) {
	sess := NewSession(conn, g.logger)

	if g.limiter != nil && !g.limiter.Allow(conn.RemoteAddr()) {
		g.reject(sess, apperr.RateLimited("Too many connections"))
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(g.cfg.HandshakeTimeout))
	listID, public, err := g.handshake(ctx, sess, params)
	if err != nil {
		g.reject(sess, err)
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	room := RoomKey(listID)
	g.hub.Join(sess, room)
	defer g.hub.Leave(sess, room)

	metrics.RecordHandshake("ok")
	sess.logger.Info("realtime session subscribed", "room", room)
	g.hub.SendPersonal(sess, EventSubscribed, map[string]any{"list_id": listID.String(), "public": public})

	hbCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		g.heartbeat(hbCtx, sess)
	}()
	go func() {
		defer wg.Done()
		<-hbCtx.Done()
		// Server shutdown unblocks readLoop by closing the socket.
		if ctx.Err() != nil {
			sess.Close(CloseGoingAway, "Server shutting down")
		}
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	g.readLoop(sess)
	sess.Close(CloseNormal, "")
}

func (g *Gateway) reject(sess *Session, err error) {
	r := rejectionFor(err)
	metrics.RecordHandshake(r.code)
	sess.logger.Info("realtime handshake rejected", "code", r.code, "reason", r.message)
	sess.SendEvent(EventError, map[string]any{"code": r.code, "message": r.message})
	sess.Close(r.closeCode, r.message)
}

// handshake resolves the list to watch and whether it was reached through a
// public link. Exactly one path applies: a public token on the URL wins, then
// an access token on the URL followed by subscribe, then in-band auth or
// subscribe_public.
func (g *Gateway) handshake(ctx context.Context, sess *Session, p ConnectParams) (uuid.UUID, bool, error) {
	switch {
	case p.PublicToken != "":
		return g.subscribePublic(ctx, p.PublicToken)

	case p.AccessToken != "":
		user, err := g.auth.Authenticate(ctx, p.AccessToken)
		if err != nil {
			return uuid.Nil, false, err
		}
		return g.subscribe(ctx, sess, user)

	default:
		msg, err := g.read(sess)
		if err != nil {
			return uuid.Nil, false, err
		}
		switch msg.Event {
		case EventAuth:
			if msg.AccessToken == "" {
				return uuid.Nil, false, apperr.Protocol("access_token is required")
			}
			user, err := g.auth.Authenticate(ctx, msg.AccessToken)
			if err != nil {
				return uuid.Nil, false, err
			}
			g.hub.SendPersonal(sess, EventAuthenticated, map[string]any{"user_id": user.ID.String()})
			return g.subscribe(ctx, sess, user)
		case EventSubscribePublic:
			if msg.PublicToken == "" {
				return uuid.Nil, false, apperr.Protocol("public_token is required")
			}
			return g.subscribePublic(ctx, msg.PublicToken)
		default:
			return uuid.Nil, false, apperr.Protocol("Expected auth or subscribe_public")
		}
	}
}

func (g *Gateway) subscribePublic(ctx context.Context, token string) (uuid.UUID, bool, error) {
	listID, err := g.access.CheckPublic(ctx, token)
	if err != nil {
		return uuid.Nil, false, err
	}
	return listID, true, nil
}

// subscribe expects the next message to be subscribe{list_id} for a list the
// user may view.
func (g *Gateway) subscribe(ctx context.Context, sess *Session, user *models.User) (uuid.UUID, bool, error) {
	msg, err := g.read(sess)
	if err != nil {
		return uuid.Nil, false, err
	}
	if msg.Event != EventSubscribe {
		return uuid.Nil, false, apperr.Protocol("Expected subscribe")
	}
	listID, err := uuid.Parse(msg.listID())
	if err != nil {
		return uuid.Nil, false, apperr.Protocol("list_id must be a valid id")
	}
	if err := g.access.CanView(ctx, user.ID, listID); err != nil {
		return uuid.Nil, false, err
	}
	return listID, false, nil
}

// read decodes the next handshake message. Transport failures end the
// handshake silently; malformed JSON is a protocol error.
func (g *Gateway) read(sess *Session) (clientMessage, error) {
	var msg clientMessage
	data, err := sess.conn.ReadMessage()
	if err != nil {
		return msg, errHandshakeClosed
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, apperr.Protocol("Malformed message")
	}
	return msg, nil
}

// heartbeat sends a ping every interval until ctx is done or a send fails.
func (g *Gateway) heartbeat(ctx context.Context, sess *Session) {
	ticker := time.NewTicker(g.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			data, err := Envelope(EventPing, map[string]any{"ts": t.Unix()})
			if err != nil {
				continue
			}
			if err := sess.Send(data); err != nil {
				sess.logger.Debug("heartbeat send failed", "error", err)
				sess.Close(CloseNormal, "")
				return
			}
		}
	}
}

// readLoop consumes control messages until unsubscribe or disconnect.
// Anything other than pong and unsubscribe is ignored.
func (g *Gateway) readLoop(sess *Session) {
	for {
		data, err := sess.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Event == EventUnsubscribe {
			return
		}
	}
}

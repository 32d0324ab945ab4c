package handlers

import (
	"context"
	"time"

	"github.com/gofiber/contrib/v3/websocket"
	"github.com/gofiber/fiber/v3"

	"wishlist/internal/realtime"
)

const writeTimeout = 10 * time.Second

// WSHandler upgrades /ws requests and hands each socket to the gateway.
type WSHandler struct {
	gateway *realtime.Gateway
	ctx     context.Context
}

// NewWSHandler creates a new websocket handler. Cancelling ctx closes every
// open session with a going-away code.
func NewWSHandler(ctx context.Context, gateway *realtime.Gateway) *WSHandler {
	return &WSHandler{gateway: gateway, ctx: ctx}
}

// Upgrade rejects plain HTTP requests and records the caller's address for
// the connection limiter.
func (h *WSHandler) Upgrade(c fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals("remote", c.IP())
	return c.Next()
}

// Serve returns the websocket endpoint.
func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		h.gateway.Serve(h.ctx, &wsConn{c: c}, realtime.ConnectParams{
			AccessToken: c.Query("access_token"),
			PublicToken: c.Query("public_token"),
		})
	})
}

// wsConn adapts a fiber websocket to realtime.Conn.
type wsConn struct {
	c *websocket.Conn
}

func (w *wsConn) ReadMessage() ([]byte, error) {
	for {
		mt, data, err := w.c.ReadMessage()
		if err != nil {
			return nil, err
		}
		if mt == websocket.TextMessage || mt == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (w *wsConn) WriteMessage(data []byte) error {
	if err := w.c.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return w.c.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) CloseWithCode(code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = w.c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return w.c.Close()
}

func (w *wsConn) SetReadDeadline(t time.Time) error {
	return w.c.SetReadDeadline(t)
}

func (w *wsConn) RemoteAddr() string {
	if addr, ok := w.c.Locals("remote").(string); ok {
		return addr
	}
	return w.c.RemoteAddr().String()
}

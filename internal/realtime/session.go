package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Conn is one live bidirectional message connection.
type Conn interface {
	// ReadMessage blocks for the next text or binary frame.
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	CloseWithCode(code int, reason string) error
	SetReadDeadline(t time.Time) error
	RemoteAddr() string
}

// Session is the server side of one connection. Writes are serialized so the
// heartbeat, personal replies and broadcasts never interleave frames.
type Session struct {
	ID     uuid.UUID
	conn   Conn
	logger *slog.Logger

	writeMu sync.Mutex
	closeMu sync.Once
}

// NewSession wraps conn.
func NewSession(conn Conn, logger *slog.Logger) *Session {
	id := uuid.New()
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:     id,
		conn:   conn,
		logger: logger.With("session_id", id.String(), "remote", conn.RemoteAddr()),
	}
}

// Send writes one frame.
func (s *Session) Send(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(data)
}

// SendEvent encodes and writes one event. Failures are logged, not returned.
func (s *Session) SendEvent(event string, payload map[string]any) {
	data, err := Envelope(event, payload)
	if err != nil {
		s.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}
	if err := s.Send(data); err != nil {
		s.logger.Warn("send_personal failed", "event", event, "error", err)
	}
}

// Close closes the connection once with code.
func (s *Session) Close(code int, reason string) {
	s.closeMu.Do(func() {
		if err := s.conn.CloseWithCode(code, reason); err != nil {
			s.logger.Debug("close failed", "error", err)
		}
	})
}

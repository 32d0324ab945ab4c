package realtime

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Server-to-client events
const (
	EventAuthenticated     = "authenticated"
	EventSubscribed        = "subscribed"
	EventError             = "error"
	EventPing              = "ping"
	EventItemAdded         = "item_added"
	EventItemUpdated       = "item_updated"
	EventItemRemoved       = "item_removed"
	EventSuggestionAdded   = "suggestion_added"
	EventSuggestionRemoved = "suggestion_removed"
)

// Client-to-server events
const (
	EventAuth            = "auth"
	EventSubscribe       = "subscribe"
	EventSubscribePublic = "subscribe_public"
	EventPong            = "pong"
	EventUnsubscribe     = "unsubscribe"
)

// Error codes carried by the error event
const (
	CodeInvalid      = "invalid"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeRateLimited  = "rate_limited"
)

// Close codes
const (
	CloseNormal      = 1000
	CloseGoingAway   = 1001
	ClosePolicy      = 1008
	CloseAuthFailed  = 4001
	CloseRateLimited = 4429
)

// RoomKey is the canonical room of a list. Public-link and member viewers of
// the same list share it.
func RoomKey(listID uuid.UUID) string {
	return "list:" + listID.String()
}

// Envelope encodes {event, ...payload} as a JSON text frame.
func Envelope(event string, payload map[string]any) ([]byte, error) {
	msg := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		msg[k] = v
	}
	msg["event"] = event
	return json.Marshal(msg)
}

// clientMessage is any control message a client may send.
type clientMessage struct {
	Event       string `json:"event"`
	AccessToken string `json:"access_token"`
	PublicToken string `json:"public_token"`
	ListID      string `json:"list_id"`
	WishlistID  string `json:"wishlist_id"`
}

func (m clientMessage) listID() string {
	if m.ListID != "" {
		return m.ListID
	}
	return m.WishlistID
}

package domain

import (
	"github.com/google/uuid"
)

// InitialCursor subscribes to a notification stream from its beginning.
const InitialCursor int64 = -1

// ProtocolState is the engine view of one protocol instance.
type ProtocolState struct {
	ID          uuid.UUID        `json:"id"`
	PrototypeID string           `json:"prototypeId"`
	Parties     map[string]Party `json:"parties"`
	Fields      map[string]Value `json:"fields"`
}

// Payload is the body of a notification: the notification type name and its arguments.
type Payload struct {
	Name      string  `json:"name"`
	Arguments []Value `json:"arguments"`
}

// Notification is one entry of the engine notification stream. ID is the stream cursor.
type Notification struct {
	ID      int64   `json:"id"`
	Payload Payload `json:"payload"`
}

// AuthorizationProvider yields the Authorization header pair presented to the engine.
type AuthorizationProvider interface {
	Authorization() (scheme, credential string, err error)
}

// Package domain contains core concepts of the chat relay.
// Messages are immutable once persisted.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents one durably stored chat message.
// ID and CreatedAt are assigned by the message store at append time,
// never by the client.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

package notifications

import (
	"github.com/google/uuid"

	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
)

// OrderEmailEvent is the message published to the order email topic. EventID
// dedupes redeliveries on the consumer side.
type OrderEmailEvent struct {
	EventID   uuid.UUID       `json:"event_id"`
	EmailType enums.EmailType `json:"email_type"`
	OrderID   uuid.UUID       `json:"order_id"`
}

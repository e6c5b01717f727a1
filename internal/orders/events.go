package orders

import (
	"encoding/json"
	"time"
)

const EventLessonBooked = "LessonBooked"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// LessonBookedPayload announces a committed order. Consumers only get
// it after the capacity decrements are durable, so acting on it can
// never observe a half-applied order.
type LessonBookedPayload struct {
	OrderID       string `json:"order_id"`
	Lines         []Line `json:"lines"`
	PaymentStatus string `json:"payment_status"`
}

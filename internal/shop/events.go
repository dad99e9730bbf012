package shop

import (
	"encoding/json"
	"time"
)

const (
	EventOrderSubmitted = "OrderSubmitted"
	EventReviewResolved = "ReviewResolved"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // customer identity
	Payload       json.RawMessage `json:"payload"`
}

type OrderSubmittedPayload struct {
	OrderID     int64   `json:"order_id"`
	Identity    string  `json:"identity"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Amount      float64 `json:"amount"`
}

type ReviewResolvedPayload struct {
	OrderID  int64  `json:"order_id"`
	Identity string `json:"identity"`
	Outcome  Status `json:"outcome"` // confirmed | rejected
}

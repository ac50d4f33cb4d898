package services

import (
	"encoding/json"
	"fmt"
)

// EventPaymentCaptured is the only provider event that changes state.
const EventPaymentCaptured = "payment.captured"

// WebhookEvent is a parsed provider event: PaymentCaptured or Unrecognized.
type WebhookEvent interface {
	EventName() string
	isWebhookEvent()
}

// PaymentCaptured reports money captured against one of our provider orders.
type PaymentCaptured struct {
	PaymentID   string
	OrderID     string
	AmountMinor int64
	Currency    string
}

func (PaymentCaptured) EventName() string { return EventPaymentCaptured }
func (PaymentCaptured) isWebhookEvent()   {}

// Unrecognized is any event we acknowledge without acting on.
type Unrecognized struct {
	Name   string
	Reason string
}

func (u Unrecognized) EventName() string { return u.Name }
func (Unrecognized) isWebhookEvent()     {}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity struct {
				ID       string `json:"id"`
				OrderID  string `json:"order_id"`
				Status   string `json:"status"`
				Amount   int64  `json:"amount"`
				Currency string `json:"currency"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseWebhookEvent decodes a verified webhook body. Only malformed JSON is an
// error; unknown or incomplete events come back as Unrecognized.
func ParseWebhookEvent(raw []byte) (WebhookEvent, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}

	if envelope.Event != EventPaymentCaptured {
		return Unrecognized{Name: envelope.Event, Reason: "event type not handled"}, nil
	}
	if envelope.Payload.Payment == nil {
		return Unrecognized{Name: envelope.Event, Reason: "payment entity missing"}, nil
	}

	entity := envelope.Payload.Payment.Entity
	if entity.ID == "" || entity.OrderID == "" {
		return Unrecognized{Name: envelope.Event, Reason: "payment or order id missing"}, nil
	}

	return PaymentCaptured{
		PaymentID:   entity.ID,
		OrderID:     entity.OrderID,
		AmountMinor: entity.Amount,
		Currency:    entity.Currency,
	}, nil
}

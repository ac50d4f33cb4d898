package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/razorpay/razorpay-go"
)

// ProviderOrderRequest asks the gateway to open an order for a booking.
type ProviderOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// ProviderRefundRequest asks the gateway to return money on a captured payment.
type ProviderRefundRequest struct {
	PaymentID   string
	AmountMinor int64
	Receipt     string
	Notes       map[string]string
}

// PaymentProvider is the outbound side of a payment gateway.
type PaymentProvider interface {
	Name() string
	CreateOrder(ctx context.Context, req ProviderOrderRequest) (string, error)
	Refund(ctx context.Context, req ProviderRefundRequest) (string, error)
}

// RazorpayProvider talks to Razorpay through its Go SDK.
type RazorpayProvider struct {
	client *razorpay.Client
}

func NewRazorpayProvider(keyID, keySecret string) *RazorpayProvider {
	return &RazorpayProvider{client: razorpay.NewClient(keyID, keySecret)}
}

func (p *RazorpayProvider) Name() string {
	return "razorpay"
}

// CreateOrder returns the Razorpay order id.
func (p *RazorpayProvider) CreateOrder(ctx context.Context, req ProviderOrderRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data := map[string]interface{}{
		"amount":          req.AmountMinor,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
	}
	if len(req.Notes) > 0 {
		data["notes"] = req.Notes
	}

	body, err := p.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create: %w", err)
	}
	orderID, _ := body["id"].(string)
	if orderID == "" {
		return "", errors.New("razorpay order create: response has no id")
	}
	return orderID, nil
}

// Refund returns the Razorpay refund id.
func (p *RazorpayProvider) Refund(ctx context.Context, req ProviderRefundRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data := map[string]interface{}{
		"receipt": req.Receipt,
	}
	if len(req.Notes) > 0 {
		data["notes"] = req.Notes
	}

	body, err := p.client.Payment.Refund(req.PaymentID, int(req.AmountMinor), data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay refund: %w", err)
	}
	refundID, _ := body["id"].(string)
	if refundID == "" {
		return "", errors.New("razorpay refund: response has no id")
	}
	return refundID, nil
}

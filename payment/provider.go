// Package payment wraps the hosted checkout provider behind a small interface
// so the services can be tested without network access.
package payment

import (
	"context"
	"encoding/json"
)

const (
	EventCheckoutSessionCompleted = "checkout.session.completed"

	MetadataCourseID  = "courseId"
	MetadataUserEmail = "userEmail"
)

type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)
	RetrieveSession(ctx context.Context, id string) (*Session, error)
	// VerifyEvent authenticates payload against the signature header. It must
	// be given the request body exactly as received.
	VerifyEvent(payload []byte, signatureHeader string) (*Event, error)
}

// CheckoutRequest describes a single-item hosted checkout.
type CheckoutRequest struct {
	CourseID      string
	Title         string
	Description   string
	Amount        int64 // minor units
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type Session struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	CustomerEmail string            `json:"customer_email"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

type Event struct {
	ID   string
	Type string
	Data json.RawMessage
}

// DecodeCheckoutSession reads the checkout-session object carried by ev.
func DecodeCheckoutSession(ev *Event) (*Session, error) {
	var s Session
	if err := json.Unmarshal(ev.Data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

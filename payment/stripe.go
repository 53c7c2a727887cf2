package payment

import (
	"context"
	"encoding/json"

	"coursemaster/apperr"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Stripe implements Provider with Stripe Checkout.
type Stripe struct {
	sessions      session.Client
	webhookSecret string
}

var _ Provider = (*Stripe)(nil)

func NewStripe(secretKey, webhookSecret string) *Stripe {
	return &Stripe{
		sessions:      session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		webhookSecret: webhookSecret,
	}
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.Title),
	}
	if req.Description != "" {
		product.Description = stripe.String(req.Description)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(req.Currency),
					ProductData: product,
					UnitAmount:  stripe.Int64(req.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(req.CustomerEmail),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(MetadataCourseID, req.CourseID)
	params.AddMetadata(MetadataUserEmail, req.CustomerEmail)

	cs, err := s.sessions.New(params)
	if err != nil {
		return nil, apperr.Upstream("Failed to create checkout session", err)
	}
	return fromStripe(cs), nil
}

func (s *Stripe) RetrieveSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	cs, err := s.sessions.Get(id, params)
	if err != nil {
		return nil, apperr.Upstream("Failed to get session", err)
	}
	return fromStripe(cs), nil
}

// VerifyEvent checks the Stripe-Signature header. Account API version
// drift is tolerated; signature and timestamp tolerance are not.
func (s *Stripe) VerifyEvent(payload []byte, signatureHeader string) (*Event, error) {
	if s.webhookSecret == "" {
		return nil, apperr.New(apperr.KindInvalidSignature, "Webhook secret is not configured")
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidSignature, "Webhook signature verification failed", err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data != nil {
		out.Data = json.RawMessage(ev.Data.Raw)
	}
	return out, nil
}

func fromStripe(cs *stripe.CheckoutSession) *Session {
	return &Session{
		ID:            cs.ID,
		URL:           cs.URL,
		Status:        string(cs.Status),
		PaymentStatus: string(cs.PaymentStatus),
		CustomerEmail: cs.CustomerEmail,
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
		Metadata:      cs.Metadata,
	}
}

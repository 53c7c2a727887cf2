package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/models"
	"coursemaster/payment"
	"coursemaster/store"
)

type CheckoutService struct {
	store     store.Store
	provider  payment.Provider
	clientURL string
	currency  string
	log       *logger.Logger
}

func NewCheckoutService(st store.Store, provider payment.Provider, clientURL, currency string, log *logger.Logger) *CheckoutService {
	if currency == "" {
		currency = "usd"
	}
	return &CheckoutService{
		store:     st,
		provider:  provider,
		clientURL: strings.TrimRight(clientURL, "/"),
		currency:  currency,
		log:       log,
	}
}

type CheckoutResult struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// CreateCheckout opens a hosted checkout for courseID on behalf of email.
// It records a Checkout Intent but never enrolls; enrollment happens only on
// the verified payment confirmation.
func (s *CheckoutService) CreateCheckout(ctx context.Context, courseID, email string) (*CheckoutResult, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, apperr.InvalidInput("courseId required")
	}
	if !s.store.ValidID(courseID) {
		return nil, apperr.InvalidInput("Invalid course ID")
	}

	course, err := s.store.FindCourseByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Course not found")
		}
		s.log.Error("Fetch course failed", "courseId", courseID, "error", err)
		return nil, apperr.Upstream("Failed to create checkout session", err)
	}

	amount := course.MinorUnitAmount()
	escapedID := url.PathEscape(courseID)
	session, err := s.provider.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		CourseID:      courseID,
		Title:         course.Title,
		Description:   course.Description,
		Amount:        amount,
		Currency:      s.currency,
		CustomerEmail: email,
		SuccessURL:    fmt.Sprintf("%s/payment-success?session_id={CHECKOUT_SESSION_ID}&courseId=%s", s.clientURL, url.QueryEscape(courseID)),
		CancelURL:     fmt.Sprintf("%s/course/%s", s.clientURL, escapedID),
	})
	if err != nil {
		s.log.Error("Create checkout session error", "courseId", courseID, "email", email, "error", err)
		return nil, apperr.Upstream("Failed to create checkout session", err)
	}

	intent := models.CheckoutIntent{
		SessionID: session.ID,
		CourseID:  courseID,
		UserEmail: email,
		Amount:    amount,
		Currency:  s.currency,
		CreatedAt: time.Now(),
	}
	if err := s.store.SaveCheckoutIntent(ctx, intent); err != nil {
		s.log.Error("Failed to record checkout intent", "sessionId", session.ID, "error", err)
		return nil, apperr.Upstream("Failed to create checkout session", err)
	}

	s.log.Info("Checkout session created", "sessionId", session.ID, "courseId", courseID, "email", email, "amount", amount)
	return &CheckoutResult{URL: session.URL, SessionID: session.ID}, nil
}

func (s *CheckoutService) RetrieveSession(ctx context.Context, id string) (*payment.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.InvalidInput("Session ID required")
	}
	session, err := s.provider.RetrieveSession(ctx, id)
	if err != nil {
		s.log.Error("Get session error", "sessionId", id, "error", err)
		return nil, apperr.Upstream("Failed to get session", err)
	}
	return session, nil
}

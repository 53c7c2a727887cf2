package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"coursemaster/payment"
)

type fakeProvider struct {
	mu       sync.Mutex
	requests []payment.CheckoutRequest
	err      error
	next     int
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, req)
	f.next++
	id := fmt.Sprintf("cs_test_%d", f.next)
	return &payment.Session{
		ID:       id,
		URL:      "https://checkout.stripe.test/" + id,
		Metadata: map[string]string{payment.MetadataCourseID: req.CourseID, payment.MetadataUserEmail: req.CustomerEmail},
	}, nil
}

func (f *fakeProvider) RetrieveSession(_ context.Context, id string) (*payment.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &payment.Session{ID: id, Status: "complete"}, nil
}

func (f *fakeProvider) VerifyEvent(_ []byte, _ string) (*payment.Event, error) {
	return nil, errors.New("not used")
}

type sentMail struct {
	Kind, Email, Name, Course string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) SendWelcomeEmail(email, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Kind: "welcome", Email: email, Name: name})
}

func (m *fakeMailer) SendEnrollmentEmail(email, name, courseTitle string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Kind: "enrollment", Email: email, Name: name, Course: courseTitle})
}

func (m *fakeMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

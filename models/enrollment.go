package models

import "time"

// EnrollOutcome is the result of applying a checkout completion to a user.
type EnrollOutcome string

const (
	EnrollApplied             EnrollOutcome = "applied"
	EnrollNoopAlreadyEnrolled EnrollOutcome = "noop_already_enrolled"
	EnrollNoopNotFound        EnrollOutcome = "noop_not_found"
	EnrollNoopInvalidMetadata EnrollOutcome = "noop_invalid_metadata"
	EnrollNoopIgnoredType     EnrollOutcome = "noop_ignored_type"
	EnrollNoopIntentMismatch  EnrollOutcome = "noop_intent_mismatch"
	EnrollNoopStoreFailure    EnrollOutcome = "noop_store_failure"
)

// CompletionOutcome is the result of marking a module complete.
type CompletionOutcome string

const (
	CompletionApplied             CompletionOutcome = "applied"
	CompletionNoopAlreadyComplete CompletionOutcome = "noop_already_complete"
	CompletionNoopNotEnrolled     CompletionOutcome = "noop_not_enrolled"
)

// CheckoutIntent is the local record of a checkout session created for a payer.
type CheckoutIntent struct {
	SessionID string    `json:"sessionId"`
	CourseID  string    `json:"courseId"`
	UserEmail string    `json:"userEmail"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}

// Matches reports whether courseID and email equal the ones issued at checkout.
func (i CheckoutIntent) Matches(courseID, email string) bool {
	return i.CourseID == courseID && i.UserEmail == email
}

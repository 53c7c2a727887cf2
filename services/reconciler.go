package services

import (
	"context"
	"errors"

	"coursemaster/logger"
	"coursemaster/models"
	"coursemaster/payment"
	"coursemaster/store"
	"coursemaster/utils"
)

// Reconciler applies verified payment events to enrollment state. A given
// (user, course) pair moves NotEnrolled -> Enrolled at most once, however often
// the provider redelivers.
type Reconciler struct {
	store  store.Store
	mailer utils.Mailer
	strict bool
	log    *logger.Logger
}

// NewReconciler builds a Reconciler. With strict set, events whose session has
// no locally recorded Checkout Intent are not applied.
func NewReconciler(st store.Store, mailer utils.Mailer, strict bool, log *logger.Logger) *Reconciler {
	return &Reconciler{store: st, mailer: mailer, strict: strict, log: log}
}

// Reconcile never returns an error; the outcome says what, if anything,
// changed. EnrollNoopStoreFailure is the only outcome worth a redelivery.
func (r *Reconciler) Reconcile(ctx context.Context, ev *payment.Event) models.EnrollOutcome {
	if ev.Type != payment.EventCheckoutSessionCompleted {
		r.log.Debug("Ignoring webhook event", "eventId", ev.ID, "type", ev.Type)
		return models.EnrollNoopIgnoredType
	}

	session, err := payment.DecodeCheckoutSession(ev)
	if err != nil {
		r.log.Warn("Undecodable checkout session", "eventId", ev.ID, "error", err)
		return models.EnrollNoopInvalidMetadata
	}
	courseID := session.Metadata[payment.MetadataCourseID]
	email := session.Metadata[payment.MetadataUserEmail]
	if courseID == "" || email == "" || !r.store.ValidID(courseID) {
		r.log.Warn("Checkout session has invalid metadata",
			"eventId", ev.ID, "sessionId", session.ID, "courseId", courseID, "userEmail", email)
		return models.EnrollNoopInvalidMetadata
	}

	if outcome, ok := r.checkIntent(ctx, session.ID, courseID, email); !ok {
		return outcome
	}

	outcome, err := r.store.AddPurchasedCourse(ctx, email, courseID)
	if err != nil {
		r.log.Error("Failed to add purchased course", "courseId", courseID, "email", email, "error", err)
		return models.EnrollNoopStoreFailure
	}

	switch outcome {
	case models.EnrollApplied:
		r.log.Info("Added course to user", "courseId", courseID, "email", email, "sessionId", session.ID)
		r.notify(ctx, email, courseID)
	case models.EnrollNoopNotFound:
		r.log.Warn("Paid checkout for unknown user", "courseId", courseID, "email", email, "sessionId", session.ID)
	default:
		r.log.Info("Enrollment already present", "courseId", courseID, "email", email, "outcome", outcome)
	}
	return outcome
}

// checkIntent compares the event metadata with the intent recorded at
// checkout. ok is false when the event must not be applied.
func (r *Reconciler) checkIntent(ctx context.Context, sessionID, courseID, email string) (models.EnrollOutcome, bool) {
	intent, err := r.store.FindCheckoutIntent(ctx, sessionID)
	switch {
	case err == nil:
		if !intent.Matches(courseID, email) {
			r.log.Warn("Checkout metadata does not match recorded intent",
				"sessionId", sessionID, "courseId", courseID, "email", email,
				"intentCourseId", intent.CourseID, "intentEmail", intent.UserEmail)
			return models.EnrollNoopIntentMismatch, false
		}
		return "", true
	case errors.Is(err, store.ErrNotFound):
		if r.strict {
			r.log.Warn("No checkout intent recorded for session", "sessionId", sessionID)
			return models.EnrollNoopIntentMismatch, false
		}
		return "", true
	default:
		r.log.Error("Failed to load checkout intent", "sessionId", sessionID, "error", err)
		return models.EnrollNoopStoreFailure, false
	}
}

func (r *Reconciler) notify(ctx context.Context, email, courseID string) {
	user, err := r.store.FindUserByEmail(ctx, email)
	if err != nil {
		r.log.Warn("Skipping enrollment email", "email", email, "error", err)
		return
	}
	title := "your course"
	if course, err := r.store.FindCourseByID(ctx, courseID); err == nil {
		title = course.Title
	}
	r.mailer.SendEnrollmentEmail(user.Email, user.Name, title)
}

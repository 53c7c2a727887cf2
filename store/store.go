// Package store defines the Record Store consumed by the services. Every
// mutation that carries an invariant (one enrollment per course, set-like
// module completion, one MCQ result per question) is a single atomic
// operation in the backing database; callers never read-modify-write.
package store

import (
	"context"
	"errors"

	"coursemaster/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

type UserStore interface {
	// CreateUser inserts u and sets u.ID. Returns ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, email string, update models.ProfileUpdate) error
	FindStudentsForCourse(ctx context.Context, courseID string) ([]models.User, error)
}

type CourseStore interface {
	// ValidID reports whether id is a well-formed key for this backend.
	ValidID(id string) bool
	CreateCourse(ctx context.Context, c *models.Course) error
	FindCourseByID(ctx context.Context, id string) (*models.Course, error)
	FindCourses(ctx context.Context, q models.CourseQuery) ([]models.Course, int64, error)
}

type EnrollmentStore interface {
	// AddPurchasedCourse adds {courseID, completedModules: {}} unless an entry
	// for courseID already exists. Never resets existing progress.
	AddPurchasedCourse(ctx context.Context, email, courseID string) (models.EnrollOutcome, error)
	SaveCheckoutIntent(ctx context.Context, intent models.CheckoutIntent) error
	FindCheckoutIntent(ctx context.Context, sessionID string) (*models.CheckoutIntent, error)
}

type ProgressStore interface {
	CompleteModule(ctx context.Context, email, courseID string, moduleIndex int) (models.CompletionOutcome, error)
	// SetAssignmentMark upserts; the last write wins. Returns ErrNotFound when
	// the user does not exist.
	SetAssignmentMark(ctx context.Context, email, courseID string, milestoneIndex, moduleIndex int, mark float64) error
	// SaveMcqResult replaces any result for the same question triple. Returns
	// ErrNotFound when the user does not exist.
	SaveMcqResult(ctx context.Context, email string, result models.McqResult) error
}

type SubmissionStore interface {
	CreateSubmission(ctx context.Context, s *models.AssignmentSubmission) error
	FindSubmission(ctx context.Context, key models.SubmissionKey, email string) (*models.AssignmentSubmission, error)
	FindSubmissions(ctx context.Context, key models.SubmissionKey) ([]models.AssignmentSubmission, error)
	FindSubmissionsByCourse(ctx context.Context) ([]models.CourseSubmissions, error)
}

type Store interface {
	UserStore
	CourseStore
	EnrollmentStore
	ProgressStore
	SubmissionStore
	Close(ctx context.Context) error
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/models"
	"coursemaster/store"
)

type AssignmentService struct {
	store store.Store
	log   *logger.Logger
}

func NewAssignmentService(st store.Store, log *logger.Logger) *AssignmentService {
	return &AssignmentService{store: st, log: log}
}

type SubmissionInput struct {
	Key            models.SubmissionKey
	SubmissionText string
}

func (s *AssignmentService) Submit(ctx context.Context, email string, in SubmissionInput) (*models.AssignmentSubmission, error) {
	if !s.store.ValidID(in.Key.CourseID) {
		return nil, apperr.InvalidInput("Invalid course ID")
	}
	if strings.TrimSpace(in.SubmissionText) == "" {
		return nil, apperr.InvalidInput("Submission text is required")
	}

	name := ""
	if user, err := s.store.FindUserByEmail(ctx, email); err == nil {
		name = user.Name
	}

	sub := &models.AssignmentSubmission{
		CourseID:       in.Key.CourseID,
		MilestoneIndex: in.Key.MilestoneIndex,
		ModuleIndex:    in.Key.ModuleIndex,
		StudentEmail:   email,
		StudentName:    name,
		SubmissionText: in.SubmissionText,
		SubmittedAt:    time.Now(),
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		s.log.Error("Assignment Submission Error", "email", email, "courseId", in.Key.CourseID, "error", err)
		return nil, apperr.Upstream("Failed to submit assignment", err)
	}
	return sub, nil
}

// MySubmission returns the caller's latest submission for a module, or nil
// when there is none.
func (s *AssignmentService) MySubmission(ctx context.Context, key models.SubmissionKey, email string) (*models.AssignmentSubmission, error) {
	if !s.store.ValidID(key.CourseID) {
		return nil, apperr.InvalidInput("Invalid course ID")
	}
	sub, err := s.store.FindSubmission(ctx, key, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		s.log.Error("Fetch Submission Error", "email", email, "error", err)
		return nil, apperr.Upstream("Failed to fetch submission", err)
	}
	return sub, nil
}

func (s *AssignmentService) ModuleSubmissions(ctx context.Context, key models.SubmissionKey) ([]models.AssignmentSubmission, error) {
	if !s.store.ValidID(key.CourseID) {
		return nil, apperr.InvalidInput("Invalid course ID")
	}
	subs, err := s.store.FindSubmissions(ctx, key)
	if err != nil {
		s.log.Error("Fetch all submissions error", "courseId", key.CourseID, "error", err)
		return nil, apperr.Upstream("Failed to fetch submissions", err)
	}
	return subs, nil
}

func (s *AssignmentService) CoursesWithSubmissions(ctx context.Context) ([]models.CourseSubmissions, error) {
	groups, err := s.store.FindSubmissionsByCourse(ctx)
	if err != nil {
		s.log.Error("Fetch all courses error", "error", err)
		return nil, apperr.Upstream("Failed to fetch courses", err)
	}
	return groups, nil
}

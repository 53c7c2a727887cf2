package services

import (
	"context"
	"errors"
	"time"

	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/models"
	"coursemaster/store"
)

// ProgressService records learner progress. Callers must already have checked
// that the acting identity owns email.
type ProgressService struct {
	store store.Store
	log   *logger.Logger
}

func NewProgressService(st store.Store, log *logger.Logger) *ProgressService {
	return &ProgressService{store: st, log: log}
}

func (s *ProgressService) CompleteModule(ctx context.Context, email, courseID string, moduleIndex int) (models.CompletionOutcome, error) {
	if !s.store.ValidID(courseID) {
		return "", apperr.InvalidInput("Invalid course ID")
	}
	if moduleIndex < 0 {
		return "", apperr.InvalidInput("moduleIndex must not be negative")
	}

	outcome, err := s.store.CompleteModule(ctx, email, courseID, moduleIndex)
	if err != nil {
		s.log.Error("Failed to update module", "email", email, "courseId", courseID, "moduleIndex", moduleIndex, "error", err)
		return "", apperr.Upstream("Failed to update module", err)
	}
	return outcome, nil
}

func (s *ProgressService) SetAssignmentMark(ctx context.Context, email, courseID string, milestoneIndex, moduleIndex int, mark float64) error {
	if !s.store.ValidID(courseID) {
		return apperr.InvalidInput("Invalid course ID")
	}
	if milestoneIndex < 0 || moduleIndex < 0 {
		return apperr.InvalidInput("Indexes must not be negative")
	}

	if err := s.store.SetAssignmentMark(ctx, email, courseID, milestoneIndex, moduleIndex, mark); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		s.log.Error("Failed to save mark", "email", email, "courseId", courseID, "error", err)
		return apperr.Upstream("Failed to save mark", err)
	}
	return nil
}

type McqInput struct {
	CourseID      string
	ModuleIndex   int
	QuestionIndex int
	IsCorrect     bool
}

// SaveMcqResult keeps only the latest answer per (course, module, question).
func (s *ProgressService) SaveMcqResult(ctx context.Context, email string, in McqInput) error {
	if in.CourseID == "" {
		return apperr.InvalidInput("courseId, moduleIndex and questionIndex are required")
	}

	err := s.store.SaveMcqResult(ctx, email, models.McqResult{
		CourseID:      in.CourseID,
		ModuleIndex:   in.ModuleIndex,
		QuestionIndex: in.QuestionIndex,
		IsCorrect:     in.IsCorrect,
		SavedAt:       time.Now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		s.log.Error("Save MCQ Error", "email", email, "courseId", in.CourseID, "error", err)
		return apperr.Upstream("Failed to save MCQ result", err)
	}
	return nil
}

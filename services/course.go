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

const (
	defaultPage  = 1
	defaultLimit = 6
)

type CourseService struct {
	store store.Store
	log   *logger.Logger
}

func NewCourseService(st store.Store, log *logger.Logger) *CourseService {
	return &CourseService{store: st, log: log}
}

type CourseInput struct {
	Title       string
	Description string
	Instructor  string
	Price       float64
	Category    string
	Tags        []string
	Image       string
	Syllabus    string
	Milestones  []models.Milestone
}

// Create validates the course structure once and stores it.
func (s *CourseService) Create(ctx context.Context, in CourseInput, createdBy string) (*models.Course, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.InvalidInput("Title is required")
	}
	if in.Price < 0 {
		return nil, apperr.InvalidInput("Price cannot be negative")
	}
	if err := models.ValidateMilestones(in.Milestones); err != nil {
		return nil, apperr.InvalidInput(err.Error())
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	course := &models.Course{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Instructor:  in.Instructor,
		Price:       in.Price,
		Category:    in.Category,
		Tags:        tags,
		Image:       in.Image,
		Syllabus:    in.Syllabus,
		Milestones:  in.Milestones,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateCourse(ctx, course); err != nil {
		s.log.Error("Create course failed", "title", course.Title, "error", err)
		return nil, apperr.Upstream("Failed to create course", err)
	}
	return course, nil
}

// List returns one catalog page and the total page count.
func (s *CourseService) List(ctx context.Context, q models.CourseQuery) ([]models.Course, int64, error) {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}

	courses, total, err := s.store.FindCourses(ctx, q)
	if err != nil {
		s.log.Error("Fetch courses failed", "error", err)
		return nil, 0, apperr.Upstream("Failed to fetch courses", err)
	}
	return courses, q.TotalPages(total), nil
}

func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	if !s.store.ValidID(id) {
		return nil, apperr.InvalidInput("Invalid course ID")
	}
	course, err := s.store.FindCourseByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Course not found")
		}
		s.log.Error("Fetch course failed", "courseId", id, "error", err)
		return nil, apperr.Upstream("Failed to fetch course", err)
	}
	return course, nil
}

// Students lists users enrolled in the course; passwords are never populated.
func (s *CourseService) Students(ctx context.Context, courseID string) ([]models.User, error) {
	if !s.store.ValidID(courseID) {
		return nil, apperr.InvalidInput("Invalid course ID")
	}
	students, err := s.store.FindStudentsForCourse(ctx, courseID)
	if err != nil {
		s.log.Error("Fetch students failed", "courseId", courseID, "error", err)
		return nil, apperr.Upstream("Failed to fetch", err)
	}
	for i := range students {
		students[i].Password = ""
	}
	return students, nil
}

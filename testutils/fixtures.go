package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"coursemaster/models"
	"coursemaster/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CreateTestUser creates a user with a unique email and the password "password".
func CreateTestUser(t *testing.T, st store.Store, opts ...UserOption) *models.User {
	t.Helper()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	u := &models.User{
		Name:             "Test Student",
		Email:            fmt.Sprintf("test_%s@example.com", uuid.NewString()[:8]),
		Password:         string(hash),
		Role:             models.RoleUser,
		Status:           "active",
		PurchasedCourses: []models.PurchasedCourse{},
		CreatedAt:        time.Now(),
	}
	for _, opt := range opts {
		opt(u)
	}

	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// UserOption configures test user
type UserOption func(*models.User)

func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

func WithRole(role models.Role) UserOption {
	return func(u *models.User) {
		u.Role = role
	}
}

// WithPassword sets the password (will be hashed)
func WithPassword(password string) UserOption {
	return func(u *models.User) {
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		u.Password = string(hash)
	}
}

// CreateTestCourse creates a valid two-milestone course.
func CreateTestCourse(t *testing.T, st store.Store, opts ...CourseOption) *models.Course {
	t.Helper()

	c := &models.Course{
		Title:       "Go Fundamentals",
		Description: "Learn Go from scratch",
		Instructor:  "Rob",
		Price:       19.99,
		Category:    "programming",
		Tags:        []string{"go", "backend"},
		Milestones:  TestMilestones(),
		CreatedBy:   "admin@example.com",
		CreatedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := st.CreateCourse(context.Background(), c); err != nil {
		t.Fatalf("Failed to create test course: %v", err)
	}
	return c
}

type CourseOption func(*models.Course)

func WithTitle(title string) CourseOption {
	return func(c *models.Course) {
		c.Title = title
	}
}

func WithInstructor(instructor string) CourseOption {
	return func(c *models.Course) {
		c.Instructor = instructor
	}
}

func WithPrice(price float64) CourseOption {
	return func(c *models.Course) {
		c.Price = price
	}
}

func WithCategory(category string) CourseOption {
	return func(c *models.Course) {
		c.Category = category
	}
}

func WithTags(tags ...string) CourseOption {
	return func(c *models.Course) {
		c.Tags = tags
	}
}

// TestMilestones covers every module variant.
func TestMilestones() []models.Milestone {
	return []models.Milestone{
		{
			Title: "Basics",
			Modules: []models.Module{
				{Title: "Intro", ModuleType: models.ModuleText, Content: "Hello, Go"},
				{Title: "Tour", ModuleType: models.ModuleVideo, VideoURL: "https://video.example.com/tour"},
			},
		},
		{
			Title: "Practice",
			Modules: []models.Module{
				{Title: "Exercise", ModuleType: models.ModuleAssignment, Assignment: "Write a CLI"},
				{Title: "Quiz", ModuleType: models.ModuleMcq, Mcqs: []models.Mcq{
					{Question: "Zero value of int?", Options: []string{"0", "nil"}, Answer: "0"},
				}},
			},
		},
	}
}

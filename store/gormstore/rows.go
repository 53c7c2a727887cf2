package gormstore

import (
	"time"

	"coursemaster/models"

	"gorm.io/datatypes"
)

type userRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	Email     string `gorm:"uniqueIndex;size:255;not null"`
	Name      string `gorm:"default:''"`
	Phone     string `gorm:"default:''"`
	Avatar    string `gorm:"default:''"`
	Password  string `gorm:"not null"`
	Role      string `gorm:"size:16;default:'user'"`
	Status    string `gorm:"size:32;default:'active'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) toModel() models.User {
	return models.User{
		ID:               r.ID,
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		Avatar:           r.Avatar,
		Password:         r.Password,
		Role:             models.Role(r.Role),
		Status:           r.Status,
		PurchasedCourses: []models.PurchasedCourse{},
		CreatedAt:        r.CreatedAt,
	}
}

type courseRow struct {
	ID          string  `gorm:"primaryKey;size:36"`
	Title       string  `gorm:"not null"`
	Description string  `gorm:"type:text"`
	Instructor  string  `gorm:"index"`
	Price       float64 `gorm:"index;default:0"`
	Category    string  `gorm:"index"`
	Image       string
	Syllabus    string `gorm:"type:text"`
	Milestones  datatypes.JSONSlice[models.Milestone]
	Tags        []courseTagRow `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	CreatedBy   string         `gorm:"size:255"`
	CreatedAt   time.Time
}

func (courseRow) TableName() string { return "courses" }

func courseRowFromModel(c *models.Course) courseRow {
	tags := make([]courseTagRow, 0, len(c.Tags))
	seen := make(map[string]struct{}, len(c.Tags))
	for _, t := range c.Tags {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, courseTagRow{CourseID: c.ID, Tag: t})
	}
	return courseRow{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Instructor:  c.Instructor,
		Price:       c.Price,
		Category:    c.Category,
		Image:       c.Image,
		Syllabus:    c.Syllabus,
		Milestones:  datatypes.JSONSlice[models.Milestone](c.Milestones),
		Tags:        tags,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
	}
}

func (r courseRow) toModel() models.Course {
	tags := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, t.Tag)
	}
	milestones := []models.Milestone(r.Milestones)
	if milestones == nil {
		milestones = []models.Milestone{}
	}
	return models.Course{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Instructor:  r.Instructor,
		Price:       r.Price,
		Category:    r.Category,
		Tags:        tags,
		Image:       r.Image,
		Syllabus:    r.Syllabus,
		Milestones:  milestones,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
	}
}

type courseTagRow struct {
	CourseID string `gorm:"primaryKey;size:36"`
	Tag      string `gorm:"primaryKey;size:100;index"`
}

func (courseTagRow) TableName() string { return "course_tags" }

// enrollmentRow is one purchasedCourses entry; the unique index is what makes
// duplicate webhook deliveries collapse into a single enrollment.
type enrollmentRow struct {
	ID        uint   `gorm:"primaryKey"`
	UserEmail string `gorm:"size:255;not null;uniqueIndex:idx_enrollments_user_course"`
	CourseID  string `gorm:"size:36;not null;uniqueIndex:idx_enrollments_user_course;index"`
	CreatedAt time.Time
}

func (enrollmentRow) TableName() string { return "enrollments" }

type moduleCompletionRow struct {
	ID          uint   `gorm:"primaryKey"`
	UserEmail   string `gorm:"size:255;not null;uniqueIndex:idx_completions_user_course_module"`
	CourseID    string `gorm:"size:36;not null;uniqueIndex:idx_completions_user_course_module"`
	ModuleIndex int    `gorm:"not null;uniqueIndex:idx_completions_user_course_module"`
	CreatedAt   time.Time
}

func (moduleCompletionRow) TableName() string { return "module_completions" }

type assignmentMarkRow struct {
	ID             uint    `gorm:"primaryKey"`
	UserEmail      string  `gorm:"size:255;not null;uniqueIndex:idx_marks_user_module"`
	CourseID       string  `gorm:"size:36;not null;uniqueIndex:idx_marks_user_module"`
	MilestoneIndex int     `gorm:"not null;uniqueIndex:idx_marks_user_module"`
	ModuleIndex    int     `gorm:"not null;uniqueIndex:idx_marks_user_module"`
	Mark           float64 `gorm:"not null"`
	UpdatedAt      time.Time
}

func (assignmentMarkRow) TableName() string { return "assignment_marks" }

type mcqResultRow struct {
	ID            uint   `gorm:"primaryKey"`
	UserEmail     string `gorm:"size:255;not null;uniqueIndex:idx_mcq_user_question"`
	CourseID      string `gorm:"size:64;not null;uniqueIndex:idx_mcq_user_question"`
	ModuleIndex   int    `gorm:"not null;uniqueIndex:idx_mcq_user_question"`
	QuestionIndex int    `gorm:"not null;uniqueIndex:idx_mcq_user_question"`
	IsCorrect     bool   `gorm:"not null;default:false"`
	SavedAt       time.Time
}

func (mcqResultRow) TableName() string { return "mcq_results" }

type checkoutIntentRow struct {
	SessionID string `gorm:"primaryKey;size:255"`
	CourseID  string `gorm:"size:36;not null"`
	UserEmail string `gorm:"size:255;not null;index"`
	Amount    int64  `gorm:"not null"`
	Currency  string `gorm:"size:8"`
	CreatedAt time.Time
}

func (checkoutIntentRow) TableName() string { return "checkout_intents" }

func (r checkoutIntentRow) toModel() models.CheckoutIntent {
	return models.CheckoutIntent{
		SessionID: r.SessionID,
		CourseID:  r.CourseID,
		UserEmail: r.UserEmail,
		Amount:    r.Amount,
		Currency:  r.Currency,
		CreatedAt: r.CreatedAt,
	}
}

type submissionRow struct {
	ID             string `gorm:"primaryKey;size:36"`
	CourseID       string `gorm:"size:36;not null;index:idx_submissions_module"`
	MilestoneIndex int    `gorm:"index:idx_submissions_module"`
	ModuleIndex    int    `gorm:"index:idx_submissions_module"`
	StudentEmail   string `gorm:"size:255;index"`
	StudentName    string
	SubmissionText string `gorm:"type:text"`
	SubmittedAt    time.Time
}

func (submissionRow) TableName() string { return "assignment_submissions" }

func (r submissionRow) toModel() models.AssignmentSubmission {
	return models.AssignmentSubmission{
		ID:             r.ID,
		CourseID:       r.CourseID,
		MilestoneIndex: r.MilestoneIndex,
		ModuleIndex:    r.ModuleIndex,
		StudentEmail:   r.StudentEmail,
		StudentName:    r.StudentName,
		SubmissionText: r.SubmissionText,
		SubmittedAt:    r.SubmittedAt,
	}
}

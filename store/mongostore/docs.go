package mongostore

import (
	"time"

	"coursemaster/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDoc struct {
	ID               primitive.ObjectID     `bson:"_id,omitempty"`
	Name             string                 `bson:"name"`
	Email            string                 `bson:"email"`
	Phone            string                 `bson:"phone"`
	Avatar           string                 `bson:"avatar"`
	Password         string                 `bson:"password,omitempty"`
	Roles            string                 `bson:"roles"`
	Status           string                 `bson:"status"`
	PurchasedCourses []purchasedCourseDoc   `bson:"purchasedCourses"`
	AssignmentMarks  models.AssignmentMarks `bson:"assignmentMarks,omitempty"`
	McqResults       []mcqResultDoc         `bson:"mcqResults,omitempty"`
	CreatedAt        time.Time              `bson:"createdAt"`
}

type purchasedCourseDoc struct {
	CourseID         primitive.ObjectID `bson:"courseId"`
	CompletedModules []int              `bson:"completedModules"`
}

type mcqResultDoc struct {
	CourseID      string    `bson:"courseId"`
	ModuleIndex   int       `bson:"moduleIndex"`
	QuestionIndex int       `bson:"questionIndex"`
	IsCorrect     bool      `bson:"isCorrect"`
	SavedAt       time.Time `bson:"savedAt"`
}

func (d userDoc) toModel() models.User {
	u := models.User{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		Email:            d.Email,
		Phone:            d.Phone,
		Avatar:           d.Avatar,
		Password:         d.Password,
		Role:             models.Role(d.Roles),
		Status:           d.Status,
		PurchasedCourses: make([]models.PurchasedCourse, 0, len(d.PurchasedCourses)),
		CreatedAt:        d.CreatedAt,
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	for _, pc := range d.PurchasedCourses {
		modules := pc.CompletedModules
		if modules == nil {
			modules = []int{}
		}
		u.PurchasedCourses = append(u.PurchasedCourses, models.PurchasedCourse{
			CourseID:         pc.CourseID.Hex(),
			CompletedModules: modules,
		})
	}
	if len(d.AssignmentMarks) > 0 {
		u.AssignmentMarks = d.AssignmentMarks
	}
	for _, r := range d.McqResults {
		u.McqResults = append(u.McqResults, models.McqResult{
			CourseID:      r.CourseID,
			ModuleIndex:   r.ModuleIndex,
			QuestionIndex: r.QuestionIndex,
			IsCorrect:     r.IsCorrect,
			SavedAt:       r.SavedAt,
		})
	}
	return u
}

type courseDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Instructor  string             `bson:"instructor"`
	Price       float64            `bson:"price"`
	Category    string             `bson:"category"`
	Tags        []string           `bson:"tags"`
	Image       string             `bson:"image"`
	Syllabus    string             `bson:"syllabus"`
	Milestones  []models.Milestone `bson:"milestones"`
	CreatedBy   string             `bson:"createdBy"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d courseDoc) toModel() models.Course {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	milestones := d.Milestones
	if milestones == nil {
		milestones = []models.Milestone{}
	}
	return models.Course{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Instructor:  d.Instructor,
		Price:       d.Price,
		Category:    d.Category,
		Tags:        tags,
		Image:       d.Image,
		Syllabus:    d.Syllabus,
		Milestones:  milestones,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt,
	}
}

type intentDoc struct {
	SessionID string    `bson:"_id"`
	CourseID  string    `bson:"courseId"`
	UserEmail string    `bson:"userEmail"`
	Amount    int64     `bson:"amount"`
	Currency  string    `bson:"currency"`
	CreatedAt time.Time `bson:"createdAt"`
}

type submissionDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	CourseID       primitive.ObjectID `bson:"courseId"`
	MilestoneIndex int                `bson:"milestoneIndex"`
	ModuleIndex    int                `bson:"moduleIndex"`
	StudentEmail   string             `bson:"studentEmail"`
	StudentName    string             `bson:"studentName"`
	SubmissionText string             `bson:"submissionText"`
	SubmittedAt    time.Time          `bson:"submittedAt"`
}

func (d submissionDoc) toModel() models.AssignmentSubmission {
	return models.AssignmentSubmission{
		ID:             d.ID.Hex(),
		CourseID:       d.CourseID.Hex(),
		MilestoneIndex: d.MilestoneIndex,
		ModuleIndex:    d.ModuleIndex,
		StudentEmail:   d.StudentEmail,
		StudentName:    d.StudentName,
		SubmissionText: d.SubmissionText,
		SubmittedAt:    d.SubmittedAt,
	}
}

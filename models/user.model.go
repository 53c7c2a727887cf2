package models

import (
	"strconv"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	Avatar           string            `json:"avatar"`
	Password         string            `json:"-"`
	Role             Role              `json:"roles"`
	Status           string            `json:"status"`
	PurchasedCourses []PurchasedCourse `json:"purchasedCourses"`
	AssignmentMarks  AssignmentMarks   `json:"assignmentMarks,omitempty"`
	McqResults       []McqResult       `json:"mcqResults,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Enrollment returns the purchased-course entry for courseID, if any.
func (u *User) Enrollment(courseID string) (*PurchasedCourse, bool) {
	for i := range u.PurchasedCourses {
		if u.PurchasedCourses[i].CourseID == courseID {
			return &u.PurchasedCourses[i], true
		}
	}
	return nil, false
}

// PurchasedCourse is one enrollment; CompletedModules is a set of module indexes.
type PurchasedCourse struct {
	CourseID         string `json:"courseId"`
	CompletedModules []int  `json:"completedModules"`
}

// AssignmentMarks is keyed courseId -> milestoneIndex -> moduleIndex.
type AssignmentMarks map[string]map[string]map[string]float64

func (a AssignmentMarks) Set(courseID string, milestoneIndex, moduleIndex int, mark float64) {
	milestones, ok := a[courseID]
	if !ok {
		milestones = make(map[string]map[string]float64)
		a[courseID] = milestones
	}
	ms := strconv.Itoa(milestoneIndex)
	modules, ok := milestones[ms]
	if !ok {
		modules = make(map[string]float64)
		milestones[ms] = modules
	}
	modules[strconv.Itoa(moduleIndex)] = mark
}

func (a AssignmentMarks) Get(courseID string, milestoneIndex, moduleIndex int) (float64, bool) {
	mark, ok := a[courseID][strconv.Itoa(milestoneIndex)][strconv.Itoa(moduleIndex)]
	return mark, ok
}

type McqResult struct {
	CourseID      string    `json:"courseId"`
	ModuleIndex   int       `json:"moduleIndex"`
	QuestionIndex int       `json:"questionIndex"`
	IsCorrect     bool      `json:"isCorrect"`
	SavedAt       time.Time `json:"savedAt"`
}

// ProfileUpdate holds optional profile fields; empty values are left untouched.
type ProfileUpdate struct {
	Name   string
	Phone  string
	Avatar string
}

func (p ProfileUpdate) Empty() bool {
	return p.Name == "" && p.Phone == "" && p.Avatar == ""
}

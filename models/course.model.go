package models

import (
	"errors"
	"math"
	"strings"
	"time"
)

type ModuleType string

const (
	ModuleText       ModuleType = "text"
	ModuleVideo      ModuleType = "video"
	ModuleAssignment ModuleType = "assignment"
	ModuleMcq        ModuleType = "mcq"
)

type Mcq struct {
	Question string   `json:"question" bson:"question"`
	Options  []string `json:"options" bson:"options"`
	Answer   string   `json:"answer" bson:"answer"`
}

// Module is a tagged union on ModuleType; only the payload field of its
// variant is meaningful.
type Module struct {
	Title      string     `json:"title" bson:"title"`
	ModuleType ModuleType `json:"moduleType" bson:"moduleType"`
	Content    string     `json:"content,omitempty" bson:"content,omitempty"`
	VideoURL   string     `json:"videoUrl,omitempty" bson:"videoUrl,omitempty"`
	Assignment string     `json:"assignment,omitempty" bson:"assignment,omitempty"`
	Mcqs       []Mcq      `json:"mcqs,omitempty" bson:"mcqs,omitempty"`
}

// Validate checks the payload required by the module's variant.
func (m Module) Validate() error {
	switch m.ModuleType {
	case "":
		return errors.New("Each module must include moduleType")
	case ModuleText:
		if strings.TrimSpace(m.Content) == "" {
			return errors.New("Text module requires content")
		}
	case ModuleVideo:
		if strings.TrimSpace(m.VideoURL) == "" {
			return errors.New("Video module requires videoUrl")
		}
	case ModuleAssignment:
		if strings.TrimSpace(m.Assignment) == "" {
			return errors.New("Assignment module requires assignment text")
		}
	case ModuleMcq:
		if len(m.Mcqs) == 0 {
			return errors.New("MCQ module must have at least 1 question")
		}
	default:
		return errors.New("Unknown moduleType: " + string(m.ModuleType))
	}
	return nil
}

type Milestone struct {
	Title   string   `json:"title" bson:"title"`
	Modules []Module `json:"modules" bson:"modules"`
}

// ValidateMilestones enforces the course structure once, at creation time.
func ValidateMilestones(milestones []Milestone) error {
	if len(milestones) == 0 {
		return errors.New("At least one milestone is required")
	}
	for _, ms := range milestones {
		if strings.TrimSpace(ms.Title) == "" {
			return errors.New("Every milestone must have a title")
		}
		if len(ms.Modules) == 0 {
			return errors.New("Every milestone must contain modules")
		}
		for _, mod := range ms.Modules {
			if err := mod.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

type Course struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Instructor  string      `json:"instructor"`
	Price       float64     `json:"price"`
	Category    string      `json:"category"`
	Tags        []string    `json:"tags"`
	Image       string      `json:"image"`
	Syllabus    string      `json:"syllabus"`
	Milestones  []Milestone `json:"milestones"`
	CreatedBy   string      `json:"createdBy"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// MinorUnitAmount is the price in the smallest currency unit (cents).
func (c Course) MinorUnitAmount() int64 {
	if c.Price <= 0 {
		return 0
	}
	return int64(math.Round(c.Price * 100))
}

// CourseSort orders catalog listings.
type CourseSort string

const (
	SortPriceAsc  CourseSort = "price_asc"
	SortPriceDesc CourseSort = "price_desc"
)

// CourseQuery filters and pages the catalog.
type CourseQuery struct {
	Search   string
	Category string
	Tags     []string
	Sort     CourseSort
	Page     int
	Limit    int
}

func (q CourseQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// TotalPages rounds up total/limit.
func (q CourseQuery) TotalPages(total int64) int64 {
	if q.Limit <= 0 {
		return 0
	}
	return (total + int64(q.Limit) - 1) / int64(q.Limit)
}

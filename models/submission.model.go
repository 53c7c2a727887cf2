package models

import "time"

type AssignmentSubmission struct {
	ID             string    `json:"id"`
	CourseID       string    `json:"courseId"`
	MilestoneIndex int       `json:"milestoneIndex"`
	ModuleIndex    int       `json:"moduleIndex"`
	StudentEmail   string    `json:"studentEmail"`
	StudentName    string    `json:"studentName"`
	SubmissionText string    `json:"submissionText"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// SubmissionKey addresses one assignment module of a course.
type SubmissionKey struct {
	CourseID       string
	MilestoneIndex int
	ModuleIndex    int
}

// CourseSubmissions groups submissions under their course for admin review.
type CourseSubmissions struct {
	CourseID    string                 `json:"courseId"`
	CourseTitle string                 `json:"courseTitle"`
	Submissions []AssignmentSubmission `json:"submissions"`
}

package models

import (
	"time"

	"github.com/lib/pq"
)

// Assignment is coursework a teacher sets for a subject.
type Assignment struct {
	ID          string         `db:"id" json:"id"`
	SchoolID    string         `db:"school_id" json:"schoolId"`
	SubjectID   string         `db:"subject_id" json:"subjectId"`
	TeacherID   string         `db:"teacher_id" json:"teacherId"`
	Title       string         `db:"title" json:"title"`
	Description *string        `db:"description" json:"description,omitempty"`
	DueDate     time.Time      `db:"due_date" json:"dueDate"`
	MaxScore    float64        `db:"max_score" json:"maxScore"`
	Options     pq.StringArray `db:"options" json:"options,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	SchoolID  string
	SubjectID string
	TeacherID string
	Page
}

// Submission is a student's answer to an assignment.
type Submission struct {
	ID             string    `db:"id" json:"id"`
	AssignmentID   string    `db:"assignment_id" json:"assignmentId"`
	StudentID      string    `db:"student_id" json:"studentId"`
	Content        string    `db:"content" json:"content"`
	AttachmentPath *string   `db:"attachment_path" json:"-"`
	Late           bool      `db:"late" json:"late"`
	SubmittedAt    time.Time `db:"submitted_at" json:"submittedAt"`
}

// Grade records the score a teacher gave a submission.
type Grade struct {
	ID           string    `db:"id" json:"id"`
	AssignmentID string    `db:"assignment_id" json:"assignmentId"`
	StudentID    string    `db:"student_id" json:"studentId"`
	Score        float64   `db:"score" json:"score"`
	Feedback     *string   `db:"feedback" json:"feedback,omitempty"`
	GradedBy     string    `db:"graded_by" json:"gradedBy"`
	GradedAt     time.Time `db:"graded_at" json:"gradedAt"`
}

// StudentGrade joins a grade with its assignment for student views.
type StudentGrade struct {
	Grade
	AssignmentTitle string  `db:"assignment_title" json:"assignmentTitle"`
	MaxScore        float64 `db:"max_score" json:"maxScore"`
}

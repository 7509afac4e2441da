package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-classroom-api/internal/models"
)

const (
	assignmentColumns = `id, school_id, subject_id, teacher_id, title, description, due_date, max_score, options, created_at, updated_at`
	submissionColumns = `id, assignment_id, student_id, content, attachment_path, late, submitted_at`
)

// AssignmentRepository persists assignments, submissions and grades.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns assignments matching the filter ordered by due date.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	page := filter.Page.Normalize()
	conditions := []string{"school_id = $1"}
	args := []interface{}{filter.SchoolID}
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)))
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	query := fmt.Sprintf(`SELECT %s FROM assignments %s ORDER BY due_date ASC LIMIT %d OFFSET %d`, assignmentColumns, where, page.PageSize, page.Offset())
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM assignments `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return assignments, total, nil
}

// FindByID returns an assignment scoped to a school.
func (r *AssignmentRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM assignments WHERE school_id = $1 AND id = $2`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, schoolID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &assignment, nil
}

// Create inserts an assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = models.NewID()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	const query = `INSERT INTO assignments (id, school_id, subject_id, teacher_id, title, description, due_date, max_score, options, created_at, updated_at)
VALUES (:id, :school_id, :subject_id, :teacher_id, :title, :description, :due_date, :max_score, :options, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update stores changed assignment fields.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET title = :title, description = :description, due_date = :due_date, max_score = :max_score, updated_at = :updated_at
WHERE school_id = :school_id AND id = :id`
	res, err := r.db.NamedExecContext(ctx, query, assignment)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return expectAffected(res, "update assignment")
}

// CreateSubmission inserts a submission. A second submission by the same
// student violates a unique constraint.
func (r *AssignmentRepository) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = models.NewID()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO submissions (id, assignment_id, student_id, content, attachment_path, late, submitted_at)
VALUES (:id, :assignment_id, :student_id, :content, :attachment_path, :late, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// FindSubmission returns a submission of an assignment.
func (r *AssignmentRepository) FindSubmission(ctx context.Context, assignmentID, submissionID string) (*models.Submission, error) {
	const query = `SELECT ` + submissionColumns + ` FROM submissions WHERE assignment_id = $1 AND id = $2`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, assignmentID, submissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &submission, nil
}

// FindSubmissionByStudent returns the student's submission for an assignment.
func (r *AssignmentRepository) FindSubmissionByStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	const query = `SELECT ` + submissionColumns + ` FROM submissions WHERE assignment_id = $1 AND student_id = $2`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, assignmentID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student submission: %w", err)
	}
	return &submission, nil
}

// SetAttachment records the stored path of a submission attachment.
func (r *AssignmentRepository) SetAttachment(ctx context.Context, submissionID, path string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE submissions SET attachment_path = $1 WHERE id = $2`, path, submissionID)
	if err != nil {
		return fmt.Errorf("set submission attachment: %w", err)
	}
	return expectAffected(res, "set submission attachment")
}

// UpsertGrade stores the grade for a student's assignment, replacing an earlier one.
func (r *AssignmentRepository) UpsertGrade(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = models.NewID()
	}
	grade.GradedAt = time.Now().UTC()
	const query = `INSERT INTO grades (id, assignment_id, student_id, score, feedback, graded_by, graded_at)
VALUES (:id, :assignment_id, :student_id, :score, :feedback, :graded_by, :graded_at)
ON CONFLICT (assignment_id, student_id) DO UPDATE SET score = EXCLUDED.score, feedback = EXCLUDED.feedback, graded_by = EXCLUDED.graded_by, graded_at = EXCLUDED.graded_at`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// ListGradesByStudent returns a student's grades with assignment context.
func (r *AssignmentRepository) ListGradesByStudent(ctx context.Context, schoolID, studentID string) ([]models.StudentGrade, error) {
	const query = `SELECT g.id, g.assignment_id, g.student_id, g.score, g.feedback, g.graded_by, g.graded_at, a.title AS assignment_title, a.max_score
FROM grades g JOIN assignments a ON a.id = g.assignment_id
WHERE a.school_id = $1 AND g.student_id = $2
ORDER BY g.graded_at DESC`
	var grades []models.StudentGrade
	if err := r.db.SelectContext(ctx, &grades, query, schoolID, studentID); err != nil {
		return nil, fmt.Errorf("list student grades: %w", err)
	}
	return grades, nil
}

package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
)

type gradeRepository interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Assignment, error)
	FindSubmissionByStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error)
	UpsertGrade(ctx context.Context, grade *models.Grade) error
	ListGradesByStudent(ctx context.Context, schoolID, studentID string) ([]models.StudentGrade, error)
}

// GradeService grades submissions and lists student results.
type GradeService struct {
	repo     gradeRepository
	notifier notifier
	logger   *zap.Logger
}

// NewGradeService constructs a grade service.
func NewGradeService(repo gradeRepository, notifier notifier, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, notifier: notifier, logger: logger}
}

// Grade scores a student's submission. Regrading replaces the earlier grade.
func (s *GradeService) Grade(ctx context.Context, actor *models.Identity, req dto.GradeSubmissionRequest) (*models.Grade, error) {
	assignment, err := s.repo.FindByID(ctx, actor.SchoolID, req.Query.ID)
	if err != nil {
		return nil, lookupError(err, "assignment not found", "failed to load assignment")
	}
	if err := canManage(actor, assignment); err != nil {
		return nil, err
	}
	if req.Body.Score > assignment.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("score exceeds the maximum of %g", assignment.MaxScore))
	}

	if _, err := s.repo.FindSubmissionByStudent(ctx, assignment.ID, req.Body.StudentID); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student has not submitted this assignment")
		}
		return nil, appErrors.Internal(err, "failed to load submission")
	}

	grade := &models.Grade{
		AssignmentID: assignment.ID,
		StudentID:    req.Body.StudentID,
		Score:        req.Body.Score,
		Feedback:     req.Body.Feedback,
		GradedBy:     actor.SubjectID,
	}
	if err := s.repo.UpsertGrade(ctx, grade); err != nil {
		return nil, appErrors.Internal(err, "failed to save grade")
	}

	if s.notifier != nil {
		ref := assignment.ID
		s.notifier.Notify(ctx, []string{grade.StudentID}, models.Notification{
			Type:        models.NotificationSubmissionGraded,
			Title:       "Graded: " + assignment.Title,
			Body:        fmt.Sprintf("You scored %g/%g", grade.Score, assignment.MaxScore),
			ReferenceID: &ref,
		})
	}
	return grade, nil
}

// ListMine returns the caller's grades.
func (s *GradeService) ListMine(ctx context.Context, actor *models.Identity) ([]models.StudentGrade, error) {
	grades, err := s.repo.ListGradesByStudent(ctx, actor.SchoolID, actor.SubjectID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list grades")
	}
	if grades == nil {
		grades = []models.StudentGrade{}
	}
	return grades, nil
}

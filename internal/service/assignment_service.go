package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	"github.com/noah-isme/sma-classroom-api/internal/repository"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
	"github.com/noah-isme/sma-classroom-api/pkg/storage"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	CreateSubmission(ctx context.Context, submission *models.Submission) error
	FindSubmission(ctx context.Context, assignmentID, submissionID string) (*models.Submission, error)
	FindSubmissionByStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error)
	SetAttachment(ctx context.Context, submissionID, path string) error
}

type subjectLookup interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Subject, error)
}

type memberDirectory interface {
	UserIDsByRole(ctx context.Context, schoolID string, role models.UserRole) ([]string, error)
}

type attachmentStore interface {
	Save(name string, r io.Reader) (int64, error)
	Delete(name string) error
}

type downloadSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
}

type notifier interface {
	Notify(ctx context.Context, recipients []string, template models.Notification)
}

// AssignmentService handles assignments and student submissions.
type AssignmentService struct {
	repo         assignmentRepository
	subjects     subjectLookup
	members      memberDirectory
	store        attachmentStore
	signer       downloadSigner
	notifier     notifier
	downloadBase string
	logger       *zap.Logger
	now          func() time.Time
}

// AssignmentDeps groups the collaborators of AssignmentService.
type AssignmentDeps struct {
	Repo         assignmentRepository
	Subjects     subjectLookup
	Members      memberDirectory
	Store        attachmentStore
	Signer       downloadSigner
	Notifier     notifier
	DownloadBase string
	Logger       *zap.Logger
}

// NewAssignmentService constructs an assignment service.
func NewAssignmentService(deps AssignmentDeps) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		repo:         deps.Repo,
		subjects:     deps.Subjects,
		members:      deps.Members,
		store:        deps.Store,
		signer:       deps.Signer,
		notifier:     deps.Notifier,
		downloadBase: strings.TrimSuffix(deps.DownloadBase, "/"),
		logger:       logger,
		now:          time.Now,
	}
}

// List returns assignments in the caller's school.
func (s *AssignmentService) List(ctx context.Context, actor *models.Identity, query dto.ListAssignmentsQuery) ([]models.Assignment, models.Page, int, error) {
	page := models.Page{Page: query.Page, PageSize: query.Limit}.Normalize()
	items, total, err := s.repo.List(ctx, models.AssignmentFilter{SchoolID: actor.SchoolID, SubjectID: query.SubjectID, Page: page})
	if err != nil {
		return nil, page, 0, appErrors.Internal(err, "failed to list assignments")
	}
	if items == nil {
		items = []models.Assignment{}
	}
	return items, page, total, nil
}

// Get returns an assignment in the caller's school.
func (s *AssignmentService) Get(ctx context.Context, actor *models.Identity, id string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, actor.SchoolID, id)
	if err != nil {
		return nil, lookupError(err, "assignment not found", "failed to load assignment")
	}
	return assignment, nil
}

// Create sets a new assignment for a subject and notifies the school's students.
func (s *AssignmentService) Create(ctx context.Context, actor *models.Identity, req dto.CreateAssignmentRequest) (*models.Assignment, error) {
	if _, err := s.subjects.FindByID(ctx, actor.SchoolID, req.SubjectID); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "subject does not exist")
		}
		return nil, appErrors.Internal(err, "failed to load subject")
	}

	assignment := &models.Assignment{
		SchoolID:    actor.SchoolID,
		SubjectID:   req.SubjectID,
		TeacherID:   actor.SubjectID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.UTC(),
		MaxScore:    req.MaxScore,
		Options:     req.Options,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Internal(err, "failed to create assignment")
	}

	s.announce(ctx, assignment)
	return assignment, nil
}

// Update changes an assignment. Teachers may only change their own.
func (s *AssignmentService) Update(ctx context.Context, actor *models.Identity, req dto.UpdateAssignmentRequest) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, actor.SchoolID, req.Query.ID)
	if err != nil {
		return nil, lookupError(err, "assignment not found", "failed to load assignment")
	}
	if err := canManage(actor, assignment); err != nil {
		return nil, err
	}

	body := req.Body
	if body.Title != nil {
		assignment.Title = *body.Title
	}
	if body.Description != nil {
		assignment.Description = body.Description
	}
	if body.DueDate != nil {
		assignment.DueDate = body.DueDate.UTC()
	}
	if body.MaxScore != nil {
		assignment.MaxScore = *body.MaxScore
	}

	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, lookupError(err, "assignment not found", "failed to update assignment")
	}
	return assignment, nil
}

// Submit stores a student's answer. Each student submits once; submissions
// after the due date are flagged late.
func (s *AssignmentService) Submit(ctx context.Context, actor *models.Identity, req dto.SubmitAssignmentRequest) (*models.Submission, error) {
	assignment, err := s.repo.FindByID(ctx, actor.SchoolID, req.Query.ID)
	if err != nil {
		return nil, lookupError(err, "assignment not found", "failed to load assignment")
	}

	existing, err := s.repo.FindSubmissionByStudent(ctx, assignment.ID, actor.SubjectID)
	switch {
	case err == nil && existing != nil:
		return nil, appErrors.Clone(appErrors.ErrConflict, "assignment already submitted")
	case err != nil && !isNotFound(err):
		return nil, appErrors.Internal(err, "failed to check submission")
	}

	now := s.now().UTC()
	submission := &models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    actor.SubjectID,
		Content:      req.Body.Content,
		Late:         now.After(assignment.DueDate),
		SubmittedAt:  now,
	}
	if err := s.repo.CreateSubmission(ctx, submission); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "assignment already submitted")
		}
		return nil, appErrors.Internal(err, "failed to create submission")
	}
	return submission, nil
}

// UploadAttachment stores a file for the caller's own submission and returns a
// signed download link.
func (s *AssignmentService) UploadAttachment(ctx context.Context, actor *models.Identity, params dto.SubmissionParams, filename string, r io.Reader) (*dto.SubmissionAttachmentResponse, error) {
	assignment, err := s.repo.FindByID(ctx, actor.SchoolID, params.ID)
	if err != nil {
		return nil, lookupError(err, "assignment not found", "failed to load assignment")
	}
	submission, err := s.repo.FindSubmission(ctx, assignment.ID, params.SubmissionID)
	if err != nil {
		return nil, lookupError(err, "submission not found", "failed to load submission")
	}
	if submission.StudentID != actor.SubjectID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "submission belongs to another student")
	}

	path := fmt.Sprintf("submissions/%s/%s%s", submission.ID, models.NewID(), strings.ToLower(filepath.Ext(filepath.Base(filename))))
	if _, err := s.store.Save(path, r); err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "attachment exceeds the maximum file size")
		}
		return nil, appErrors.Internal(err, "failed to store attachment")
	}
	if err := s.repo.SetAttachment(ctx, submission.ID, path); err != nil {
		if delErr := s.store.Delete(path); delErr != nil {
			s.logger.Warn("remove orphaned attachment", zap.String("path", path), zap.Error(delErr))
		}
		return nil, appErrors.Internal(err, "failed to record attachment")
	}

	token, expiresAt, err := s.signer.Generate(submission.ID, path)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign download link")
	}
	return &dto.SubmissionAttachmentResponse{
		SubmissionID: submission.ID,
		DownloadURL:  s.downloadBase + "/" + token,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *AssignmentService) announce(ctx context.Context, assignment *models.Assignment) {
	if s.notifier == nil || s.members == nil {
		return
	}
	students, err := s.members.UserIDsByRole(ctx, assignment.SchoolID, models.RoleStudent)
	if err != nil {
		s.logger.Warn("load assignment recipients", zap.String("assignment_id", assignment.ID), zap.Error(err))
		return
	}
	ref := assignment.ID
	s.notifier.Notify(ctx, students, models.Notification{
		Type:        models.NotificationAssignmentCreated,
		Title:       "New assignment: " + assignment.Title,
		Body:        "Due " + assignment.DueDate.Format("2006-01-02 15:04") + " UTC",
		ReferenceID: &ref,
	})
}

// canManage allows admins and the owning teacher.
func canManage(actor *models.Identity, assignment *models.Assignment) error {
	if actor.Role == models.RoleAdmin || assignment.TeacherID == actor.SubjectID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "assignment belongs to another teacher")
}

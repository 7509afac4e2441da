package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
	"github.com/noah-isme/sma-classroom-api/pkg/storage"
)

const testAssignmentID = "64b7f0c2a1d3e4f5a6b7c8e3"

type mockAssignmentRepo struct {
	assignments map[string]*models.Assignment
	submissions map[string]*models.Submission
	grades      []*models.Grade
	attachments map[string]string
}

func newMockAssignmentRepo(assignments ...models.Assignment) *mockAssignmentRepo {
	repo := &mockAssignmentRepo{
		assignments: map[string]*models.Assignment{},
		submissions: map[string]*models.Submission{},
		attachments: map[string]string{},
	}
	for i := range assignments {
		a := assignments[i]
		repo.assignments[a.ID] = &a
	}
	return repo
}

func (m *mockAssignmentRepo) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	var out []models.Assignment
	for _, a := range m.assignments {
		if a.SchoolID == filter.SchoolID && (filter.SubjectID == "" || a.SubjectID == filter.SubjectID) {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, schoolID, id string) (*models.Assignment, error) {
	a, ok := m.assignments[id]
	if !ok || a.SchoolID != schoolID {
		return nil, sql.ErrNoRows
	}
	clone := *a
	return &clone, nil
}

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = models.NewID()
	m.assignments[assignment.ID] = assignment
	return nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	m.assignments[assignment.ID] = assignment
	return nil
}

func (m *mockAssignmentRepo) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	submission.ID = models.NewID()
	m.submissions[submission.ID] = submission
	return nil
}

func (m *mockAssignmentRepo) FindSubmission(ctx context.Context, assignmentID, submissionID string) (*models.Submission, error) {
	s, ok := m.submissions[submissionID]
	if !ok || s.AssignmentID != assignmentID {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockAssignmentRepo) FindSubmissionByStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	for _, s := range m.submissions {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentRepo) SetAttachment(ctx context.Context, submissionID, path string) error {
	m.attachments[submissionID] = path
	return nil
}

func (m *mockAssignmentRepo) UpsertGrade(ctx context.Context, grade *models.Grade) error {
	m.grades = append(m.grades, grade)
	return nil
}

func (m *mockAssignmentRepo) ListGradesByStudent(ctx context.Context, schoolID, studentID string) ([]models.StudentGrade, error) {
	return nil, nil
}

type staticDirectory struct {
	ids []string
}

func (d staticDirectory) UserIDsByRole(ctx context.Context, schoolID string, role models.UserRole) ([]string, error) {
	return d.ids, nil
}

type recordingNotifier struct {
	recipients []string
	sent       []models.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, recipients []string, template models.Notification) {
	n.recipients = append(n.recipients, recipients...)
	n.sent = append(n.sent, template)
}

func teacherIdentity(id string) *models.Identity {
	return &models.Identity{SubjectID: id, Role: models.RoleTeacher, SchoolID: testSchoolID}
}

func studentIdentity() *models.Identity {
	return &models.Identity{SubjectID: testStudentID, Role: models.RoleStudent, SchoolID: testSchoolID}
}

func sampleAssignment(due time.Time) models.Assignment {
	return models.Assignment{
		ID:        testAssignmentID,
		SchoolID:  testSchoolID,
		SubjectID: testSubjectID,
		TeacherID: testUserID,
		Title:     "Essay",
		DueDate:   due,
		MaxScore:  100,
	}
}

func newTestAssignmentService(t *testing.T, repo *mockAssignmentRepo, notifier *recordingNotifier) *AssignmentService {
	t.Helper()
	if notifier == nil {
		notifier = &recordingNotifier{}
	}
	store, err := storage.NewLocalStorage(t.TempDir(), 16)
	require.NoError(t, err)
	return NewAssignmentService(AssignmentDeps{
		Repo:         repo,
		Subjects:     newMockSubjectRepo(models.Subject{ID: testSubjectID, SchoolID: testSchoolID, Code: "BIO", Name: "Biology"}),
		Members:      staticDirectory{ids: []string{testStudentID}},
		Store:        store,
		Signer:       storage.NewSignedURLSigner("secret", time.Minute),
		Notifier:     notifier,
		DownloadBase: "/api/v1/files/",
	})
}

func TestCreateAssignmentNotifiesStudents(t *testing.T) {
	repo := newMockAssignmentRepo()
	notifier := &recordingNotifier{}
	svc := newTestAssignmentService(t, repo, notifier)

	assignment, err := svc.Create(context.Background(), teacherIdentity(testUserID), dto.CreateAssignmentRequest{
		SubjectID: testSubjectID,
		Title:     "Cells",
		DueDate:   time.Now().Add(48 * time.Hour),
		MaxScore:  50,
	})
	require.NoError(t, err)
	assert.Equal(t, testUserID, assignment.TeacherID)
	assert.Equal(t, []string{testStudentID}, notifier.recipients)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, models.NotificationAssignmentCreated, notifier.sent[0].Type)
	assert.Equal(t, assignment.ID, *notifier.sent[0].ReferenceID)
}

func TestCreateAssignmentUnknownSubject(t *testing.T) {
	svc := newTestAssignmentService(t, newMockAssignmentRepo(), &recordingNotifier{})

	_, err := svc.Create(context.Background(), teacherIdentity(testUserID), dto.CreateAssignmentRequest{SubjectID: testStudentID, Title: "x"})
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestUpdateAssignmentOwnership(t *testing.T) {
	repo := newMockAssignmentRepo(sampleAssignment(time.Now()))
	svc := newTestAssignmentService(t, repo, nil)
	title := "Renamed"
	req := dto.UpdateAssignmentRequest{Query: dto.IDParam{ID: testAssignmentID}, Body: dto.UpdateAssignmentBody{Title: &title}}

	_, err := svc.Update(context.Background(), teacherIdentity(testStudentID), req)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	updated, err := svc.Update(context.Background(), teacherIdentity(testUserID), req)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	admin := &models.Identity{SubjectID: testSubjectID, Role: models.RoleAdmin, SchoolID: testSchoolID}
	_, err = svc.Update(context.Background(), admin, req)
	assert.NoError(t, err)
}

func TestSubmitFlagsLateAndRejectsDuplicates(t *testing.T) {
	repo := newMockAssignmentRepo(sampleAssignment(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)))
	svc := newTestAssignmentService(t, repo, nil)
	svc.now = func() time.Time { return time.Date(2024, 8, 2, 0, 0, 0, 0, time.UTC) }
	req := dto.SubmitAssignmentRequest{Query: dto.IDParam{ID: testAssignmentID}, Body: dto.SubmitAssignmentBody{Content: "my answer"}}

	submission, err := svc.Submit(context.Background(), studentIdentity(), req)
	require.NoError(t, err)
	assert.True(t, submission.Late)
	assert.Equal(t, testStudentID, submission.StudentID)

	_, err = svc.Submit(context.Background(), studentIdentity(), req)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUploadAttachmentSignsDownload(t *testing.T) {
	repo := newMockAssignmentRepo(sampleAssignment(time.Now().Add(time.Hour)))
	svc := newTestAssignmentService(t, repo, nil)
	submission, err := svc.Submit(context.Background(), studentIdentity(), dto.SubmitAssignmentRequest{
		Query: dto.IDParam{ID: testAssignmentID},
		Body:  dto.SubmitAssignmentBody{Content: "answer"},
	})
	require.NoError(t, err)
	params := dto.SubmissionParams{ID: testAssignmentID, SubmissionID: submission.ID}

	resp, err := svc.UploadAttachment(context.Background(), studentIdentity(), params, "Report.PDF", strings.NewReader("tiny"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.DownloadURL, "/api/v1/files/"+submission.ID+"."))
	assert.True(t, strings.HasSuffix(repo.attachments[submission.ID], ".pdf"))

	_, err = svc.UploadAttachment(context.Background(), studentIdentity(), params, "big.txt", strings.NewReader(strings.Repeat("x", 64)))
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.UploadAttachment(context.Background(), teacherIdentity(testUserID), params, "a.txt", strings.NewReader("x"))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGradeSubmission(t *testing.T) {
	repo := newMockAssignmentRepo(sampleAssignment(time.Now()))
	notifier := &recordingNotifier{}
	grades := NewGradeService(repo, notifier, nil)
	req := dto.GradeSubmissionRequest{Query: dto.IDParam{ID: testAssignmentID}, Body: dto.GradeSubmissionBody{StudentID: testStudentID, Score: 90}}

	_, err := grades.Grade(context.Background(), teacherIdentity(testUserID), req)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	repo.submissions["s1"] = &models.Submission{ID: "s1", AssignmentID: testAssignmentID, StudentID: testStudentID}
	grade, err := grades.Grade(context.Background(), teacherIdentity(testUserID), req)
	require.NoError(t, err)
	assert.Equal(t, float64(90), grade.Score)
	assert.Equal(t, testUserID, grade.GradedBy)
	assert.Equal(t, []string{testStudentID}, notifier.recipients)
	assert.Equal(t, models.NotificationSubmissionGraded, notifier.sent[0].Type)
}

func TestGradeAboveMaxScore(t *testing.T) {
	repo := newMockAssignmentRepo(sampleAssignment(time.Now()))
	grades := NewGradeService(repo, nil, nil)
	req := dto.GradeSubmissionRequest{Query: dto.IDParam{ID: testAssignmentID}, Body: dto.GradeSubmissionBody{StudentID: testStudentID, Score: 100.5}}

	_, err := grades.Grade(context.Background(), teacherIdentity(testUserID), req)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "100")
	assert.Empty(t, repo.grades)
}

func TestListMyGradesEmpty(t *testing.T) {
	grades := NewGradeService(newMockAssignmentRepo(), nil, nil)
	items, err := grades.ListMine(context.Background(), studentIdentity())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

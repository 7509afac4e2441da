package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	"github.com/noah-isme/sma-classroom-api/internal/repository"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
	"github.com/noah-isme/sma-classroom-api/pkg/export"
)

// Attendance export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type attendanceRepository interface {
	CreateRow(ctx context.Context, row *models.AttendanceRow) error
	FindRow(ctx context.Context, schoolID, rowID string) (*models.AttendanceRow, error)
	UpdateRecord(ctx context.Context, record *models.AttendanceRecord) error
}

// ExportFile is a rendered attendance sheet.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// AttendanceService records roll calls and exports attendance sheets.
type AttendanceService struct {
	repo     attendanceRepository
	subjects subjectLookup
	logger   *zap.Logger
}

// NewAttendanceService constructs an attendance service.
func NewAttendanceService(repo attendanceRepository, subjects subjectLookup, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, subjects: subjects, logger: logger}
}

// Create records a roll call for a subject on a date.
func (s *AttendanceService) Create(ctx context.Context, actor *models.Identity, req dto.CreateAttendanceRequest) (*models.AttendanceRow, error) {
	if _, err := s.subjects.FindByID(ctx, actor.SchoolID, req.SubjectID); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "subject does not exist")
		}
		return nil, appErrors.Internal(err, "failed to load subject")
	}

	records := make([]models.AttendanceRecord, 0, len(req.Records))
	seen := make(map[string]int, len(req.Records))
	for i, in := range req.Records {
		if first, dup := seen[in.StudentID]; dup {
			return nil, appErrors.WithDetails(
				appErrors.Clone(appErrors.ErrValidation, "student listed more than once"),
				[]map[string]string{{"field": fmt.Sprintf("records[%d].studentId", i), "duplicateOf": fmt.Sprintf("records[%d]", first)}},
			)
		}
		seen[in.StudentID] = i
		records = append(records, models.AttendanceRecord{
			StudentID: in.StudentID,
			Status:    models.AttendanceStatus(in.Status),
			Note:      in.Note,
		})
	}

	row := &models.AttendanceRow{
		SchoolID:  actor.SchoolID,
		SubjectID: req.SubjectID,
		Date:      req.Date.UTC(),
		CreatedBy: actor.SubjectID,
		Records:   records,
	}
	if err := s.repo.CreateRow(ctx, row); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for this subject and date")
		}
		return nil, appErrors.Internal(err, "failed to record attendance")
	}
	return row, nil
}

// UpdateRecord changes one student's status within a row.
func (s *AttendanceService) UpdateRecord(ctx context.Context, actor *models.Identity, req dto.UpdateAttendanceRecordRequest) (*models.AttendanceRecord, error) {
	row, err := s.repo.FindRow(ctx, actor.SchoolID, req.Query.AttendanceRowID)
	if err != nil {
		return nil, lookupError(err, "attendance row not found", "failed to load attendance row")
	}

	record := &models.AttendanceRecord{
		RowID:     row.ID,
		StudentID: req.Body.StudentID,
		Status:    models.AttendanceStatus(req.Body.Status),
		Note:      req.Body.Note,
	}
	if err := s.repo.UpdateRecord(ctx, record); err != nil {
		return nil, lookupError(err, "student is not on this attendance sheet", "failed to update attendance record")
	}
	for _, existing := range row.Records {
		if existing.StudentID == record.StudentID {
			record.ID = existing.ID
			record.StudentName = existing.StudentName
			break
		}
	}
	return record, nil
}

// Export renders an attendance row as CSV or PDF.
func (s *AttendanceService) Export(ctx context.Context, actor *models.Identity, query dto.ExportAttendanceQuery) (*ExportFile, error) {
	row, err := s.repo.FindRow(ctx, actor.SchoolID, query.AttendanceRowID)
	if err != nil {
		return nil, lookupError(err, "attendance row not found", "failed to load attendance row")
	}

	subjectName := row.SubjectID
	if subject, err := s.subjects.FindByID(ctx, actor.SchoolID, row.SubjectID); err == nil {
		subjectName = subject.Name
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("Attendance %s %s", subjectName, row.Date.Format("2006-01-02")),
		Headers: []string{"No", "Student ID", "Student", "Status", "Note"},
		Rows:    make([][]string, 0, len(row.Records)),
	}
	for i, record := range row.Records {
		note := ""
		if record.Note != nil {
			note = *record.Note
		}
		data.Rows = append(data.Rows, []string{strconv.Itoa(i + 1), record.StudentID, record.StudentName, string(record.Status), note})
	}

	base := fmt.Sprintf("attendance-%s-%s", row.ID, row.Date.Format("20060102"))
	var file *ExportFile
	switch query.Format {
	case ExportFormatPDF:
		content, err := export.RenderPDF(data)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render attendance pdf")
		}
		file = &ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Content: content}
	default:
		content, err := export.RenderCSV(data)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render attendance csv")
		}
		file = &ExportFile{Filename: base + ".csv", ContentType: "text/csv", Content: content}
	}

	s.logger.Info("attendance exported",
		zap.String("row_id", row.ID),
		zap.String("format", query.Format),
		zap.Int("records", len(row.Records)),
	)
	return file, nil
}

package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-classroom-api/internal/models"
)

const testAssignmentID = "64b7f0c2a1d3e4f5a6b7c8e3"

func TestMemberListFiltersByRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	rows := sqlmock.NewRows([]string{"id", "school_id", "user_id", "role", "full_name", "email", "joined_at"}).
		AddRow("m1", testSchoolID, testUserID, "TEACHER", "Budi", "budi@example.com", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE m.school_id = $1 AND m.role = $2 ORDER BY u.full_name ASC")).
		WithArgs(testSchoolID, "TEACHER").
		WillReturnRows(rows)

	members, err := repo.List(context.Background(), MemberFilter{SchoolID: testSchoolID, Role: "TEACHER"})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Budi", members[0].FullName)
	assert.Equal(t, models.RoleTeacher, members[0].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRemoveMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	mock.ExpectExec("DELETE FROM school_members").
		WithArgs(testSchoolID, "m1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Remove(context.Background(), testSchoolID, "m1"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentListBuildsPlaceholders(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE school_id = $1 AND subject_id = $2 AND teacher_id = $3 ORDER BY due_date ASC LIMIT 20 OFFSET 0")).
		WithArgs(testSchoolID, testSubjectID, testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM assignments WHERE school_id = $1 AND subject_id = $2 AND teacher_id = $3")).
		WithArgs(testSchoolID, testSubjectID, testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	items, total, err := repo.List(context.Background(), models.AssignmentFilter{SchoolID: testSchoolID, SubjectID: testSubjectID, TeacherID: testUserID})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentUpsertGrade(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (assignment_id, student_id) DO UPDATE")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	grade := &models.Grade{AssignmentID: testAssignmentID, StudentID: testUserID, Score: 88, GradedBy: testUserID}
	require.NoError(t, repo.UpsertGrade(context.Background(), grade))
	assert.NotEmpty(t, grade.ID)
	assert.False(t, grade.GradedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentFindSubmissionByStudentNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM submissions WHERE assignment_id = $1 AND student_id = $2")).
		WithArgs(testAssignmentID, testUserID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindSubmissionByStudent(context.Background(), testAssignmentID, testUserID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceCreateRowInTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendance_rows").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO attendance_records").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO attendance_records").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	row := &models.AttendanceRow{
		SchoolID:  testSchoolID,
		SubjectID: testSubjectID,
		Date:      time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy: testUserID,
		Records: []models.AttendanceRecord{
			{StudentID: testUserID, Status: models.AttendanceStatusPresent},
			{StudentID: testSubjectID, Status: models.AttendanceStatusAbsent},
		},
	}
	require.NoError(t, repo.CreateRow(context.Background(), row))
	for _, record := range row.Records {
		assert.Equal(t, row.ID, record.RowID)
		assert.NotEmpty(t, record.ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceCreateRowRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendance_rows").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO attendance_records").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	row := &models.AttendanceRow{SchoolID: testSchoolID, Records: []models.AttendanceRecord{{StudentID: testUserID, Status: models.AttendanceStatusLate}}}
	err := repo.CreateRow(context.Background(), row)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceFindRowLoadsRecords(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_rows WHERE school_id = $1 AND id = $2")).
		WithArgs(testSchoolID, "r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "school_id", "subject_id", "date", "created_by", "created_at"}).
			AddRow("r1", testSchoolID, testSubjectID, now, testUserID, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_records r LEFT JOIN users u")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "row_id", "student_id", "student_name", "status", "note", "updated_at"}).
			AddRow("a1", "r1", testUserID, "Ani", "PRESENT", nil, now))

	row, err := repo.FindRow(context.Background(), testSchoolID, "r1")
	require.NoError(t, err)
	require.Len(t, row.Records, 1)
	assert.Equal(t, "Ani", row.Records[0].StudentName)
	assert.Equal(t, models.AttendanceStatusPresent, row.Records[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationListUnreadOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND read_at IS NULL ORDER BY created_at DESC")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "title", "body", "reference_id", "read_at", "created_at"}).
			AddRow("n1", testUserID, "SUBMISSION_GRADED", "Graded", "88/100", testAssignmentID, nil, time.Now()))

	items, err := repo.ListByUser(context.Background(), testUserID, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.NotificationSubmissionGraded, items[0].Type)
	assert.Nil(t, items[0].ReadAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationMarkReadMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("UPDATE notifications SET read_at").
		WithArgs(sqlmock.AnyArg(), testUserID, "n1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.MarkRead(context.Background(), testUserID, "n1"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

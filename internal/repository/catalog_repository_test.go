package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-classroom-api/internal/models"
)

func TestSubjectListAppliesSearchAndPaging(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "school_id", "code", "name", "color", "description", "created_at", "updated_at"}).
		AddRow(testSubjectID, testSchoolID, "MATH", "Mathematics", "#ff0000", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE school_id = $1 AND (name ILIKE $2 OR code ILIKE $2) ORDER BY name ASC LIMIT 10 OFFSET 10")).
		WithArgs(testSchoolID, "%mat%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM subjects WHERE school_id = $1")).
		WithArgs(testSchoolID, "%mat%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	subjects, total, err := repo.List(context.Background(), models.CatalogFilter{
		SchoolID: testSchoolID,
		Search:   "mat",
		Page:     models.Page{Page: 2, PageSize: 10},
	})
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "MATH", subjects[0].Code)
	require.NotNil(t, subjects[0].Color)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("UPDATE subjects SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Subject{ID: testSubjectID, SchoolID: testSchoolID, Code: "MATH", Name: "Math"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectCreateUniqueViolation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("INSERT INTO subjects").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Subject{SchoolID: testSchoolID, Code: "MATH", Name: "Math"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSkillCountExisting(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSkillRepository(db)

	ids := []string{testSubjectID, testUserID}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM skills WHERE school_id = $1 AND id = ANY($2)")).
		WithArgs(testSchoolID, pq.Array(ids)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := repo.CountExisting(context.Background(), testSchoolID, ids)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCareerFindByIDScansSkillArray(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCareerRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "school_id", "name", "description", "info_url", "skill_ids", "created_at", "updated_at"}).
		AddRow(testSubjectID, testSchoolID, "Engineer", nil, "https://example.com", "{a,b}", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM careers WHERE school_id = $1 AND id = $2")).
		WithArgs(testSchoolID, testSubjectID).
		WillReturnRows(rows)

	career, err := repo.FindByID(context.Background(), testSchoolID, testSubjectID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, []string(career.SkillIDs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCareerDeleteMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCareerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM careers WHERE school_id = $1 AND id = $2")).
		WithArgs(testSchoolID, testSubjectID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), testSchoolID, testSubjectID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSkillUpdateBindsFields(t *testing.T) {
	rawDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "postgres")
	repo := NewSkillRepository(db)

	subjectID := testSubjectID
	mock.ExpectExec(regexp.QuoteMeta("UPDATE skills SET subject_id = $1, name = $2, description = $3 WHERE school_id = $4 AND id = $5")).
		WithArgs(testSubjectID, "Algebra", nil, testSchoolID, testUserID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(context.Background(), &models.Skill{ID: testUserID, SchoolID: testSchoolID, SubjectID: &subjectID, Name: "Algebra"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSkillUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSkillRepository(db)

	mock.ExpectExec("UPDATE skills SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Skill{ID: testUserID, SchoolID: testSchoolID, Name: "Algebra"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSkillFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSkillRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM skills WHERE school_id = $1 AND id = $2")).
		WithArgs(testSchoolID, testUserID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), testSchoolID, testUserID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

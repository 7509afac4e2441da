package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-classroom-api/internal/models"
)

// AttendanceRepository persists attendance rows and their records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// CreateRow inserts a row and all of its records in one transaction.
func (r *AttendanceRepository) CreateRow(ctx context.Context, row *models.AttendanceRow) error {
	if row.ID == "" {
		row.ID = models.NewID()
	}
	now := time.Now().UTC()
	row.CreatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const rowQuery = `INSERT INTO attendance_rows (id, school_id, subject_id, date, created_by, created_at) VALUES (:id, :school_id, :subject_id, :date, :created_by, :created_at)`
	if _, err := tx.NamedExecContext(ctx, rowQuery, row); err != nil {
		return fmt.Errorf("create attendance row: %w", err)
	}

	const recordQuery = `INSERT INTO attendance_records (id, row_id, student_id, status, note, updated_at) VALUES (:id, :row_id, :student_id, :status, :note, :updated_at)`
	for i := range row.Records {
		record := &row.Records[i]
		if record.ID == "" {
			record.ID = models.NewID()
		}
		record.RowID = row.ID
		record.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, recordQuery, record); err != nil {
			return fmt.Errorf("create attendance record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance row: %w", err)
	}
	return nil
}

// FindRow returns a row with its records and student names.
func (r *AttendanceRepository) FindRow(ctx context.Context, schoolID, rowID string) (*models.AttendanceRow, error) {
	const rowQuery = `SELECT id, school_id, subject_id, date, created_by, created_at FROM attendance_rows WHERE school_id = $1 AND id = $2`
	var row models.AttendanceRow
	if err := r.db.GetContext(ctx, &row, rowQuery, schoolID, rowID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance row: %w", err)
	}

	const recordQuery = `SELECT r.id, r.row_id, r.student_id, COALESCE(u.full_name, '') AS student_name, r.status, r.note, r.updated_at
FROM attendance_records r LEFT JOIN users u ON u.id = r.student_id
WHERE r.row_id = $1
ORDER BY student_name ASC`
	if err := r.db.SelectContext(ctx, &row.Records, recordQuery, row.ID); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return &row, nil
}

// UpdateRecord changes the status and note of a student's record in a row.
func (r *AttendanceRepository) UpdateRecord(ctx context.Context, record *models.AttendanceRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE attendance_records SET status = :status, note = :note, updated_at = :updated_at WHERE row_id = :row_id AND student_id = :student_id`
	res, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("update attendance record: %w", err)
	}
	return expectAffected(res, "update attendance record")
}

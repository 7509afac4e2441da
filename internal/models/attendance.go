package models

import "time"

// AttendanceStatus represents the presence state of a student.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
	AttendanceStatusExcused AttendanceStatus = "EXCUSED"
)

// AttendanceStatuses lists accepted statuses.
func AttendanceStatuses() []string {
	return []string{
		string(AttendanceStatusPresent),
		string(AttendanceStatusAbsent),
		string(AttendanceStatusLate),
		string(AttendanceStatusExcused),
	}
}

// AttendanceRow is one roll call for a subject on a date.
type AttendanceRow struct {
	ID        string             `db:"id" json:"id"`
	SchoolID  string             `db:"school_id" json:"schoolId"`
	SubjectID string             `db:"subject_id" json:"subjectId"`
	Date      time.Time          `db:"date" json:"date"`
	CreatedBy string             `db:"created_by" json:"createdBy"`
	CreatedAt time.Time          `db:"created_at" json:"createdAt"`
	Records   []AttendanceRecord `db:"-" json:"records"`
}

// AttendanceRecord stores one student's status within a row.
type AttendanceRecord struct {
	ID          string           `db:"id" json:"id"`
	RowID       string           `db:"row_id" json:"rowId"`
	StudentID   string           `db:"student_id" json:"studentId"`
	StudentName string           `db:"student_name" json:"studentName,omitempty"`
	Status      AttendanceStatus `db:"status" json:"status"`
	Note        *string          `db:"note" json:"note,omitempty"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updatedAt"`
}

package models

import "time"

// SchoolMember links a user to a school with a role.
type SchoolMember struct {
	ID       string    `db:"id" json:"id"`
	SchoolID string    `db:"school_id" json:"schoolId"`
	UserID   string    `db:"user_id" json:"userId"`
	Role     UserRole  `db:"role" json:"role"`
	FullName string    `db:"full_name" json:"fullName,omitempty"`
	Email    string    `db:"email" json:"email,omitempty"`
	JoinedAt time.Time `db:"joined_at" json:"joinedAt"`
}

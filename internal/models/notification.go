package models

import "time"

// NotificationType categorises notifications.
type NotificationType string

const (
	NotificationAssignmentCreated NotificationType = "ASSIGNMENT_CREATED"
	NotificationSubmissionGraded  NotificationType = "SUBMISSION_GRADED"
)

// Notification is a message delivered to a user's inbox.
type Notification struct {
	ID          string           `db:"id" json:"id"`
	UserID      string           `db:"user_id" json:"userId"`
	Type        NotificationType `db:"type" json:"type"`
	Title       string           `db:"title" json:"title"`
	Body        string           `db:"body" json:"body"`
	ReferenceID *string          `db:"reference_id" json:"referenceId,omitempty"`
	ReadAt      *time.Time       `db:"read_at" json:"readAt,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
}

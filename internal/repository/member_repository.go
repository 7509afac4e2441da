package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-classroom-api/internal/models"
)

// MemberFilter narrows membership listings.
type MemberFilter struct {
	SchoolID string
	Role     string
}

// MemberRepository persists school memberships.
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository constructs a MemberRepository.
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// List returns members of a school joined with their user profile.
func (r *MemberRepository) List(ctx context.Context, filter MemberFilter) ([]models.SchoolMember, error) {
	query := `SELECT m.id, m.school_id, m.user_id, m.role, u.full_name, u.email, m.joined_at
FROM school_members m JOIN users u ON u.id = m.user_id
WHERE m.school_id = $1`
	args := []interface{}{filter.SchoolID}
	if filter.Role != "" {
		query += ` AND m.role = $2`
		args = append(args, filter.Role)
	}
	query += ` ORDER BY u.full_name ASC`

	var members []models.SchoolMember
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// UserIDsByRole returns user ids of members holding role in a school.
func (r *MemberRepository) UserIDsByRole(ctx context.Context, schoolID string, role models.UserRole) ([]string, error) {
	var ids []string
	const query = `SELECT user_id FROM school_members WHERE school_id = $1 AND role = $2`
	if err := r.db.SelectContext(ctx, &ids, query, schoolID, role); err != nil {
		return nil, fmt.Errorf("list member ids: %w", err)
	}
	return ids, nil
}

// Add inserts a membership. Duplicates surface as unique violations.
func (r *MemberRepository) Add(ctx context.Context, member *models.SchoolMember) error {
	if member.ID == "" {
		member.ID = models.NewID()
	}
	member.JoinedAt = time.Now().UTC()
	const query = `INSERT INTO school_members (id, school_id, user_id, role, joined_at) VALUES (:id, :school_id, :user_id, :role, :joined_at)`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// Remove deletes a membership.
func (r *MemberRepository) Remove(ctx context.Context, schoolID, memberID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM school_members WHERE school_id = $1 AND id = $2`, schoolID, memberID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return expectAffected(res, "remove member")
}

// Exists reports whether the user belongs to the school.
func (r *MemberRepository) Exists(ctx context.Context, schoolID, userID string) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS(SELECT 1 FROM school_members WHERE school_id = $1 AND user_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, schoolID, userID); err != nil {
		return false, fmt.Errorf("check member: %w", err)
	}
	return exists, nil
}

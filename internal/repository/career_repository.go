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

const careerColumns = `id, school_id, name, description, info_url, skill_ids, created_at, updated_at`

// CareerRepository persists careers.
type CareerRepository struct {
	db *sqlx.DB
}

// NewCareerRepository constructs a CareerRepository.
func NewCareerRepository(db *sqlx.DB) *CareerRepository {
	return &CareerRepository{db: db}
}

// List returns a page of careers for a school.
func (r *CareerRepository) List(ctx context.Context, filter models.CatalogFilter) ([]models.Career, int, error) {
	page := filter.Page.Normalize()
	where := `WHERE school_id = $1`
	args := []interface{}{filter.SchoolID}
	if filter.Search != "" {
		where += ` AND name ILIKE $2`
		args = append(args, likePattern(filter.Search))
	}

	query := fmt.Sprintf(`SELECT %s FROM careers %s ORDER BY name ASC LIMIT %d OFFSET %d`, careerColumns, where, page.PageSize, page.Offset())
	var careers []models.Career
	if err := r.db.SelectContext(ctx, &careers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list careers: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM careers `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count careers: %w", err)
	}
	return careers, total, nil
}

// FindByID returns a career scoped to a school.
func (r *CareerRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Career, error) {
	const query = `SELECT ` + careerColumns + ` FROM careers WHERE school_id = $1 AND id = $2`
	var career models.Career
	if err := r.db.GetContext(ctx, &career, query, schoolID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find career: %w", err)
	}
	return &career, nil
}

// Create inserts a career.
func (r *CareerRepository) Create(ctx context.Context, career *models.Career) error {
	if career.ID == "" {
		career.ID = models.NewID()
	}
	now := time.Now().UTC()
	career.CreatedAt = now
	career.UpdatedAt = now
	const query = `INSERT INTO careers (id, school_id, name, description, info_url, skill_ids, created_at, updated_at) VALUES (:id, :school_id, :name, :description, :info_url, :skill_ids, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, career); err != nil {
		return fmt.Errorf("create career: %w", err)
	}
	return nil
}

// Update stores changed career fields.
func (r *CareerRepository) Update(ctx context.Context, career *models.Career) error {
	career.UpdatedAt = time.Now().UTC()
	const query = `UPDATE careers SET name = :name, description = :description, info_url = :info_url, skill_ids = :skill_ids, updated_at = :updated_at WHERE school_id = :school_id AND id = :id`
	res, err := r.db.NamedExecContext(ctx, query, career)
	if err != nil {
		return fmt.Errorf("update career: %w", err)
	}
	return expectAffected(res, "update career")
}

// Delete removes a career.
func (r *CareerRepository) Delete(ctx context.Context, schoolID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM careers WHERE school_id = $1 AND id = $2`, schoolID, id)
	if err != nil {
		return fmt.Errorf("delete career: %w", err)
	}
	return expectAffected(res, "delete career")
}

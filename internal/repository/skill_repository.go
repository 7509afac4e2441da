package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-classroom-api/internal/models"
)

const skillColumns = `id, school_id, subject_id, name, description, created_at`

// SkillRepository persists skills.
type SkillRepository struct {
	db *sqlx.DB
}

// NewSkillRepository constructs a SkillRepository.
func NewSkillRepository(db *sqlx.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// List returns a page of skills for a school.
func (r *SkillRepository) List(ctx context.Context, filter models.CatalogFilter) ([]models.Skill, int, error) {
	page := filter.Page.Normalize()
	where := `WHERE school_id = $1`
	args := []interface{}{filter.SchoolID}
	if filter.Search != "" {
		where += ` AND name ILIKE $2`
		args = append(args, likePattern(filter.Search))
	}

	query := fmt.Sprintf(`SELECT %s FROM skills %s ORDER BY name ASC LIMIT %d OFFSET %d`, skillColumns, where, page.PageSize, page.Offset())
	var skills []models.Skill
	if err := r.db.SelectContext(ctx, &skills, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list skills: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM skills `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count skills: %w", err)
	}
	return skills, total, nil
}

// CountExisting returns how many of ids exist as skills in the school.
func (r *SkillRepository) CountExisting(ctx context.Context, schoolID string, ids []string) (int, error) {
	var n int
	const query = `SELECT COUNT(*) FROM skills WHERE school_id = $1 AND id = ANY($2)`
	if err := r.db.GetContext(ctx, &n, query, schoolID, pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("count skills: %w", err)
	}
	return n, nil
}

// Create inserts a skill.
func (r *SkillRepository) Create(ctx context.Context, skill *models.Skill) error {
	if skill.ID == "" {
		skill.ID = models.NewID()
	}
	skill.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO skills (id, school_id, subject_id, name, description, created_at) VALUES (:id, :school_id, :subject_id, :name, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, skill); err != nil {
		return fmt.Errorf("create skill: %w", err)
	}
	return nil
}

// FindByID returns a skill scoped to a school.
func (r *SkillRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Skill, error) {
	const query = `SELECT ` + skillColumns + ` FROM skills WHERE school_id = $1 AND id = $2`
	var skill models.Skill
	if err := r.db.GetContext(ctx, &skill, query, schoolID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find skill: %w", err)
	}
	return &skill, nil
}

// Update stores changed skill fields.
func (r *SkillRepository) Update(ctx context.Context, skill *models.Skill) error {
	const query = `UPDATE skills SET subject_id = :subject_id, name = :name, description = :description WHERE school_id = :school_id AND id = :id`
	res, err := r.db.NamedExecContext(ctx, query, skill)
	if err != nil {
		return fmt.Errorf("update skill: %w", err)
	}
	return expectAffected(res, "update skill")
}

// Delete removes a skill.
func (r *SkillRepository) Delete(ctx context.Context, schoolID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM skills WHERE school_id = $1 AND id = $2`, schoolID, id)
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}
	return expectAffected(res, "delete skill")
}

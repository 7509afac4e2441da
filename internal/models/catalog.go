package models

import (
	"time"

	"github.com/lib/pq"
)

// Subject represents an academic subject offered by a school.
type Subject struct {
	ID          string    `db:"id" json:"id"`
	SchoolID    string    `db:"school_id" json:"schoolId"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Color       *string   `db:"color" json:"color,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Skill is a competency students develop, optionally tied to a subject.
type Skill struct {
	ID          string    `db:"id" json:"id"`
	SchoolID    string    `db:"school_id" json:"schoolId"`
	SubjectID   *string   `db:"subject_id" json:"subjectId,omitempty"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Career describes a career path and the skills it draws on.
type Career struct {
	ID          string         `db:"id" json:"id"`
	SchoolID    string         `db:"school_id" json:"schoolId"`
	Name        string         `db:"name" json:"name"`
	Description *string        `db:"description" json:"description,omitempty"`
	InfoURL     *string        `db:"info_url" json:"infoUrl,omitempty"`
	SkillIDs    pq.StringArray `db:"skill_ids" json:"skillIds"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// CatalogFilter filters catalog listings.
type CatalogFilter struct {
	SchoolID string
	Search   string
	Page
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	"github.com/noah-isme/sma-classroom-api/internal/repository"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
)

const (
	catalogSubjects = "subjects"
	catalogSkills   = "skills"
	catalogCareers  = "careers"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.CatalogFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, schoolID, id string) error
}

type skillRepository interface {
	List(ctx context.Context, filter models.CatalogFilter) ([]models.Skill, int, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.Skill, error)
	CountExisting(ctx context.Context, schoolID string, ids []string) (int, error)
	Create(ctx context.Context, skill *models.Skill) error
	Update(ctx context.Context, skill *models.Skill) error
	Delete(ctx context.Context, schoolID, id string) error
}

type careerRepository interface {
	List(ctx context.Context, filter models.CatalogFilter) ([]models.Career, int, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.Career, error)
	Create(ctx context.Context, career *models.Career) error
	Update(ctx context.Context, career *models.Career) error
	Delete(ctx context.Context, schoolID, id string) error
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

type cachedPage[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// CatalogService manages subjects, skills and careers for a school.
type CatalogService struct {
	subjects subjectRepository
	skills   skillRepository
	careers  careerRepository
	cache    catalogCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService constructs a catalog service. cache may be nil.
func NewCatalogService(subjects subjectRepository, skills skillRepository, careers careerRepository, cache catalogCache, cacheTTL time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{subjects: subjects, skills: skills, careers: careers, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// ListSubjects returns a page of subjects.
func (s *CatalogService) ListSubjects(ctx context.Context, filter models.CatalogFilter) ([]models.Subject, int, error) {
	return listCatalog(ctx, s, catalogSubjects, filter, s.subjects.List)
}

// CreateSubject adds a subject. Codes are upper-cased and unique per school.
func (s *CatalogService) CreateSubject(ctx context.Context, schoolID string, req dto.CreateSubjectRequest) (*models.Subject, error) {
	subject := &models.Subject{
		SchoolID:    schoolID,
		Code:        strings.ToUpper(req.Code),
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, catalogWriteError(err, "subject code already exists", "failed to create subject")
	}
	s.invalidate(ctx, schoolID, catalogSubjects)
	return subject, nil
}

// UpdateSubject applies the provided fields to a subject.
func (s *CatalogService) UpdateSubject(ctx context.Context, schoolID string, req dto.UpdateSubjectRequest) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, schoolID, req.Query.ID)
	if err != nil {
		return nil, lookupError(err, "subject not found", "failed to load subject")
	}

	body := req.Body
	if body.Name != nil {
		subject.Name = *body.Name
	}
	if body.Code != nil {
		subject.Code = strings.ToUpper(*body.Code)
	}
	if body.Color != nil {
		subject.Color = body.Color
	}
	if body.Description != nil {
		subject.Description = body.Description
	}

	if err := s.subjects.Update(ctx, subject); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, catalogWriteError(err, "subject code already exists", "failed to update subject")
	}
	s.invalidate(ctx, schoolID, catalogSubjects)
	return subject, nil
}

// DeleteSubject removes a subject.
func (s *CatalogService) DeleteSubject(ctx context.Context, schoolID, id string) error {
	if err := s.subjects.Delete(ctx, schoolID, id); err != nil {
		return lookupError(err, "subject not found", "failed to delete subject")
	}
	s.invalidate(ctx, schoolID, catalogSubjects)
	return nil
}

// ListSkills returns a page of skills.
func (s *CatalogService) ListSkills(ctx context.Context, filter models.CatalogFilter) ([]models.Skill, int, error) {
	return listCatalog(ctx, s, catalogSkills, filter, s.skills.List)
}

// CreateSkill adds a skill, optionally tied to an existing subject.
func (s *CatalogService) CreateSkill(ctx context.Context, schoolID string, req dto.CreateSkillRequest) (*models.Skill, error) {
	if err := s.checkSubject(ctx, schoolID, req.SubjectID); err != nil {
		return nil, err
	}

	skill := &models.Skill{SchoolID: schoolID, SubjectID: req.SubjectID, Name: req.Name, Description: req.Description}
	if err := s.skills.Create(ctx, skill); err != nil {
		return nil, catalogWriteError(err, "skill already exists", "failed to create skill")
	}
	s.invalidate(ctx, schoolID, catalogSkills)
	return skill, nil
}

// UpdateSkill applies the provided fields to a skill. A new subject must exist.
func (s *CatalogService) UpdateSkill(ctx context.Context, schoolID string, req dto.UpdateSkillRequest) (*models.Skill, error) {
	skill, err := s.skills.FindByID(ctx, schoolID, req.Query.ID)
	if err != nil {
		return nil, lookupError(err, "skill not found", "failed to load skill")
	}

	body := req.Body
	if body.SubjectID != nil {
		if err := s.checkSubject(ctx, schoolID, body.SubjectID); err != nil {
			return nil, err
		}
		skill.SubjectID = body.SubjectID
	}
	if body.Name != nil {
		skill.Name = *body.Name
	}
	if body.Description != nil {
		skill.Description = body.Description
	}

	if err := s.skills.Update(ctx, skill); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "skill not found")
		}
		return nil, catalogWriteError(err, "skill already exists", "failed to update skill")
	}
	s.invalidate(ctx, schoolID, catalogSkills)
	return skill, nil
}

// DeleteSkill removes a skill.
func (s *CatalogService) DeleteSkill(ctx context.Context, schoolID, id string) error {
	if err := s.skills.Delete(ctx, schoolID, id); err != nil {
		return lookupError(err, "skill not found", "failed to delete skill")
	}
	s.invalidate(ctx, schoolID, catalogSkills)
	return nil
}

// ListCareers returns a page of careers.
func (s *CatalogService) ListCareers(ctx context.Context, filter models.CatalogFilter) ([]models.Career, int, error) {
	return listCatalog(ctx, s, catalogCareers, filter, s.careers.List)
}

// CreateCareer adds a career whose skills must already exist.
func (s *CatalogService) CreateCareer(ctx context.Context, schoolID string, req dto.CreateCareerRequest) (*models.Career, error) {
	skillIDs, err := s.checkSkills(ctx, schoolID, req.SkillIDs)
	if err != nil {
		return nil, err
	}
	career := &models.Career{
		SchoolID:    schoolID,
		Name:        req.Name,
		Description: req.Description,
		InfoURL:     req.InfoURL,
		SkillIDs:    skillIDs,
	}
	if err := s.careers.Create(ctx, career); err != nil {
		return nil, catalogWriteError(err, "career already exists", "failed to create career")
	}
	s.invalidate(ctx, schoolID, catalogCareers)
	return career, nil
}

// UpdateCareer applies the provided fields to a career.
func (s *CatalogService) UpdateCareer(ctx context.Context, schoolID string, req dto.UpdateCareerRequest) (*models.Career, error) {
	career, err := s.careers.FindByID(ctx, schoolID, req.Query.ID)
	if err != nil {
		return nil, lookupError(err, "career not found", "failed to load career")
	}

	body := req.Body
	if body.Name != nil {
		career.Name = *body.Name
	}
	if body.Description != nil {
		career.Description = body.Description
	}
	if body.InfoURL != nil {
		career.InfoURL = body.InfoURL
	}
	if body.SkillIDs != nil {
		skillIDs, err := s.checkSkills(ctx, schoolID, body.SkillIDs)
		if err != nil {
			return nil, err
		}
		career.SkillIDs = skillIDs
	}

	if err := s.careers.Update(ctx, career); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "career not found")
		}
		return nil, catalogWriteError(err, "career already exists", "failed to update career")
	}
	s.invalidate(ctx, schoolID, catalogCareers)
	return career, nil
}

// DeleteCareer removes a career.
func (s *CatalogService) DeleteCareer(ctx context.Context, schoolID, id string) error {
	if err := s.careers.Delete(ctx, schoolID, id); err != nil {
		return lookupError(err, "career not found", "failed to delete career")
	}
	s.invalidate(ctx, schoolID, catalogCareers)
	return nil
}

func (s *CatalogService) checkSubject(ctx context.Context, schoolID string, subjectID *string) error {
	if subjectID == nil {
		return nil
	}
	if _, err := s.subjects.FindByID(ctx, schoolID, *subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "subject does not exist")
		}
		return appErrors.Internal(err, "failed to load subject")
	}
	return nil
}

func (s *CatalogService) checkSkills(ctx context.Context, schoolID string, ids []string) ([]string, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return []string{}, nil
	}
	n, err := s.skills.CountExisting(ctx, schoolID, unique)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check skills")
	}
	if n != len(unique) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "one or more skills do not exist")
	}
	return unique, nil
}

func (s *CatalogService) invalidate(ctx context.Context, schoolID, kind string) {
	if s.cache == nil {
		return
	}
	// invalidation failures are already logged by the cache; entries expire on their own
	_ = s.cache.Invalidate(ctx, catalogPattern(schoolID, kind))
}

func listCatalog[T any](ctx context.Context, s *CatalogService, kind string, filter models.CatalogFilter, load func(context.Context, models.CatalogFilter) ([]T, int, error)) ([]T, int, error) {
	filter.Page = filter.Page.Normalize()
	key := catalogKey(kind, filter)

	if s.cache != nil {
		var cached cachedPage[T]
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached.Items, cached.Total, nil
		}
	}

	items, total, err := load(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Internal(err, "failed to list "+kind)
	}
	if items == nil {
		items = []T{}
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, cachedPage[T]{Items: items, Total: total}, s.cacheTTL)
	}
	return items, total, nil
}

func catalogKey(kind string, filter models.CatalogFilter) string {
	return fmt.Sprintf("catalog:%s:%s:%d:%d:%s", filter.SchoolID, kind, filter.Page.Page, filter.Page.PageSize, strings.ToLower(filter.Search))
}

func catalogPattern(schoolID, kind string) string {
	return fmt.Sprintf("catalog:%s:%s:*", schoolID, kind)
}

func catalogWriteError(err error, conflictMsg, internalMsg string) error {
	if repository.IsUniqueViolation(err) {
		return appErrors.Clone(appErrors.ErrConflict, conflictMsg)
	}
	return appErrors.Internal(err, internalMsg)
}

// lookupError maps sql.ErrNoRows to NotFound and wraps anything else as internal.
func lookupError(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMsg)
	}
	return appErrors.Internal(err, internalMsg)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

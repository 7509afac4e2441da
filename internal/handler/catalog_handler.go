package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	"github.com/noah-isme/sma-classroom-api/pkg/response"
)

type catalogService interface {
	ListSubjects(ctx context.Context, filter models.CatalogFilter) ([]models.Subject, int, error)
	CreateSubject(ctx context.Context, schoolID string, req dto.CreateSubjectRequest) (*models.Subject, error)
	UpdateSubject(ctx context.Context, schoolID string, req dto.UpdateSubjectRequest) (*models.Subject, error)
	DeleteSubject(ctx context.Context, schoolID, id string) error
	ListSkills(ctx context.Context, filter models.CatalogFilter) ([]models.Skill, int, error)
	CreateSkill(ctx context.Context, schoolID string, req dto.CreateSkillRequest) (*models.Skill, error)
	UpdateSkill(ctx context.Context, schoolID string, req dto.UpdateSkillRequest) (*models.Skill, error)
	DeleteSkill(ctx context.Context, schoolID, id string) error
	ListCareers(ctx context.Context, filter models.CatalogFilter) ([]models.Career, int, error)
	CreateCareer(ctx context.Context, schoolID string, req dto.CreateCareerRequest) (*models.Career, error)
	UpdateCareer(ctx context.Context, schoolID string, req dto.UpdateCareerRequest) (*models.Career, error)
	DeleteCareer(ctx context.Context, schoolID, id string) error
}

// CatalogHandler exposes subject, skill and career endpoints.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

func (h *CatalogHandler) filter(c *gin.Context) (models.CatalogFilter, bool) {
	identity, ok := identityFromContext(c)
	if !ok {
		return models.CatalogFilter{}, false
	}
	var query dto.ListQuery
	if !bind(c, &query) {
		return models.CatalogFilter{}, false
	}
	return models.CatalogFilter{
		SchoolID: identity.SchoolID,
		Search:   query.Search,
		Page:     models.Page{Page: query.Page, PageSize: query.Limit}.Normalize(),
	}, true
}

// ListSubjects godoc
// @Summary List subjects
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name or code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /subjects [get]
func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}
	items, total, err := h.service.ListSubjects(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination(filter.Page, total))
}

// CreateSubject godoc
// @Summary Create subject
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /subjects [post]
func (h *CatalogHandler) CreateSubject(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateSubjectRequest
	if !bind(c, &req) {
		return
	}
	subject, err := h.service.CreateSubject(c.Request.Context(), identity.SchoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// UpdateSubject godoc
// @Summary Update subject
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject ID"
// @Param payload body dto.UpdateSubjectBody true "Subject changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id} [patch]
func (h *CatalogHandler) UpdateSubject(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateSubjectRequest
	if !bind(c, &req) {
		return
	}
	subject, err := h.service.UpdateSubject(c.Request.Context(), identity.SchoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// DeleteSubject godoc
// @Summary Delete subject
// @Tags Catalog
// @Security BearerAuth
// @Param id path string true "Subject ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id} [delete]
func (h *CatalogHandler) DeleteSubject(c *gin.Context) {
	h.delete(c, h.service.DeleteSubject)
}

// ListSkills godoc
// @Summary List skills
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /skills [get]
func (h *CatalogHandler) ListSkills(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}
	items, total, err := h.service.ListSkills(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination(filter.Page, total))
}

// CreateSkill godoc
// @Summary Create skill
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSkillRequest true "Skill payload"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /skills [post]
func (h *CatalogHandler) CreateSkill(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateSkillRequest
	if !bind(c, &req) {
		return
	}
	skill, err := h.service.CreateSkill(c.Request.Context(), identity.SchoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, skill)
}

// UpdateSkill godoc
// @Summary Update skill
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Skill ID"
// @Param payload body dto.UpdateSkillBody true "Skill changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /skills/{id} [patch]
func (h *CatalogHandler) UpdateSkill(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateSkillRequest
	if !bind(c, &req) {
		return
	}
	skill, err := h.service.UpdateSkill(c.Request.Context(), identity.SchoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, skill, nil)
}

// DeleteSkill godoc
// @Summary Delete skill
// @Tags Catalog
// @Security BearerAuth
// @Param id path string true "Skill ID"
// @Success 204
// @Router /skills/{id} [delete]
func (h *CatalogHandler) DeleteSkill(c *gin.Context) {
	h.delete(c, h.service.DeleteSkill)
}

// ListCareers godoc
// @Summary List careers
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /careers [get]
func (h *CatalogHandler) ListCareers(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}
	items, total, err := h.service.ListCareers(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination(filter.Page, total))
}

// CreateCareer godoc
// @Summary Create career
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateCareerRequest true "Career payload"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /careers [post]
func (h *CatalogHandler) CreateCareer(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateCareerRequest
	if !bind(c, &req) {
		return
	}
	career, err := h.service.CreateCareer(c.Request.Context(), identity.SchoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, career)
}

// UpdateCareer godoc
// @Summary Update career
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Career ID"
// @Param payload body dto.UpdateCareerBody true "Career changes"
// @Success 200 {object} response.Envelope
// @Router /careers/{id} [patch]
func (h *CatalogHandler) UpdateCareer(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateCareerRequest
	if !bind(c, &req) {
		return
	}
	career, err := h.service.UpdateCareer(c.Request.Context(), identity.SchoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, career, nil)
}

// DeleteCareer godoc
// @Summary Delete career
// @Tags Catalog
// @Security BearerAuth
// @Param id path string true "Career ID"
// @Success 204
// @Router /careers/{id} [delete]
func (h *CatalogHandler) DeleteCareer(c *gin.Context) {
	h.delete(c, h.service.DeleteCareer)
}

func (h *CatalogHandler) delete(c *gin.Context, remove func(ctx context.Context, schoolID, id string) error) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var param dto.IDParam
	if !bind(c, &param) {
		return
	}
	if err := remove(c.Request.Context(), identity.SchoolID, param.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	"github.com/noah-isme/sma-classroom-api/pkg/response"
)

type gradeService interface {
	Grade(ctx context.Context, actor *models.Identity, req dto.GradeSubmissionRequest) (*models.Grade, error)
	ListMine(ctx context.Context, actor *models.Identity) ([]models.StudentGrade, error)
}

// GradeHandler exposes grading endpoints.
type GradeHandler struct {
	service gradeService
}

// NewGradeHandler constructs a grade handler.
func NewGradeHandler(svc gradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// Grade godoc
// @Summary Grade a submission
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param payload body dto.GradeSubmissionBody true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /assignments/{id}/grades [post]
func (h *GradeHandler) Grade(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.GradeSubmissionRequest
	if !bind(c, &req) {
		return
	}
	grade, err := h.service.Grade(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// ListMine godoc
// @Summary List my grades
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /grades/me [get]
func (h *GradeHandler) ListMine(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	grades, err := h.service.ListMine(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

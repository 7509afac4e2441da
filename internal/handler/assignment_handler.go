package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
	"github.com/noah-isme/sma-classroom-api/pkg/response"
)

// attachmentField is the multipart field carrying submission files.
const attachmentField = "file"

type assignmentService interface {
	List(ctx context.Context, actor *models.Identity, query dto.ListAssignmentsQuery) ([]models.Assignment, models.Page, int, error)
	Get(ctx context.Context, actor *models.Identity, id string) (*models.Assignment, error)
	Create(ctx context.Context, actor *models.Identity, req dto.CreateAssignmentRequest) (*models.Assignment, error)
	Update(ctx context.Context, actor *models.Identity, req dto.UpdateAssignmentRequest) (*models.Assignment, error)
	Submit(ctx context.Context, actor *models.Identity, req dto.SubmitAssignmentRequest) (*models.Submission, error)
	UploadAttachment(ctx context.Context, actor *models.Identity, params dto.SubmissionParams, filename string, r io.Reader) (*dto.SubmissionAttachmentResponse, error)
}

// AssignmentHandler exposes assignment and submission endpoints.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs an assignment handler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param subjectId query string false "Subject filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var query dto.ListAssignmentsQuery
	if !bind(c, &query) {
		return
	}
	items, page, total, err := h.service.List(c.Request.Context(), identity, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination(page, total))
}

// Get godoc
// @Summary Get assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var param dto.IDParam
	if !bind(c, &param) {
		return
	}
	assignment, err := h.service.Get(c.Request.Context(), identity, param.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateAssignmentRequest
	if !bind(c, &req) {
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Update assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param payload body dto.UpdateAssignmentBody true "Assignment changes"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /assignments/{id} [patch]
func (h *AssignmentHandler) Update(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateAssignmentRequest
	if !bind(c, &req) {
		return
	}
	assignment, err := h.service.Update(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Submit godoc
// @Summary Submit assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param payload body dto.SubmitAssignmentBody true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/submissions [post]
func (h *AssignmentHandler) Submit(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.SubmitAssignmentRequest
	if !bind(c, &req) {
		return
	}
	submission, err := h.service.Submit(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// UploadAttachment godoc
// @Summary Upload submission attachment
// @Tags Assignments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param submissionId path string true "Submission ID"
// @Param file formData file true "Attachment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments/{id}/submissions/{submissionId}/attachment [post]
func (h *AssignmentHandler) UploadAttachment(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var params dto.SubmissionParams
	if !bind(c, &params) {
		return
	}
	header, err := c.FormFile(attachmentField)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read upload"))
		return
	}
	defer file.Close()

	res, err := h.service.UploadAttachment(c.Request.Context(), identity, params, header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

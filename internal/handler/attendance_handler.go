package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	"github.com/noah-isme/sma-classroom-api/internal/service"
	"github.com/noah-isme/sma-classroom-api/pkg/response"
)

type attendanceService interface {
	Create(ctx context.Context, actor *models.Identity, req dto.CreateAttendanceRequest) (*models.AttendanceRow, error)
	UpdateRecord(ctx context.Context, actor *models.Identity, req dto.UpdateAttendanceRecordRequest) (*models.AttendanceRecord, error)
	Export(ctx context.Context, actor *models.Identity, query dto.ExportAttendanceQuery) (*service.ExportFile, error)
}

// AttendanceHandler exposes roll call endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Create godoc
// @Summary Record attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Create(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateAttendanceRequest
	if !bind(c, &req) {
		return
	}
	row, err := h.service.Create(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}

// UpdateRecord godoc
// @Summary Update a student's attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attendanceRowId path string true "Attendance row ID"
// @Param payload body dto.AttendanceRecordInput true "Record payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/{attendanceRowId}/records [patch]
func (h *AttendanceHandler) UpdateRecord(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateAttendanceRecordRequest
	if !bind(c, &req) {
		return
	}
	record, err := h.service.UpdateRecord(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Export godoc
// @Summary Export attendance
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param attendanceRowId path string true "Attendance row ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /attendance/{attendanceRowId}/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var query dto.ExportAttendanceQuery
	if !bind(c, &query) {
		return
	}
	file, err := h.service.Export(c.Request.Context(), identity, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

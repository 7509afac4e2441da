package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	"github.com/noah-isme/sma-classroom-api/pkg/response"
)

type memberService interface {
	List(ctx context.Context, actor *models.Identity, query dto.ListMembersQuery) ([]models.SchoolMember, error)
	Add(ctx context.Context, actor *models.Identity, req dto.AddMemberRequest) (*models.SchoolMember, error)
	Remove(ctx context.Context, actor *models.Identity, params dto.RemoveMemberParams) error
}

// MemberHandler manages school memberships.
type MemberHandler struct {
	service memberService
}

// NewMemberHandler constructs a member handler.
func NewMemberHandler(svc memberService) *MemberHandler {
	return &MemberHandler{service: svc}
}

// List godoc
// @Summary List school members
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param role query string false "Filter by role"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /schools/{schoolId}/members [get]
func (h *MemberHandler) List(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var query dto.ListMembersQuery
	if !bind(c, &query) {
		return
	}
	members, err := h.service.List(c.Request.Context(), identity, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}

// Add godoc
// @Summary Add school member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param payload body dto.AddMemberBody true "Member payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schools/{schoolId}/members [post]
func (h *MemberHandler) Add(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.AddMemberRequest
	if !bind(c, &req) {
		return
	}
	member, err := h.service.Add(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Remove godoc
// @Summary Remove school member
// @Tags Members
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param memberId path string true "Member ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /schools/{schoolId}/members/{memberId} [delete]
func (h *MemberHandler) Remove(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var params dto.RemoveMemberParams
	if !bind(c, &params) {
		return
	}
	if err := h.service.Remove(c.Request.Context(), identity, params); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

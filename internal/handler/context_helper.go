package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-classroom-api/internal/middleware"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
	"github.com/noah-isme/sma-classroom-api/pkg/response"
)

// identityFromContext returns the guard's identity or writes 401.
func identityFromContext(c *gin.Context) (*models.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return identity, true
}

// bind decodes the validated request into dst or writes the error.
func bind(c *gin.Context, dst any) bool {
	if err := middleware.Bind(c, dst); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}

func pagination(page models.Page, total int) *response.Pagination {
	page = page.Normalize()
	return &response.Pagination{Page: page.Page, PageSize: page.PageSize, TotalCount: total}
}

package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
	"github.com/noah-isme/sma-classroom-api/pkg/response"
	"github.com/noah-isme/sma-classroom-api/pkg/storage"
)

type tokenParser interface {
	Parse(token string) (storage.SignedFile, error)
}

type fileOpener interface {
	Open(name string) (io.ReadCloser, error)
}

// FileHandler streams stored attachments behind signed tokens. The token is
// the authorization, so the route carries no guard.
type FileHandler struct {
	signer tokenParser
	files  fileOpener
	logger *zap.Logger
}

// NewFileHandler constructs a file handler.
func NewFileHandler(signer tokenParser, files fileOpener, logger *zap.Logger) *FileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHandler{signer: signer, files: files, logger: logger}
}

// Download godoc
// @Summary Download a signed file
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{token} [get]
func (h *FileHandler) Download(c *gin.Context) {
	var param dto.FileTokenParam
	if !bind(c, &param) {
		return
	}
	signed, err := h.signer.Parse(param.Token)
	switch {
	case errors.Is(err, storage.ErrTokenExpired):
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "download link expired"))
		return
	case err != nil:
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invalid download link"))
		return
	}

	file, err := h.files.Open(signed.Path)
	if err != nil {
		h.logger.Warn("signed file unavailable", zap.String("resource_id", signed.ResourceID), zap.Error(err))
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", "attachment; filename=\""+filepath.Base(signed.Path)+"\"")
	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", file, nil)
}

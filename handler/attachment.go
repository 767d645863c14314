package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"contracthub/middleware"
	"contracthub/pkg/apperr"
	"contracthub/service"
)

type AttachmentHandler struct {
	attachments *service.AttachmentService
}

func NewAttachmentHandler(attachments *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Upload handles POST /contracts/:id/attachments (multipart field "file").
func (h *AttachmentHandler) Upload(c *gin.Context) {
	contractID, err := parseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		fail(c, apperr.Validation("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	attachment, err := h.attachments.Upload(
		c.Request.Context(),
		contractID,
		file,
		header.Size,
		header.Filename,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "attachment uploaded", attachment)
}

// Download handles GET /contracts/attachments/:attachmentId, streaming the
// stored bytes with the original filename in the disposition header.
func (h *AttachmentHandler) Download(c *gin.Context) {
	id, err := parseID(c.Param("attachmentId"))
	if err != nil {
		fail(c, err)
		return
	}

	attachment, stream, err := h.attachments.GetForDownload(c.Request.Context(), id, middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	defer stream.Close()

	disposition := fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(attachment.FileName))
	c.DataFromReader(http.StatusOK, attachment.FileSize, attachment.MimeType, stream, map[string]string{
		"Content-Disposition": disposition,
	})
}

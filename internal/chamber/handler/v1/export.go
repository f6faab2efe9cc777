package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/export"
	"github.com/kiosk404/roundtable/internal/pkg/core"
)

// ExportHandler handles whole-meeting exports.
type ExportHandler struct {
	svc service.MeetingService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc service.MeetingService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Meeting handles GET /v1/meetings/:id/export?format=markdown|json.
func (h *ExportHandler) Meeting(c *gin.Context) {
	id := c.Param("id")
	format := c.DefaultQuery("format", "markdown")

	meeting, err := h.svc.GetMeeting(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMeetingNotFound, "meeting %q not found", id), nil)
		return
	}

	switch format {
	case "markdown":
		c.Data(http.StatusOK, "text/markdown", []byte(export.MeetingMarkdown(meeting)))
	case "json":
		data, err := export.MeetingJSON(meeting)
		if err != nil {
			core.WriteResponse(c, wrapDomain(err, ErrExportRender, "export meeting %q as json", id), nil)
			return
		}
		c.Data(http.StatusOK, "application/json", data)
	default:
		core.WriteResponse(c, wrapDomain(
			errno.Validationf("unknown meeting export format %q", format),
			ErrExportFormat, "export meeting %q", id), nil)
	}
}

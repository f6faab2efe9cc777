package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/export"
	"github.com/kiosk404/roundtable/internal/pkg/core"
	"github.com/kiosk404/roundtable/pkg/errorx"
)

// MindMapHandler handles mind-map generation, editing, and export.
type MindMapHandler struct {
	svc service.MeetingService
}

// NewMindMapHandler creates a new MindMapHandler.
func NewMindMapHandler(svc service.MeetingService) *MindMapHandler {
	return &MindMapHandler{svc: svc}
}

// Generate handles POST /v1/meetings/:id/mindmap.
func (h *MindMapHandler) Generate(c *gin.Context) {
	id := c.Param("id")

	var req GenerateMindMapRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind mind map request"), nil)
			return
		}
	}

	mm, err := h.svc.GenerateMindMap(c.Request.Context(), id, req.GeneratorID)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMindMapGenerate, "generate mind map for meeting %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, mm)
}

// Get handles GET /v1/meetings/:id/mindmap.
func (h *MindMapHandler) Get(c *gin.Context) {
	id := c.Param("id")
	meeting, err := h.svc.GetMeeting(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMeetingNotFound, "meeting %q not found", id), nil)
		return
	}
	if meeting.MindMap == nil {
		core.WriteResponse(c, wrapDomain(errno.ErrMindMapNotFound, ErrMindMapNotFound, "no mind map for meeting %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, meeting.MindMap)
}

// Update handles PUT /v1/meetings/:id/mindmap: stores a user-edited tree
// after validating it against the meeting.
func (h *MindMapHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req UpdateMindMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind mind map request"), nil)
		return
	}

	mm, err := h.svc.UpdateMindMap(c.Request.Context(), id, req.MindMap)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMindMapUpdate, "update mind map for meeting %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, mm)
}

// Export handles GET /v1/meetings/:id/mindmap/export?format=png|svg|json|markdown.
func (h *MindMapHandler) Export(c *gin.Context) {
	id := c.Param("id")
	format := export.MindMapFormat(c.DefaultQuery("format", "json"))

	meeting, err := h.svc.GetMeeting(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMeetingNotFound, "meeting %q not found", id), nil)
		return
	}
	if meeting.MindMap == nil {
		core.WriteResponse(c, wrapDomain(errno.ErrMindMapNotFound, ErrMindMapNotFound, "no mind map for meeting %q", id), nil)
		return
	}

	data, contentType, err := export.RenderMindMap(meeting.MindMap, format)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrExportRender, "render mind map as %s", format), nil)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

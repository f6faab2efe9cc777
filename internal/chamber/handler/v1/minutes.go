package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/internal/pkg/core"
	"github.com/kiosk404/roundtable/pkg/errorx"
)

// MinutesHandler handles minutes generation and versioning endpoints.
type MinutesHandler struct {
	svc service.MeetingService
}

// NewMinutesHandler creates a new MinutesHandler.
func NewMinutesHandler(svc service.MeetingService) *MinutesHandler {
	return &MinutesHandler{svc: svc}
}

// Generate handles POST /v1/meetings/:id/minutes.
func (h *MinutesHandler) Generate(c *gin.Context) {
	id := c.Param("id")

	var req GenerateMinutesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind minutes request"), nil)
			return
		}
	}

	version, err := h.svc.GenerateMinutes(c.Request.Context(), id, req.GeneratorID)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMinutesGenerate, "generate minutes for meeting %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, toMinutesResponse(version))
}

// GetCurrent handles GET /v1/meetings/:id/minutes.
func (h *MinutesHandler) GetCurrent(c *gin.Context) {
	id := c.Param("id")
	meeting, err := h.svc.GetMeeting(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMeetingNotFound, "meeting %q not found", id), nil)
		return
	}
	if meeting.CurrentMinutes == nil {
		core.WriteResponse(c, wrapDomain(errno.ErrMinutesNotFound, ErrMinutesNotFound, "no minutes for meeting %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, toMinutesResponse(meeting.CurrentMinutes))
}

// Update handles PUT /v1/meetings/:id/minutes: a manual edit stored as a
// new version.
func (h *MinutesHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req UpdateMinutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind minutes request"), nil)
		return
	}

	version, err := h.svc.UpdateMinutes(c.Request.Context(), id, req.Content, req.EditorID)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMinutesUpdate, "update minutes for meeting %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, toMinutesResponse(version))
}

// History handles GET /v1/meetings/:id/minutes/history.
func (h *MinutesHandler) History(c *gin.Context) {
	id := c.Param("id")
	versions, err := h.svc.MinutesHistory(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMeetingNotFound, "meeting %q not found", id), nil)
		return
	}

	resp := make([]*MinutesResponse, 0, len(versions))
	for _, v := range versions {
		resp = append(resp, toMinutesResponse(v))
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}

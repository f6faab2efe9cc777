package v1

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service"
	"github.com/kiosk404/roundtable/internal/pkg/core"
	"github.com/kiosk404/roundtable/pkg/errorx"
)

// MeetingHandler handles meeting lifecycle and agenda REST endpoints.
type MeetingHandler struct {
	svc service.MeetingService
}

// NewMeetingHandler creates a new MeetingHandler.
func NewMeetingHandler(svc service.MeetingService) *MeetingHandler {
	return &MeetingHandler{svc: svc}
}

// Create handles POST /v1/meetings.
func (h *MeetingHandler) Create(c *gin.Context) {
	var req CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind meeting request"), nil)
		return
	}

	createReq := &service.CreateMeetingRequest{
		Topic:          req.Topic,
		ParticipantIDs: req.ParticipantIDs,
		Config:         req.Config,
	}
	if req.Moderator != nil {
		createReq.Moderator = entity.Moderator{
			Type: entity.ModeratorType(req.Moderator.Type),
			ID:   req.Moderator.ID,
		}
	}
	for _, item := range req.Agenda {
		createReq.Agenda = append(createReq.Agenda, service.AgendaItemSpec{
			Title:       item.Title,
			Description: item.Description,
		})
	}

	meeting, err := h.svc.CreateMeeting(c.Request.Context(), createReq)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMeetingCreate, "create meeting"), nil)
		return
	}
	core.WriteResponse(c, nil, toMeetingResponse(meeting))
}

// List handles GET /v1/meetings.
func (h *MeetingHandler) List(c *gin.Context) {
	meetings, err := h.svc.ListMeetings(c.Request.Context())
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMeetingList, "list meetings"), nil)
		return
	}

	resp := make([]MeetingSummaryResponse, 0, len(meetings))
	for _, m := range meetings {
		resp = append(resp, toMeetingSummaryResponse(m))
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}

// Get handles GET /v1/meetings/:id.
func (h *MeetingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	meeting, err := h.svc.GetMeeting(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMeetingNotFound, "meeting %q not found", id), nil)
		return
	}
	core.WriteResponse(c, nil, toMeetingResponse(meeting))
}

// Delete handles DELETE /v1/meetings/:id.
func (h *MeetingHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.DeleteMeeting(c.Request.Context(), id); err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMeetingDelete, "delete meeting %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"id": id, "deleted": true})
}

// Start handles POST /v1/meetings/:id/start.
func (h *MeetingHandler) Start(c *gin.Context) {
	h.transition(c, "start", h.svc.StartMeeting)
}

// Pause handles POST /v1/meetings/:id/pause.
func (h *MeetingHandler) Pause(c *gin.Context) {
	h.transition(c, "pause", h.svc.PauseMeeting)
}

// End handles POST /v1/meetings/:id/end. The optional body controls
// whether a final minutes version is generated first.
func (h *MeetingHandler) End(c *gin.Context) {
	id := c.Param("id")

	var req EndMeetingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind end meeting request"), nil)
			return
		}
	}
	autoMinutes := true
	if req.AutoGenerateMinutes != nil {
		autoMinutes = *req.AutoGenerateMinutes
	}

	if err := h.svc.EndMeeting(c.Request.Context(), id, autoMinutes); err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMeetingTransition, "end meeting %q", id), nil)
		return
	}
	h.respondWithMeeting(c, id)
}

// UpdateConfig handles PUT /v1/meetings/:id/config.
func (h *MeetingHandler) UpdateConfig(c *gin.Context) {
	id := c.Param("id")
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind config request"), nil)
		return
	}

	if err := h.svc.UpdateConfig(c.Request.Context(), id, req.Config); err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrConfigUpdate, "update config for meeting %q", id), nil)
		return
	}
	h.respondWithMeeting(c, id)
}

// AddAgendaItem handles POST /v1/meetings/:id/agenda.
func (h *MeetingHandler) AddAgendaItem(c *gin.Context) {
	id := c.Param("id")
	var req AgendaItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind agenda request"), nil)
		return
	}

	item, err := h.svc.AddAgendaItem(c.Request.Context(), id, req.Title, req.Description)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrAgendaAdd, "add agenda item to meeting %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, toAgendaItemResponse(item))
}

// CompleteAgendaItem handles POST /v1/meetings/:id/agenda/:item_id/complete.
func (h *MeetingHandler) CompleteAgendaItem(c *gin.Context) {
	id := c.Param("id")
	itemID := c.Param("item_id")
	if err := h.svc.MarkAgendaCompleted(c.Request.Context(), id, itemID); err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrAgendaUpdate, "complete agenda item %q", itemID), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"id": itemID, "completed": true})
}

// RemoveAgendaItem handles DELETE /v1/meetings/:id/agenda/:item_id.
func (h *MeetingHandler) RemoveAgendaItem(c *gin.Context) {
	id := c.Param("id")
	itemID := c.Param("item_id")
	if err := h.svc.RemoveAgendaItem(c.Request.Context(), id, itemID); err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrAgendaUpdate, "remove agenda item %q", itemID), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"id": itemID, "deleted": true})
}

func (h *MeetingHandler) transition(c *gin.Context, verb string, fn func(ctx context.Context, id string) error) {
	id := c.Param("id")
	if err := fn(c.Request.Context(), id); err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMeetingTransition, "%s meeting %q", verb, id), nil)
		return
	}
	h.respondWithMeeting(c, id)
}

func (h *MeetingHandler) respondWithMeeting(c *gin.Context, id string) {
	meeting, err := h.svc.GetMeeting(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMeetingNotFound, "meeting %q not found", id), nil)
		return
	}
	core.WriteResponse(c, nil, toMeetingResponse(meeting))
}

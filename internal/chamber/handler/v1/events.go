package v1

import (
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service"
	"github.com/kiosk404/roundtable/internal/pkg/core"
	"github.com/kiosk404/roundtable/pkg/logger"
)

// EventsHandler exposes a meeting's live event stream over SSE.
type EventsHandler struct {
	svc service.MeetingService
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(svc service.MeetingService) *EventsHandler {
	return &EventsHandler{svc: svc}
}

// Subscribe handles GET /v1/meetings/:id/events. Events produced after the
// subscription are relayed until the client disconnects or the subscriber
// is evicted for lagging.
func (h *EventsHandler) Subscribe(c *gin.Context) {
	id := c.Param("id")

	events, cancel, err := h.svc.SubscribeEvents(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrSubscribe, "subscribe to meeting %q", id), nil)
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	w := c.Writer

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				// Hub closed the channel: eviction or meeting deletion.
				return
			}
			if err := sse.Encode(w, sse.Event{
				Event: string(event.Type),
				Data:  event,
			}); err != nil {
				logger.Warn("[Chamber] encode SSE event: %v", err)
				return
			}
			w.Flush()
		}
	}
}

package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service/runtime"
	"github.com/kiosk404/roundtable/internal/pkg/core"
	"github.com/kiosk404/roundtable/pkg/errorx"
	"github.com/kiosk404/roundtable/pkg/logger"
	"github.com/kiosk404/roundtable/pkg/utils/json"
	"github.com/kiosk404/roundtable/pkg/utils/safego"
)

// TurnHandler handles conversation endpoints: user messages, agent turns,
// full rounds, and turn cancellation.
type TurnHandler struct {
	svc service.MeetingService
}

// NewTurnHandler creates a new TurnHandler.
func NewTurnHandler(svc service.MeetingService) *TurnHandler {
	return &TurnHandler{svc: svc}
}

// AddMessage handles POST /v1/meetings/:id/messages.
func (h *TurnHandler) AddMessage(c *gin.Context) {
	id := c.Param("id")
	var req AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind message request"), nil)
		return
	}

	msg, err := h.svc.AddUserMessage(c.Request.Context(), id, req.Content)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrMessageAdd, "add message to meeting %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, toMessageResponse(msg))
}

// RequestTurn handles POST /v1/meetings/:id/turns.
//
// With stream=false the handler blocks until the turn (and any mention
// chain) finishes and returns the speaker's message. With stream=true it
// relays the turn's deltas over SSE and closes the stream once the turn
// resolves.
func (h *TurnHandler) RequestTurn(c *gin.Context) {
	id := c.Param("id")
	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind turn request"), nil)
		return
	}

	if req.Stream {
		h.streamTurn(c, id, req.AgentID)
		return
	}

	msg, err := h.svc.RequestTurn(c.Request.Context(), id, req.AgentID, runtime.TurnBlocking)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrTurnRun, "run turn for agent %q", req.AgentID), nil)
		return
	}
	core.WriteResponse(c, nil, toMessageResponse(msg))
}

// RunRound handles POST /v1/meetings/:id/rounds. Every participant gets
// one turn in the configured speaking order; the produced messages are
// returned once the round finishes.
func (h *TurnHandler) RunRound(c *gin.Context) {
	id := c.Param("id")
	msgs, err := h.svc.RunRound(c.Request.Context(), id, runtime.TurnBlocking)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrRoundRun, "run round for meeting %q", id), nil)
		return
	}

	resp := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, toMessageResponse(m))
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}

// StopTurn handles POST /v1/meetings/:id/turns/stop. Stopping an idle
// meeting is a no-op.
func (h *TurnHandler) StopTurn(c *gin.Context) {
	id := c.Param("id")
	h.svc.StopTurn(id)
	core.WriteResponse(c, nil, gin.H{"id": id, "stopped": true})
}

// turnOutcome carries the result of an asynchronous turn back to the SSE
// relay loop.
type turnOutcome struct {
	msg *entity.Message
	err error
}

// streamTurn subscribes to the meeting's event stream, launches the turn
// in streaming mode, and relays its deltas as SSE data records. The stream
// ends with a terminal "message" or "error" record and a [DONE] sentinel.
func (h *TurnHandler) streamTurn(c *gin.Context, meetingID, agentID string) {
	events, cancel, err := h.svc.SubscribeEvents(c.Request.Context(), meetingID)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrSubscribe, "subscribe to meeting %q", meetingID), nil)
		return
	}
	defer cancel()

	done := make(chan turnOutcome, 1)
	safego.Go(c.Request.Context(), func() {
		msg, runErr := h.svc.RequestTurn(c.Request.Context(), meetingID, agentID, runtime.TurnStreaming)
		done <- turnOutcome{msg: msg, err: runErr}
	})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	w := c.Writer

	for {
		select {
		case <-c.Request.Context().Done():
			// Client went away; the turn keeps running server-side until
			// its own context or an explicit stop cancels it.
			return

		case event, ok := <-events:
			if !ok {
				writeSSERecord(w, gin.H{"type": "error", "content": "event stream closed"})
				fmt.Fprintf(w, "data: [DONE]\n\n")
				w.Flush()
				return
			}
			h.relayEvent(c, event, agentID)

		case outcome := <-done:
			if outcome.err != nil {
				writeSSERecord(w, gin.H{"type": "error", "content": outcome.err.Error()})
			} else {
				writeSSERecord(w, gin.H{"type": "message", "message": toMessageResponse(outcome.msg)})
			}
			fmt.Fprintf(w, "data: [DONE]\n\n")
			w.Flush()
			return
		}
	}
}

// relayEvent forwards the subset of meeting events a turn stream cares
// about: this speaker's deltas and turn failures.
func (h *TurnHandler) relayEvent(c *gin.Context, event *entity.MeetingEvent, agentID string) {
	switch event.Type {
	case entity.EventStreamingDelta:
		if event.SpeakerID != agentID || event.Delta == nil {
			return
		}
		writeSSERecord(c.Writer, gin.H{
			"type":    string(event.Delta.Kind),
			"content": event.Delta.Text,
		})
	case entity.EventTurnFailed:
		if event.SpeakerID != agentID {
			return
		}
		writeSSERecord(c.Writer, gin.H{
			"type":    "error",
			"content": event.ErrorKind,
		})
	}
}

func writeSSERecord(w gin.ResponseWriter, record gin.H) {
	data, err := json.Marshal(record)
	if err != nil {
		logger.Warn("[Chamber] marshal SSE record: %v", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	w.Flush()
}

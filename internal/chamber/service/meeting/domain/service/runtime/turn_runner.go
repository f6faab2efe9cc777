package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/repo"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/broadcast"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm"
	"github.com/kiosk404/roundtable/pkg/logger"
)

// TurnMode selects how model output is consumed.
type TurnMode string

const (
	// TurnBlocking waits for the full completion.
	TurnBlocking TurnMode = "blocking"

	// TurnStreaming fans deltas out to event subscribers as they arrive.
	TurnStreaming TurnMode = "streaming"
)

// truncationMarker is appended when content is cut at max_message_length.
const truncationMarker = " …[truncated]"

// TurnResult is the outcome of one successful turn.
type TurnResult struct {
	Message *entity.Message

	// Meeting is the saved aggregate after the turn; the coordinator
	// resolves chain targets against it.
	Meeting *entity.Meeting
}

// TurnRunner executes exactly one AI turn end to end: reload the meeting,
// build context, call the model, assemble the message, advance round
// bookkeeping, save, emit events.
//
// The caller must hold the meeting's coordinator lock; the save in step 10
// is the commit point, and a failed save discards the in-memory mutation.
type TurnRunner struct {
	meetings repo.MeetingRepository
	adapters llm.AdapterFactory
	builder  *ContextBuilder
	hub      *broadcast.Hub
}

// NewTurnRunner creates a TurnRunner.
func NewTurnRunner(meetings repo.MeetingRepository, adapters llm.AdapterFactory, builder *ContextBuilder, hub *broadcast.Hub) *TurnRunner {
	return &TurnRunner{
		meetings: meetings,
		adapters: adapters,
		builder:  builder,
		hub:      hub,
	}
}

// ExecuteTurn runs one turn of the given speaker.
//
// On any failure no message is appended; streaming subscribers receive a
// turn_failed event carrying the error classification.
func (r *TurnRunner) ExecuteTurn(ctx context.Context, meetingID, speakerID string, mode TurnMode, abort *AbortController) (*TurnResult, error) {
	meeting, err := r.meetings.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if meeting.Status != entity.StatusActive {
		return nil, fmt.Errorf("%w: cannot execute turn in %s state", errno.ErrMeetingNotActive, meeting.Status)
	}
	if RoundLimitReached(meeting) {
		return nil, errno.ErrMaxRoundsReached
	}

	speaker := meeting.FindParticipant(speakerID)
	if speaker == nil {
		return nil, fmt.Errorf("%w: agent %s in meeting %s", errno.ErrNotParticipant, speakerID, meetingID)
	}

	prompt := r.builder.Build(meeting, speaker)

	adapter, err := r.adapters.Build(abort.Context(), &speaker.ModelConfig)
	if err != nil {
		r.emitTurnFailed(meetingID, speakerID, err)
		return nil, err
	}

	var completion *llm.Completion
	switch mode {
	case TurnStreaming:
		completion, err = r.runStreaming(meetingID, speakerID, adapter, prompt, abort)
	default:
		completion, err = adapter.Complete(abort.Context(), prompt)
	}
	if err != nil {
		if !errors.Is(err, errno.ErrTurnAborted) && !errors.Is(err, context.Canceled) {
			r.emitTurnFailed(meetingID, speakerID, err)
		}
		return nil, err
	}

	content := strings.TrimSpace(completion.Content)
	if content == "" {
		err := fmt.Errorf("%w: agent %s", errno.ErrEmptyResponse, speaker.Name)
		r.emitTurnFailed(meetingID, speakerID, err)
		return nil, err
	}
	content = truncate(content, meeting.MaxMessageLength())

	mentions := ParseMentions(content, meeting.Participants)

	msg := entity.NewAgentMessage(speaker, content, completion.ReasoningContent,
		meeting.CurrentRound, meeting.NextTimestamp(time.Now()))
	for i := range mentions {
		mentions[i].MessageID = msg.ID
	}
	msg.Mentions = mentions

	meeting.Messages = append(meeting.Messages, msg)
	meeting.UpdatedAt = time.Now()
	ended := AdvanceRound(meeting)

	if err := r.meetings.Save(ctx, meeting); err != nil {
		logger.ErrorX("meeting", "failed to save meeting %s after turn: %v", meetingID, err)
		r.hub.Publish(&entity.MeetingEvent{
			Type:      entity.EventTurnFailed,
			MeetingID: meetingID,
			SpeakerID: speakerID,
			ErrorKind: "persistence_failed",
		})
		return nil, fmt.Errorf("%w: %v", errno.ErrPersistence, err)
	}

	r.hub.Publish(&entity.MeetingEvent{
		Type:      entity.EventNewMessage,
		MeetingID: meetingID,
		MessageID: msg.ID,
	})
	if ended {
		r.hub.Publish(&entity.MeetingEvent{
			Type:      entity.EventStatusChange,
			MeetingID: meetingID,
			Status:    entity.StatusEnded,
		})
	}

	return &TurnResult{
		Message: msg,
		Meeting: meeting,
	}, nil
}

// runStreaming consumes the adapter's delta stream, fanning each chunk out
// to subscribers and accumulating the final text. The complete delta is
// guaranteed to follow all content and reasoning deltas.
func (r *TurnRunner) runStreaming(meetingID, speakerID string, adapter llm.ChatAdapter, prompt []*schema.Message, abort *AbortController) (*llm.Completion, error) {
	sr, err := adapter.Stream(abort.Context(), prompt)
	if err != nil {
		return nil, err
	}
	defer sr.Close()

	var content, reasoning strings.Builder
	for {
		if err := abort.CheckAborted(); err != nil {
			return nil, err
		}
		delta, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			r.publishDelta(meetingID, speakerID, &entity.StreamDelta{Kind: entity.DeltaError, Text: err.Error()})
			return nil, err
		}
		switch delta.Kind {
		case entity.DeltaReasoning:
			reasoning.WriteString(delta.Text)
		case entity.DeltaContent:
			content.WriteString(delta.Text)
		}
		r.publishDelta(meetingID, speakerID, delta)
	}

	r.publishDelta(meetingID, speakerID, &entity.StreamDelta{Kind: entity.DeltaComplete})

	return &llm.Completion{
		Content:          content.String(),
		ReasoningContent: reasoning.String(),
	}, nil
}

func (r *TurnRunner) publishDelta(meetingID, speakerID string, delta *entity.StreamDelta) {
	r.hub.Publish(&entity.MeetingEvent{
		Type:      entity.EventStreamingDelta,
		MeetingID: meetingID,
		SpeakerID: speakerID,
		Delta:     delta,
	})
}

func (r *TurnRunner) emitTurnFailed(meetingID, speakerID string, err error) {
	logger.WarnX("meeting", "turn failed for %s in meeting %s: %v", speakerID, meetingID, err)
	r.hub.Publish(&entity.MeetingEvent{
		Type:      entity.EventTurnFailed,
		MeetingID: meetingID,
		SpeakerID: speakerID,
		ErrorKind: string(llm.ClassifyError(err)),
	})
}

// truncate cuts content to the limit in runes, appending a single trailing
// marker exactly when truncation fired.
func truncate(content string, limit int) string {
	if limit <= 0 {
		return content
	}
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + truncationMarker
}

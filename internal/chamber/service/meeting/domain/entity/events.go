package entity

// DeltaKind tags one element of a streaming model response.
type DeltaKind string

const (
	// DeltaReasoning is a chunk of chain-of-thought text.
	DeltaReasoning DeltaKind = "reasoning"

	// DeltaContent is a chunk of answer text.
	DeltaContent DeltaKind = "content"

	// DeltaComplete terminates a successful stream.
	DeltaComplete DeltaKind = "complete"

	// DeltaError terminates a failed stream.
	DeltaError DeltaKind = "error"
)

// StreamDelta is one element of a streaming turn, fanned out to event
// subscribers while the turn is in flight. Deltas are ephemeral: only the
// final assembled message is persisted.
type StreamDelta struct {
	Kind DeltaKind `json:"type"`
	Text string    `json:"content,omitempty"`
}

// EventType identifies a meeting event.
type EventType string

const (
	// EventNewMessage fires after a message is persisted.
	EventNewMessage EventType = "new_message"

	// EventStatusChange fires on lifecycle transitions.
	EventStatusChange EventType = "status_change"

	// EventStreamingDelta carries one streaming chunk of an in-flight turn.
	EventStreamingDelta EventType = "streaming_delta"

	// EventMinutesGenerated fires when a minutes version is stored.
	EventMinutesGenerated EventType = "minutes_generated"

	// EventMindMapGenerated fires when a mind map is stored.
	EventMindMapGenerated EventType = "mind_map_generated"

	// EventTurnFailed fires when a turn aborts without producing a message.
	EventTurnFailed EventType = "turn_failed"

	// EventLagged is the terminal event delivered to a subscriber evicted
	// for falling behind.
	EventLagged EventType = "lagged"
)

// MeetingEvent is one entry on a meeting's event stream.
type MeetingEvent struct {
	// Type identifies which kind of event this is.
	Type EventType `json:"type"`

	// MeetingID is the originating meeting.
	MeetingID string `json:"meeting_id"`

	// MessageID is set for EventNewMessage.
	MessageID string `json:"message_id,omitempty"`

	// Status is set for EventStatusChange.
	Status MeetingStatus `json:"status,omitempty"`

	// SpeakerID is set for EventStreamingDelta and EventTurnFailed.
	SpeakerID string `json:"speaker_id,omitempty"`

	// Delta is set for EventStreamingDelta.
	Delta *StreamDelta `json:"delta,omitempty"`

	// MinutesVersion is set for EventMinutesGenerated.
	MinutesVersion int `json:"minutes_version,omitempty"`

	// MindMapVersion is set for EventMindMapGenerated.
	MindMapVersion int `json:"mind_map_version,omitempty"`

	// ErrorKind is the failure classification for EventTurnFailed.
	ErrorKind string `json:"error_kind,omitempty"`
}

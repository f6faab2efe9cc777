package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SpeakerType distinguishes the human user from AI participants.
type SpeakerType string

const (
	SpeakerUser  SpeakerType = "user"
	SpeakerAgent SpeakerType = "agent"
)

// Mention records that a message addressed a participant with @name.
type Mention struct {
	// MentionedParticipantID is the participant the mention resolved to.
	MentionedParticipantID string `json:"mentioned_participant_id"`

	// MentionedParticipantName is the name at resolution time.
	MentionedParticipantName string `json:"mentioned_participant_name"`

	// MessageID is the id of the message carrying the mention.
	MessageID string `json:"message_id"`
}

// Message is one utterance in a meeting. Immutable once appended.
type Message struct {
	// ID is the unique message identifier.
	ID string `json:"id"`

	// SpeakerID is "user" or a participant agent ID.
	SpeakerID string `json:"speaker_id"`

	// SpeakerName is the display name at the time of speaking.
	SpeakerName string `json:"speaker_name"`

	// SpeakerType tags who produced the message.
	SpeakerType SpeakerType `json:"speaker_type"`

	// Content is the trimmed message text.
	Content string `json:"content"`

	// ReasoningContent is separately captured chain-of-thought, when the
	// provider emits it. Never fed back into prompts.
	ReasoningContent string `json:"reasoning_content,omitempty"`

	// Timestamp is monotonic with respect to earlier messages in the
	// same meeting.
	Timestamp time.Time `json:"timestamp"`

	// RoundNumber is the meeting's current_round at creation time.
	RoundNumber int `json:"round_number"`

	// Mentions are the @-mentions parsed from Content, in document order.
	Mentions []Mention `json:"mentions,omitempty"`
}

// NewUserMessage creates a user message stamped into the given round.
func NewUserMessage(content string, round int, ts time.Time) *Message {
	return &Message{
		ID:          uuid.New().String(),
		SpeakerID:   "user",
		SpeakerName: "User",
		SpeakerType: SpeakerUser,
		Content:     content,
		Timestamp:   ts,
		RoundNumber: round,
	}
}

// NewAgentMessage creates an agent message stamped into the given round.
func NewAgentMessage(speaker *Agent, content, reasoning string, round int, ts time.Time) *Message {
	return &Message{
		ID:               uuid.New().String(),
		SpeakerID:        speaker.ID,
		SpeakerName:      speaker.Name,
		SpeakerType:      SpeakerAgent,
		Content:          content,
		ReasoningContent: reasoning,
		Timestamp:        ts,
		RoundNumber:      round,
	}
}

// FormatDisplay renders the message with speaker identity and timestamp,
// for transcripts and CLI-ish dumps.
func (m *Message) FormatDisplay() string {
	return fmt.Sprintf("%s | [%s] %s\n%s",
		m.Timestamp.Format("2006-01-02 15:04:05"),
		strings.ToUpper(string(m.SpeakerType)),
		m.SpeakerName,
		m.Content,
	)
}

// MentionedIDs returns the mentioned participant IDs in document order.
func (m *Message) MentionedIDs() []string {
	if len(m.Mentions) == 0 {
		return nil
	}
	ids := make([]string, 0, len(m.Mentions))
	for _, mn := range m.Mentions {
		ids = append(ids, mn.MentionedParticipantID)
	}
	return ids
}

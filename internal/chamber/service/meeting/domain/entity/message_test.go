package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserMessage(t *testing.T) {
	ts := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	msg := NewUserMessage("let's begin", 2, ts)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "user", msg.SpeakerID)
	assert.Equal(t, "User", msg.SpeakerName)
	assert.Equal(t, SpeakerUser, msg.SpeakerType)
	assert.Equal(t, 2, msg.RoundNumber)
	assert.Equal(t, ts, msg.Timestamp)
}

func TestNewAgentMessage(t *testing.T) {
	ts := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	speaker := &Agent{ID: "a1", Name: "Alice"}
	msg := NewAgentMessage(speaker, "ship it", "weighed the options", 1, ts)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "a1", msg.SpeakerID)
	assert.Equal(t, "Alice", msg.SpeakerName)
	assert.Equal(t, SpeakerAgent, msg.SpeakerType)
	assert.Equal(t, "ship it", msg.Content)
	assert.Equal(t, "weighed the options", msg.ReasoningContent)
	assert.Equal(t, 1, msg.RoundNumber)
}

func TestFormatDisplay(t *testing.T) {
	msg := &Message{
		SpeakerName: "Alice",
		SpeakerType: SpeakerAgent,
		Content:     "ship it",
		Timestamp:   time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
	assert.Equal(t, "2026-03-14 10:30:00 | [AGENT] Alice\nship it", msg.FormatDisplay())
}

func TestMentionedIDs(t *testing.T) {
	msg := &Message{}
	assert.Nil(t, msg.MentionedIDs())

	msg.Mentions = []Mention{
		{MentionedParticipantID: "a2", MentionedParticipantName: "Bob"},
		{MentionedParticipantID: "a3", MentionedParticipantName: "Carol"},
	}
	require.Equal(t, []string{"a2", "a3"}, msg.MentionedIDs())
}

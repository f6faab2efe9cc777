package runtime

import (
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

func builderMeeting() *entity.Meeting {
	return &entity.Meeting{
		ID:    "m1",
		Topic: "API redesign",
		Participants: []*entity.Agent{
			{ID: "a1", Name: "Alice", Role: entity.Role{
				Name:         "Engineer",
				Description:  "Backend specialist",
				SystemPrompt: "You design pragmatic APIs.",
			}},
			{ID: "a2", Name: "Bob", Role: entity.Role{
				Name:         "Product Manager",
				Description:  "Owns the roadmap",
				SystemPrompt: "You represent the customer.",
			}},
		},
		Moderator: entity.Moderator{Type: entity.ModeratorUser},
		Status:    entity.StatusActive,
		Config:    entity.DefaultMeetingConfig(),
	}
}

func TestBuildSystemPromptBlocks(t *testing.T) {
	b := NewContextBuilder()
	m := builderMeeting()
	speaker := m.Participants[0]

	prompt := b.BuildSystemPrompt(m, speaker)
	assert.Contains(t, prompt, "Your role: Engineer")
	assert.Contains(t, prompt, "Role description: Backend specialist")
	assert.Contains(t, prompt, "You design pragmatic APIs.")
	assert.Contains(t, prompt, "formal and professional")
	assert.NotContains(t, prompt, "meeting moderator", "non-moderator gets no duties block")
}

func TestBuildSystemPromptModeratorAndLength(t *testing.T) {
	b := NewContextBuilder()
	m := builderMeeting()
	m.Moderator = entity.Moderator{Type: entity.ModeratorAgent, ID: "a1"}
	m.Config.SpeakingLengthPreferences = map[string]entity.SpeakingLength{
		"a1": entity.LengthBrief,
	}

	moderator := b.BuildSystemPrompt(m, m.Participants[0])
	assert.Contains(t, moderator, "As the meeting moderator")
	assert.Contains(t, moderator, "brief")

	other := b.BuildSystemPrompt(m, m.Participants[1])
	assert.NotContains(t, other, "As the meeting moderator")
	assert.NotContains(t, other, "Keep your statements brief")
}

func TestBuildMeetingContext(t *testing.T) {
	b := NewContextBuilder()
	m := builderMeeting()
	m.Agenda = []*entity.AgendaItem{
		{ID: "g1", Title: "Versioning", Description: "v2 path or header", Completed: true},
		{ID: "g2", Title: "Auth", Description: "tokens"},
	}

	ctx := b.BuildMeetingContext(m, m.Participants[0])
	assert.Contains(t, ctx, "Meeting topic: API redesign")
	assert.Contains(t, ctx, "Moderator: user")
	assert.Contains(t, ctx, "- Alice (Engineer)")
	assert.Contains(t, ctx, "- Bob (Product Manager)")
	assert.Contains(t, ctx, "✓ Versioning: v2 path or header")
	assert.Contains(t, ctx, "○ Auth: tokens")
	assert.NotContains(t, ctx, "you were mentioned")
}

func TestBuildMeetingContextMentionNotice(t *testing.T) {
	b := NewContextBuilder()
	m := builderMeeting()
	m.Messages = []*entity.Message{
		{
			ID: "msg1", SpeakerID: "user", SpeakerType: entity.SpeakerUser,
			Content:   "@Alice please summarize",
			Mentions:  []entity.Mention{{MentionedParticipantID: "a1", MessageID: "msg1"}},
			Timestamp: time.Now(),
		},
	}

	assert.Contains(t, b.BuildMeetingContext(m, m.Participants[0]), "you were mentioned")
	assert.NotContains(t, b.BuildMeetingContext(m, m.Participants[1]), "you were mentioned")
}

func TestBuildMeetingContextMentionNoticeWindow(t *testing.T) {
	b := NewContextBuilder()
	m := builderMeeting()

	// The mention scrolls out of the trailing window once enough newer
	// messages pile on.
	m.Messages = []*entity.Message{{
		ID: "old", SpeakerID: "user", SpeakerType: entity.SpeakerUser,
		Content:   "@Alice?",
		Mentions:  []entity.Mention{{MentionedParticipantID: "a1", MessageID: "old"}},
		Timestamp: time.Now(),
	}}
	for i := 0; i < recentMentionWindow; i++ {
		m.Messages = append(m.Messages, &entity.Message{
			ID: "filler", SpeakerID: "a2", SpeakerType: entity.SpeakerAgent,
			Content: "noted", Timestamp: time.Now(),
		})
	}

	assert.NotContains(t, b.BuildMeetingContext(m, m.Participants[0]), "you were mentioned")
}

func TestBuildMessageHistoryPlain(t *testing.T) {
	b := NewContextBuilder()
	m := builderMeeting()
	now := time.Now()
	m.Messages = []*entity.Message{
		{SpeakerID: "user", SpeakerName: "User", SpeakerType: entity.SpeakerUser, Content: "kick off", Timestamp: now},
		{SpeakerID: "a1", SpeakerName: "Alice", SpeakerType: entity.SpeakerAgent, Content: "proposal", Timestamp: now.Add(time.Second)},
	}

	history := b.BuildMessageHistory(m)
	require.Len(t, history, 2)
	assert.Equal(t, schema.User, history[0].Role)
	assert.Equal(t, "User: kick off", history[0].Content)
	assert.Equal(t, schema.Assistant, history[1].Role)
	assert.Equal(t, "Alice: proposal", history[1].Content)
}

func TestBuildMessageHistoryMinutesCompression(t *testing.T) {
	b := NewContextBuilder()
	m := builderMeeting()
	base := time.Now()

	m.Messages = []*entity.Message{
		{SpeakerID: "a1", SpeakerName: "Alice", SpeakerType: entity.SpeakerAgent, Content: "early point", Timestamp: base},
		{SpeakerID: "a2", SpeakerName: "Bob", SpeakerType: entity.SpeakerAgent, Content: "late point", Timestamp: base.Add(2 * time.Minute)},
	}
	m.CurrentMinutes = &entity.MinutesVersion{
		Version:   1,
		Content:   "we agreed on the v2 path",
		Summary:   "v2 path agreed",
		CreatedAt: base.Add(time.Minute),
	}

	history := b.BuildMessageHistory(m)
	require.Len(t, history, 2, "minutes entry plus the one post-minutes message")

	assert.Equal(t, schema.System, history[0].Role)
	assert.Contains(t, history[0].Content, "Meeting minutes (as of ")
	assert.Contains(t, history[0].Content, "we agreed on the v2 path")

	assert.Equal(t, "Bob: late point", history[1].Content)
}

func TestBuildFullPromptShape(t *testing.T) {
	b := NewContextBuilder()
	m := builderMeeting()
	m.Messages = []*entity.Message{
		{SpeakerID: "user", SpeakerName: "User", SpeakerType: entity.SpeakerUser, Content: "hello", Timestamp: time.Now()},
	}

	prompt := b.Build(m, m.Participants[0])
	require.Len(t, prompt, 3)
	assert.Equal(t, schema.System, prompt[0].Role)
	assert.Equal(t, schema.System, prompt[1].Role)
	assert.Equal(t, schema.User, prompt[2].Role)
}

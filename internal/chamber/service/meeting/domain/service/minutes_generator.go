package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm"
	"github.com/kiosk404/roundtable/pkg/utils/json"
)

// defaultMinutesPrompt is used when the meeting config does not override
// the template. The JSON shape is what parseMinutesResponse expects; the
// lenient fallbacks below handle models that ignore it.
const defaultMinutesPrompt = `You are the minute-taker of this meeting. Summarize the discussion below into meeting minutes.

Respond with JSON of this shape, and nothing else:
{
  "summary": "one-paragraph summary of the discussion",
  "key_decisions": ["decision 1", "decision 2"],
  "action_items": ["action item 1", "action item 2"]
}`

// MinutesGenerator produces versioned minutes documents. A generated
// version compresses all prior history for later prompt building.
type MinutesGenerator struct {
	adapters llm.AdapterFactory
}

// NewMinutesGenerator creates a MinutesGenerator.
func NewMinutesGenerator(adapters llm.AdapterFactory) *MinutesGenerator {
	return &MinutesGenerator{adapters: adapters}
}

// Generate asks the chosen participant's model for a minutes document,
// appends it to the meeting's history and makes it current. The caller owns
// persisting the meeting.
func (g *MinutesGenerator) Generate(ctx context.Context, meeting *entity.Meeting, generatorID string) (*entity.MinutesVersion, error) {
	generator, err := resolveGenerator(meeting, generatorID)
	if err != nil {
		return nil, err
	}

	transcript := renderTranscript(meeting)
	if transcript == "" {
		return nil, errno.Validationf("meeting has no messages to summarize")
	}

	prompt := meeting.Config.MinutesPrompt
	if prompt == "" {
		prompt = defaultMinutesPrompt
	}

	adapter, err := g.adapters.Build(ctx, &generator.ModelConfig)
	if err != nil {
		return nil, err
	}
	completion, err := adapter.Complete(ctx, []*schema.Message{
		schema.SystemMessage(prompt),
		schema.UserMessage(transcript),
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(completion.Content) == "" {
		return nil, errno.ErrEmptyResponse
	}

	version := parseMinutesResponse(completion.Content)
	version.ID = uuid.New().String()
	version.Version = len(meeting.MinutesHistory) + 1
	version.CreatedAt = minutesTimestamp(meeting)
	version.CreatedBy = generator.ID

	meeting.MinutesHistory = append(meeting.MinutesHistory, version)
	meeting.CurrentMinutes = version
	meeting.UpdatedAt = version.CreatedAt
	return version, nil
}

// Update stores a manually edited minutes version. The caller owns
// persisting the meeting.
func (g *MinutesGenerator) Update(meeting *entity.Meeting, content, editorID string) (*entity.MinutesVersion, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errno.Validationf("minutes content cannot be empty")
	}

	version := &entity.MinutesVersion{
		ID:        uuid.New().String(),
		Version:   len(meeting.MinutesHistory) + 1,
		Content:   content,
		Summary:   content,
		CreatedAt: minutesTimestamp(meeting),
		CreatedBy: editorID,
	}
	meeting.MinutesHistory = append(meeting.MinutesHistory, version)
	meeting.CurrentMinutes = version
	meeting.UpdatedAt = version.CreatedAt
	return version, nil
}

// minutesTimestamp anchors a minutes version at or after the newest message.
// Message timestamps can run ahead of the wall clock on coarse clocks, and a
// minutes version stamped behind them would leak already-compressed messages
// into the next transcript.
func minutesTimestamp(meeting *entity.Meeting) time.Time {
	now := time.Now()
	if last := meeting.LastMessage(); last != nil && last.Timestamp.After(now) {
		return last.Timestamp
	}
	return now
}

// resolveGenerator picks who generates a derived artifact: the explicit
// participant, else the agent moderator, else the first participant.
func resolveGenerator(meeting *entity.Meeting, generatorID string) (*entity.Agent, error) {
	if generatorID != "" {
		if p := meeting.FindParticipant(generatorID); p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("%w: generator %s", errno.ErrNotParticipant, generatorID)
	}
	if meeting.Moderator.Type == entity.ModeratorAgent {
		if p := meeting.FindParticipant(meeting.Moderator.ID); p != nil {
			return p, nil
		}
	}
	if len(meeting.Participants) == 0 {
		return nil, errno.Validationf("meeting has no participants")
	}
	return meeting.Participants[0], nil
}

// renderTranscript returns the discussion since the previous minutes
// version, or the whole history when none exists, one speaker-prefixed
// line per message.
func renderTranscript(meeting *entity.Meeting) string {
	var lines []string
	for _, msg := range meeting.Messages {
		if meeting.CurrentMinutes != nil && !msg.Timestamp.After(meeting.CurrentMinutes.CreatedAt) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", msg.SpeakerName, msg.Content))
	}
	return strings.Join(lines, "\n")
}

type minutesDoc struct {
	Summary      string   `json:"summary"`
	KeyDecisions []string `json:"key_decisions"`
	ActionItems  []string `json:"action_items"`
}

// parseMinutesResponse parses the model output leniently: strict JSON
// first (with code fences stripped), then raw content as both content and
// summary with empty lists.
func parseMinutesResponse(content string) *entity.MinutesVersion {
	var doc minutesDoc
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &doc); err == nil && doc.Summary != "" {
		return &entity.MinutesVersion{
			Content:      content,
			Summary:      doc.Summary,
			KeyDecisions: doc.KeyDecisions,
			ActionItems:  doc.ActionItems,
		}
	}
	return &entity.MinutesVersion{
		Content: content,
		Summary: content,
	}
}

// stripCodeFence unwraps ```json ... ``` style fences models like to add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

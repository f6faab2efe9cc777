package runtime

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

// ContextBuilder composes the prompt a speaking participant receives:
// a role system prompt, a meeting-context system entry, and the message
// history rendered for a multi-assistant transcript.
type ContextBuilder struct{}

// NewContextBuilder creates a ContextBuilder.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{}
}

var styleGuide = map[entity.DiscussionStyle]string{
	entity.StyleFormal: "Keep the discussion formal and professional.",
	entity.StyleCasual: "Use a relaxed, friendly discussion style.",
	entity.StyleDebate: "Adopt a debate style: state your position clearly and back it with arguments.",
}

var lengthGuide = map[entity.SpeakingLength]string{
	entity.LengthBrief:    "Keep your statements brief and go straight to the point.",
	entity.LengthModerate: "Elaborate moderately and provide the necessary details.",
	entity.LengthDetailed: "Explain in detail, with thorough analysis and examples.",
}

const moderatorDuties = `As the meeting moderator, your duties are:
1. Guide the discussion toward the agenda
2. Make sure every participant gets a chance to speak
3. Summarize key points and decisions
4. Redirect the discussion when it drifts off topic
5. Drive the meeting toward a conclusion`

// recentMentionWindow is how many trailing messages are scanned to tell a
// speaker they were addressed.
const recentMentionWindow = 5

// Build returns the full prompt for one turn of the given speaker:
// [role system prompt, meeting context, (minutes), history...].
func (b *ContextBuilder) Build(meeting *entity.Meeting, speaker *entity.Agent) []*schema.Message {
	messages := []*schema.Message{
		schema.SystemMessage(b.BuildSystemPrompt(meeting, speaker)),
		schema.SystemMessage(b.BuildMeetingContext(meeting, speaker)),
	}
	return append(messages, b.BuildMessageHistory(meeting)...)
}

// BuildSystemPrompt composes the speaker's role prompt with style, length,
// and moderator guidance. Block order is fixed.
func (b *ContextBuilder) BuildSystemPrompt(meeting *entity.Meeting, speaker *entity.Agent) string {
	parts := []string{
		fmt.Sprintf("Your role: %s", speaker.Role.Name),
		fmt.Sprintf("Role description: %s", speaker.Role.Description),
		speaker.Role.SystemPrompt,
	}

	if guide, ok := styleGuide[meeting.Config.DiscussionStyle]; ok {
		parts = append(parts, guide)
	}

	if pref, ok := meeting.Config.SpeakingLengthPreferences[speaker.ID]; ok {
		if guide, ok := lengthGuide[pref]; ok {
			parts = append(parts, guide)
		}
	}

	if meeting.Moderator.Type == entity.ModeratorAgent && meeting.Moderator.ID == speaker.ID {
		parts = append(parts, moderatorDuties)
	}

	return strings.Join(parts, "\n\n")
}

// BuildMeetingContext renders the meeting framing block: topic, moderator,
// participants, agenda status, current conclusion, and a mention notice.
func (b *ContextBuilder) BuildMeetingContext(meeting *entity.Meeting, speaker *entity.Agent) string {
	parts := []string{
		fmt.Sprintf("Meeting topic: %s", meeting.Topic),
		fmt.Sprintf("Moderator: %s", meeting.ModeratorName()),
	}

	var listing []string
	for _, p := range meeting.Participants {
		listing = append(listing, fmt.Sprintf("- %s (%s)", p.Name, p.Role.Name))
	}
	parts = append(parts, "Participants:\n"+strings.Join(listing, "\n"))

	if len(meeting.Agenda) > 0 {
		var agenda []string
		for _, item := range meeting.Agenda {
			status := "○"
			if item.Completed {
				status = "✓"
			}
			agenda = append(agenda, fmt.Sprintf("%s %s: %s", status, item.Title, item.Description))
		}
		parts = append(parts, "Agenda:\n"+strings.Join(agenda, "\n"))
	}

	if meeting.CurrentMinutes != nil {
		parts = append(parts, fmt.Sprintf("Current meeting conclusion:\n%s", meeting.CurrentMinutes.Summary))
	}

	if b.recentlyMentioned(meeting, speaker.ID) {
		parts = append(parts, "Note: you were mentioned in the recent discussion, please respond to the relevant points.")
	}

	return strings.Join(parts, "\n\n")
}

// BuildMessageHistory renders the transcript. Once minutes exist they
// compress everything before their creation time into one system entry,
// bounding prompt growth over long meetings.
func (b *ContextBuilder) BuildMessageHistory(meeting *entity.Meeting) []*schema.Message {
	var history []*schema.Message

	include := meeting.Messages
	if meeting.CurrentMinutes != nil {
		history = append(history, schema.SystemMessage(fmt.Sprintf(
			"Meeting minutes (as of %s):\n%s",
			meeting.CurrentMinutes.CreatedAt.Format("2006-01-02 15:04:05"),
			meeting.CurrentMinutes.Content,
		)))
		include = nil
		for _, msg := range meeting.Messages {
			if msg.Timestamp.After(meeting.CurrentMinutes.CreatedAt) {
				include = append(include, msg)
			}
		}
	}

	for _, msg := range include {
		content := fmt.Sprintf("%s: %s", msg.SpeakerName, msg.Content)
		if msg.SpeakerType == entity.SpeakerUser {
			history = append(history, schema.UserMessage(content))
		} else {
			history = append(history, schema.AssistantMessage(content, nil))
		}
	}
	return history
}

func (b *ContextBuilder) recentlyMentioned(meeting *entity.Meeting, speakerID string) bool {
	start := len(meeting.Messages) - recentMentionWindow
	if start < 0 {
		start = 0
	}
	for _, msg := range meeting.Messages[start:] {
		for _, mn := range msg.Mentions {
			if mn.MentionedParticipantID == speakerID {
				return true
			}
		}
	}
	return false
}

package entity

import (
	"strings"
	"time"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
)

// MeetingStatus is the lifecycle state of a meeting.
type MeetingStatus string

const (
	StatusActive MeetingStatus = "active"
	StatusPaused MeetingStatus = "paused"
	StatusEnded  MeetingStatus = "ended"
)

// SpeakingOrder controls how run-round rotates through participants.
type SpeakingOrder string

const (
	OrderSequential SpeakingOrder = "sequential"
	OrderRandom     SpeakingOrder = "random"
)

// DiscussionStyle selects the tone guidance injected into system prompts.
type DiscussionStyle string

const (
	StyleFormal DiscussionStyle = "formal"
	StyleCasual DiscussionStyle = "casual"
	StyleDebate DiscussionStyle = "debate"
)

// SpeakingLength is a per-participant verbosity preference.
type SpeakingLength string

const (
	LengthBrief    SpeakingLength = "brief"
	LengthModerate SpeakingLength = "moderate"
	LengthDetailed SpeakingLength = "detailed"
)

// ModeratorType distinguishes a user-led meeting from an agent-led one.
type ModeratorType string

const (
	ModeratorUser  ModeratorType = "user"
	ModeratorAgent ModeratorType = "agent"
)

// Moderator designates who guides the meeting. Affects only prompt
// composition, never persistence.
type Moderator struct {
	Type ModeratorType `json:"type"`
	// ID is the moderating participant's ID when Type is agent.
	ID string `json:"id,omitempty"`
}

// MeetingConfig holds the tunable behavior of one meeting.
type MeetingConfig struct {
	// MaxRounds auto-ends the meeting once reached. nil means unbounded.
	MaxRounds *int `json:"max_rounds,omitempty"`

	// MaxMessageLength truncates agent output beyond this many characters.
	// nil means the global default bound (10000).
	MaxMessageLength *int `json:"max_message_length,omitempty"`

	// SpeakingOrder is sequential or random.
	SpeakingOrder SpeakingOrder `json:"speaking_order"`

	// DiscussionStyle is formal, casual, or debate.
	DiscussionStyle DiscussionStyle `json:"discussion_style"`

	// SpeakingLengthPreferences maps participant ID to a verbosity hint.
	SpeakingLengthPreferences map[string]SpeakingLength `json:"speaking_length_preferences,omitempty"`

	// MinutesPrompt overrides the default minutes-generation template.
	MinutesPrompt string `json:"minutes_prompt,omitempty"`
}

// DefaultMeetingConfig returns the config applied when a create request
// leaves fields unset.
func DefaultMeetingConfig() MeetingConfig {
	return MeetingConfig{
		SpeakingOrder:   OrderSequential,
		DiscussionStyle: StyleFormal,
	}
}

// AgendaItem is one topic on the meeting agenda.
type AgendaItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// Meeting is the central aggregate. It exclusively owns its messages,
// minutes versions, and mind map; all of them are created through service
// operations only and never mutated afterwards.
type Meeting struct {
	// ID is the unique meeting identifier.
	ID string `json:"id"`

	// Topic is the meeting subject (1..200 chars).
	Topic string `json:"topic"`

	// Participants are agent snapshots captured at creation time.
	Participants []*Agent `json:"participants"`

	// Moderator is the user or one of the participants.
	Moderator Moderator `json:"moderator"`

	// Status is the lifecycle state.
	Status MeetingStatus `json:"status"`

	// Config is the meeting's behavior configuration.
	Config MeetingConfig `json:"config"`

	// Agenda is the ordered list of agenda items.
	Agenda []*AgendaItem `json:"agenda,omitempty"`

	// Messages is the append-only utterance history.
	Messages []*Message `json:"messages"`

	// CurrentRound counts completed rounds, 0-origin. A round completes
	// when every participant has contributed an agent message since the
	// previous boundary.
	CurrentRound int `json:"current_round"`

	// MinutesHistory holds every generated minutes version in order.
	MinutesHistory []*MinutesVersion `json:"minutes_history,omitempty"`

	// CurrentMinutes is the latest minutes version, or nil.
	CurrentMinutes *MinutesVersion `json:"current_minutes,omitempty"`

	// MindMap is the latest mind-map document, or nil.
	MindMap *MindMap `json:"mind_map,omitempty"`

	// CreatedAt is when the meeting was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is bumped on every persisted mutation.
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	maxTopicLen = 200

	// DefaultMaxMessageLength bounds message content when the meeting
	// config does not set its own limit.
	DefaultMaxMessageLength = 10000
)

// Validate checks the aggregate-level invariants.
func (m *Meeting) Validate() error {
	if strings.TrimSpace(m.Topic) == "" {
		return errno.Validationf("meeting topic cannot be empty")
	}
	if len(m.Topic) > maxTopicLen {
		return errno.Validationf("meeting topic must be %d characters or less", maxTopicLen)
	}
	if len(m.Participants) == 0 {
		return errno.Validationf("meeting must have at least one participant")
	}
	switch m.Moderator.Type {
	case ModeratorUser:
	case ModeratorAgent:
		if m.FindParticipant(m.Moderator.ID) == nil {
			return errno.Validationf("moderator %q is not a participant", m.Moderator.ID)
		}
	default:
		return errno.Validationf("unknown moderator type %q", m.Moderator.Type)
	}
	switch m.Config.SpeakingOrder {
	case OrderSequential, OrderRandom:
	default:
		return errno.Validationf("unknown speaking order %q", m.Config.SpeakingOrder)
	}
	switch m.Config.DiscussionStyle {
	case StyleFormal, StyleCasual, StyleDebate:
	default:
		return errno.Validationf("unknown discussion style %q", m.Config.DiscussionStyle)
	}
	return nil
}

// FindParticipant returns the participant snapshot with the given ID, or nil.
func (m *Meeting) FindParticipant(id string) *Agent {
	for _, p := range m.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ModeratorName resolves the moderator's display name.
func (m *Meeting) ModeratorName() string {
	if m.Moderator.Type == ModeratorUser {
		return "user"
	}
	if p := m.FindParticipant(m.Moderator.ID); p != nil {
		return p.Name
	}
	return m.Moderator.ID
}

// LastMessage returns the most recent message, or nil.
func (m *Meeting) LastMessage() *Message {
	if len(m.Messages) == 0 {
		return nil
	}
	return m.Messages[len(m.Messages)-1]
}

// FindAgendaItem returns the agenda item with the given ID, or nil.
func (m *Meeting) FindAgendaItem(id string) *AgendaItem {
	for _, item := range m.Agenda {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// FindMessage returns the message with the given ID, or nil.
func (m *Meeting) FindMessage(id string) *Message {
	for _, msg := range m.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// MaxMessageLength resolves the effective content bound.
func (m *Meeting) MaxMessageLength() int {
	if m.Config.MaxMessageLength != nil && *m.Config.MaxMessageLength > 0 {
		return *m.Config.MaxMessageLength
	}
	return DefaultMaxMessageLength
}

// NextTimestamp returns a timestamp strictly after the last message's,
// keeping per-meeting message time monotonic even on coarse clocks.
func (m *Meeting) NextTimestamp(now time.Time) time.Time {
	if last := m.LastMessage(); last != nil && !now.After(last.Timestamp) {
		return last.Timestamp.Add(time.Microsecond)
	}
	return now
}

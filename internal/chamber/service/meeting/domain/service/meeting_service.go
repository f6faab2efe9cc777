package service

import (
	"context"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service/runtime"
)

// AgendaItemSpec describes one agenda entry at meeting creation.
type AgendaItemSpec struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// CreateMeetingRequest carries everything needed to open a meeting.
type CreateMeetingRequest struct {
	Topic          string                `json:"topic"`
	ParticipantIDs []string              `json:"participant_ids"`
	Moderator      entity.Moderator      `json:"moderator"`
	Agenda         []AgendaItemSpec      `json:"agenda,omitempty"`
	Config         *entity.MeetingConfig `json:"config,omitempty"`
}

// MeetingService is the application-level service owning the meeting state
// machine. Every read-modify-write operation runs under the meeting's
// coordinator lock; turns additionally go through the turn runner.
type MeetingService interface {
	// --- Lifecycle ---

	CreateMeeting(ctx context.Context, req *CreateMeetingRequest) (*entity.Meeting, error)
	GetMeeting(ctx context.Context, id string) (*entity.Meeting, error)
	ListMeetings(ctx context.Context) ([]*entity.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error

	StartMeeting(ctx context.Context, id string) error
	PauseMeeting(ctx context.Context, id string) error

	// EndMeeting transitions to ended, cancels in-flight work, and
	// optionally generates a final minutes version.
	EndMeeting(ctx context.Context, id string, autoGenerateMinutes bool) error

	// UpdateConfig replaces the meeting's behavior configuration.
	UpdateConfig(ctx context.Context, id string, cfg entity.MeetingConfig) error

	// --- Conversation ---

	AddUserMessage(ctx context.Context, id, content string) (*entity.Message, error)
	RequestTurn(ctx context.Context, id, agentID string, mode runtime.TurnMode) (*entity.Message, error)
	RunRound(ctx context.Context, id string, mode runtime.TurnMode) ([]*entity.Message, error)

	// StopTurn cancels the in-flight turn and chain for the meeting.
	// Stopping an idle meeting is a no-op.
	StopTurn(id string)

	// --- Agenda ---

	AddAgendaItem(ctx context.Context, id, title, description string) (*entity.AgendaItem, error)
	MarkAgendaCompleted(ctx context.Context, id, itemID string) error
	RemoveAgendaItem(ctx context.Context, id, itemID string) error

	// --- Derived artifacts ---

	GenerateMinutes(ctx context.Context, id, generatorID string) (*entity.MinutesVersion, error)
	UpdateMinutes(ctx context.Context, id, content, editorID string) (*entity.MinutesVersion, error)
	MinutesHistory(ctx context.Context, id string) ([]*entity.MinutesVersion, error)

	GenerateMindMap(ctx context.Context, id, generatorID string) (*entity.MindMap, error)
	UpdateMindMap(ctx context.Context, id string, mm *entity.MindMap) (*entity.MindMap, error)

	// --- Events ---

	// SubscribeEvents attaches a consumer to the meeting's event stream.
	// Only events produced after the call are delivered; the cancel func
	// must be called exactly once.
	SubscribeEvents(ctx context.Context, id string) (<-chan *entity.MeetingEvent, func(), error)
}

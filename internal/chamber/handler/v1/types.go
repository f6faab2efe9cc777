package v1

import (
	"time"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

// --- Agent API ---

// ModelConfigRequest is the model binding in agent create/update requests.
type ModelConfigRequest struct {
	Provider   string                  `json:"provider" binding:"required"`
	ModelName  string                  `json:"model_name" binding:"required"`
	Credential string                  `json:"credential,omitempty"`
	BaseURL    string                  `json:"base_url,omitempty"`
	Parameters *entity.ModelParameters `json:"parameters,omitempty"`
}

// RoleRequest is the agent persona in create/update requests.
type RoleRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description" binding:"required"`
	SystemPrompt string `json:"system_prompt" binding:"required"`
}

// CreateAgentRequest is the request body for POST /v1/agents.
type CreateAgentRequest struct {
	Name        string             `json:"name" binding:"required"`
	Role        RoleRequest        `json:"role" binding:"required"`
	ModelConfig ModelConfigRequest `json:"model_config" binding:"required"`
}

// UpdateAgentRequest is the request body for PUT /v1/agents/:id.
// An empty credential keeps the stored one.
type UpdateAgentRequest struct {
	Name        string             `json:"name" binding:"required"`
	Role        RoleRequest        `json:"role" binding:"required"`
	ModelConfig ModelConfigRequest `json:"model_config" binding:"required"`
}

// ModelConfigResponse mirrors the stored binding with the credential
// redacted; CredentialSet tells clients whether one is on file.
type ModelConfigResponse struct {
	Provider      string                  `json:"provider"`
	ModelName     string                  `json:"model_name"`
	BaseURL       string                  `json:"base_url,omitempty"`
	Parameters    *entity.ModelParameters `json:"parameters,omitempty"`
	CredentialSet bool                    `json:"credential_set"`
}

// AgentResponse is the response for agent endpoints.
type AgentResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Role        entity.Role         `json:"role"`
	ModelConfig ModelConfigResponse `json:"model_config"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

func toAgentResponse(a *entity.Agent) AgentResponse {
	return AgentResponse{
		ID:   a.ID,
		Name: a.Name,
		Role: a.Role,
		ModelConfig: ModelConfigResponse{
			Provider:      string(a.ModelConfig.Provider),
			ModelName:     a.ModelConfig.ModelName,
			BaseURL:       a.ModelConfig.BaseURL,
			Parameters:    a.ModelConfig.Parameters,
			CredentialSet: a.ModelConfig.Credential != "",
		},
		CreatedAt: FormatTime(a.CreatedAt),
		UpdatedAt: FormatTime(a.UpdatedAt),
	}
}

// --- Meeting API ---

// AgendaItemRequest is one agenda entry in a create-meeting request.
type AgendaItemRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description,omitempty"`
}

// ModeratorRequest designates the meeting moderator.
type ModeratorRequest struct {
	Type string `json:"type,omitempty"`
	ID   string `json:"id,omitempty"`
}

// CreateMeetingRequest is the request body for POST /v1/meetings.
type CreateMeetingRequest struct {
	Topic          string                `json:"topic" binding:"required"`
	ParticipantIDs []string              `json:"participant_ids" binding:"required"`
	Moderator      *ModeratorRequest     `json:"moderator,omitempty"`
	Agenda         []AgendaItemRequest   `json:"agenda,omitempty"`
	Config         *entity.MeetingConfig `json:"config,omitempty"`
}

// UpdateConfigRequest is the request body for PUT /v1/meetings/:id/config.
type UpdateConfigRequest struct {
	Config entity.MeetingConfig `json:"config" binding:"required"`
}

// EndMeetingRequest is the optional body for POST /v1/meetings/:id/end.
// auto_generate_minutes defaults to true when omitted.
type EndMeetingRequest struct {
	AutoGenerateMinutes *bool `json:"auto_generate_minutes,omitempty"`
}

// AgendaItemResponse is one agenda entry in meeting responses.
type AgendaItemResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"created_at"`
}

// MessageResponse is one utterance in meeting responses.
type MessageResponse struct {
	ID               string           `json:"id"`
	SpeakerID        string           `json:"speaker_id"`
	SpeakerName      string           `json:"speaker_name"`
	SpeakerType      string           `json:"speaker_type"`
	Content          string           `json:"content"`
	ReasoningContent string           `json:"reasoning_content,omitempty"`
	Timestamp        string           `json:"timestamp"`
	RoundNumber      int              `json:"round_number"`
	Mentions         []entity.Mention `json:"mentions,omitempty"`
}

// MinutesResponse is one minutes version.
type MinutesResponse struct {
	ID           string   `json:"id"`
	Version      int      `json:"version"`
	Content      string   `json:"content"`
	Summary      string   `json:"summary"`
	KeyDecisions []string `json:"key_decisions,omitempty"`
	ActionItems  []string `json:"action_items,omitempty"`
	CreatedAt    string   `json:"created_at"`
	CreatedBy    string   `json:"created_by"`
}

// MeetingSummaryResponse is the list-view projection of a meeting.
type MeetingSummaryResponse struct {
	ID               string   `json:"id"`
	Topic            string   `json:"topic"`
	Status           string   `json:"status"`
	ParticipantNames []string `json:"participant_names"`
	MessageCount     int      `json:"message_count"`
	CurrentRound     int      `json:"current_round"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// MeetingResponse is the full meeting document with participant
// credentials redacted.
type MeetingResponse struct {
	ID             string               `json:"id"`
	Topic          string               `json:"topic"`
	Participants   []AgentResponse      `json:"participants"`
	Moderator      entity.Moderator     `json:"moderator"`
	Status         string               `json:"status"`
	Config         entity.MeetingConfig `json:"config"`
	Agenda         []AgendaItemResponse `json:"agenda,omitempty"`
	Messages       []MessageResponse    `json:"messages"`
	CurrentRound   int                  `json:"current_round"`
	CurrentMinutes *MinutesResponse     `json:"current_minutes,omitempty"`
	MindMap        *entity.MindMap      `json:"mind_map,omitempty"`
	CreatedAt      string               `json:"created_at"`
	UpdatedAt      string               `json:"updated_at"`
}

func toMessageResponse(m *entity.Message) MessageResponse {
	return MessageResponse{
		ID:               m.ID,
		SpeakerID:        m.SpeakerID,
		SpeakerName:      m.SpeakerName,
		SpeakerType:      string(m.SpeakerType),
		Content:          m.Content,
		ReasoningContent: m.ReasoningContent,
		Timestamp:        FormatTime(m.Timestamp),
		RoundNumber:      m.RoundNumber,
		Mentions:         m.Mentions,
	}
}

func toMinutesResponse(v *entity.MinutesVersion) *MinutesResponse {
	if v == nil {
		return nil
	}
	return &MinutesResponse{
		ID:           v.ID,
		Version:      v.Version,
		Content:      v.Content,
		Summary:      v.Summary,
		KeyDecisions: v.KeyDecisions,
		ActionItems:  v.ActionItems,
		CreatedAt:    FormatTime(v.CreatedAt),
		CreatedBy:    v.CreatedBy,
	}
}

func toAgendaItemResponse(item *entity.AgendaItem) AgendaItemResponse {
	return AgendaItemResponse{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Completed:   item.Completed,
		CreatedAt:   FormatTime(item.CreatedAt),
	}
}

func toMeetingSummaryResponse(m *entity.Meeting) MeetingSummaryResponse {
	names := make([]string, 0, len(m.Participants))
	for _, p := range m.Participants {
		names = append(names, p.Name)
	}
	return MeetingSummaryResponse{
		ID:               m.ID,
		Topic:            m.Topic,
		Status:           string(m.Status),
		ParticipantNames: names,
		MessageCount:     len(m.Messages),
		CurrentRound:     m.CurrentRound,
		CreatedAt:        FormatTime(m.CreatedAt),
		UpdatedAt:        FormatTime(m.UpdatedAt),
	}
}

func toMeetingResponse(m *entity.Meeting) MeetingResponse {
	participants := make([]AgentResponse, 0, len(m.Participants))
	for _, p := range m.Participants {
		participants = append(participants, toAgentResponse(p))
	}
	agenda := make([]AgendaItemResponse, 0, len(m.Agenda))
	for _, item := range m.Agenda {
		agenda = append(agenda, toAgendaItemResponse(item))
	}
	messages := make([]MessageResponse, 0, len(m.Messages))
	for _, msg := range m.Messages {
		messages = append(messages, toMessageResponse(msg))
	}
	return MeetingResponse{
		ID:             m.ID,
		Topic:          m.Topic,
		Participants:   participants,
		Moderator:      m.Moderator,
		Status:         string(m.Status),
		Config:         m.Config,
		Agenda:         agenda,
		Messages:       messages,
		CurrentRound:   m.CurrentRound,
		CurrentMinutes: toMinutesResponse(m.CurrentMinutes),
		MindMap:        m.MindMap,
		CreatedAt:      FormatTime(m.CreatedAt),
		UpdatedAt:      FormatTime(m.UpdatedAt),
	}
}

// --- Turn API ---

// AddMessageRequest is the request body for POST /v1/meetings/:id/messages.
type AddMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// TurnRequest is the request body for POST /v1/meetings/:id/turns.
type TurnRequest struct {
	AgentID string `json:"agent_id" binding:"required"`
	Stream  bool   `json:"stream,omitempty"`
}

// --- Minutes API ---

// GenerateMinutesRequest is the body for POST /v1/meetings/:id/minutes.
type GenerateMinutesRequest struct {
	GeneratorID string `json:"generator_id,omitempty"`
}

// UpdateMinutesRequest is the body for PUT /v1/meetings/:id/minutes.
type UpdateMinutesRequest struct {
	Content  string `json:"content" binding:"required"`
	EditorID string `json:"editor_id,omitempty"`
}

// --- Mind map API ---

// GenerateMindMapRequest is the body for POST /v1/meetings/:id/mindmap.
type GenerateMindMapRequest struct {
	GeneratorID string `json:"generator_id,omitempty"`
}

// UpdateMindMapRequest is the body for PUT /v1/meetings/:id/mindmap.
type UpdateMindMapRequest struct {
	MindMap *entity.MindMap `json:"mind_map" binding:"required"`
}

// --- Common ---

const timeFormat = time.RFC3339

// FormatTime formats a time value for API responses.
func FormatTime(t time.Time) string {
	return t.Format(timeFormat)
}

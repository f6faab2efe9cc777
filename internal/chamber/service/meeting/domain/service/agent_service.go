package service

import (
	"context"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

// AgentService is the application-level service for the global agent
// registry. Meetings snapshot agents at creation time; the registry keeps
// the live copies edited here.
type AgentService interface {
	CreateAgent(ctx context.Context, agent *entity.Agent) error
	GetAgent(ctx context.Context, id string) (*entity.Agent, error)
	ListAgents(ctx context.Context) ([]*entity.Agent, error)
	UpdateAgent(ctx context.Context, agent *entity.Agent) error

	// DeleteAgent removes an agent. Deletion is refused while the agent is
	// a participant of any non-ended meeting.
	DeleteAgent(ctx context.Context, id string) error

	// TestConnection sends a minimal request through the agent's model
	// config to verify the credential and endpoint respond.
	TestConnection(ctx context.Context, id string) error
}

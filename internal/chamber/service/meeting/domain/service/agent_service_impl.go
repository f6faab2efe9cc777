package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/repo"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm"
	"github.com/kiosk404/roundtable/pkg/logger"
)

type agentServiceImpl struct {
	agentRepo   repo.AgentRepository
	meetingRepo repo.MeetingRepository
	adapters    llm.AdapterFactory
}

// NewAgentService creates the agent registry service.
func NewAgentService(agentRepo repo.AgentRepository, meetingRepo repo.MeetingRepository, adapters llm.AdapterFactory) AgentService {
	return &agentServiceImpl{
		agentRepo:   agentRepo,
		meetingRepo: meetingRepo,
		adapters:    adapters,
	}
}

func (a *agentServiceImpl) CreateAgent(ctx context.Context, agent *entity.Agent) error {
	if agent.ID == "" {
		agent.ID = uuid.New().String()
	}
	now := time.Now()
	agent.CreatedAt = now
	agent.UpdatedAt = now
	if err := agent.Validate(); err != nil {
		return err
	}
	logger.InfoX("meeting", "creating agent %s (%s/%s)", agent.Name, agent.ModelConfig.Provider, agent.ModelConfig.ModelName)
	return a.agentRepo.Save(ctx, agent)
}

func (a *agentServiceImpl) GetAgent(ctx context.Context, id string) (*entity.Agent, error) {
	return a.agentRepo.Get(ctx, id)
}

func (a *agentServiceImpl) ListAgents(ctx context.Context) ([]*entity.Agent, error) {
	return a.agentRepo.List(ctx)
}

func (a *agentServiceImpl) UpdateAgent(ctx context.Context, agent *entity.Agent) error {
	existing, err := a.agentRepo.Get(ctx, agent.ID)
	if err != nil {
		return err
	}
	agent.CreatedAt = existing.CreatedAt
	agent.UpdatedAt = time.Now()
	if err := agent.Validate(); err != nil {
		return err
	}
	return a.agentRepo.Save(ctx, agent)
}

func (a *agentServiceImpl) DeleteAgent(ctx context.Context, id string) error {
	if _, err := a.agentRepo.Get(ctx, id); err != nil {
		return err
	}

	// Participant snapshots keep history intact, but a live meeting still
	// routes turns to this agent ID, so deletion is refused until every
	// referencing meeting has ended.
	meetings, err := a.meetingRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, m := range meetings {
		if m.Status == entity.StatusEnded {
			continue
		}
		if m.FindParticipant(id) != nil {
			return fmt.Errorf("%w: meeting %s", errno.ErrAgentInUse, m.ID)
		}
	}

	return a.agentRepo.Delete(ctx, id)
}

func (a *agentServiceImpl) TestConnection(ctx context.Context, id string) error {
	agent, err := a.agentRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	adapter, err := a.adapters.Build(ctx, &agent.ModelConfig)
	if err != nil {
		return err
	}
	return adapter.TestConnection(ctx)
}

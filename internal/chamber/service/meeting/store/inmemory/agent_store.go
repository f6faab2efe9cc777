package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jinzhu/copier"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
)

// AgentStore implements repo.AgentRepository in process memory.
//
// Entities are deep-copied on both write and read so callers never share
// mutable state with the store.
type AgentStore struct {
	mu     sync.RWMutex
	agents map[string]*entity.Agent
}

// NewAgentStore creates an empty in-memory AgentStore.
func NewAgentStore() *AgentStore {
	return &AgentStore{agents: make(map[string]*entity.Agent)}
}

func (s *AgentStore) Save(_ context.Context, agent *entity.Agent) error {
	stored := &entity.Agent{}
	if err := copier.CopyWithOption(stored, agent, copier.Option{DeepCopy: true}); err != nil {
		return fmt.Errorf("failed to copy agent: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agent.ID] = stored
	return nil
}

func (s *AgentStore) Get(_ context.Context, id string) (*entity.Agent, error) {
	s.mu.RLock()
	stored, ok := s.agents[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errno.ErrAgentNotFound
	}
	agent := &entity.Agent{}
	if err := copier.CopyWithOption(agent, stored, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("failed to copy agent: %w", err)
	}
	return agent, nil
}

func (s *AgentStore) List(_ context.Context) ([]*entity.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agents := make([]*entity.Agent, 0, len(s.agents))
	for _, stored := range s.agents {
		agent := &entity.Agent{}
		if err := copier.CopyWithOption(agent, stored, copier.Option{DeepCopy: true}); err != nil {
			return nil, fmt.Errorf("failed to copy agent: %w", err)
		}
		agents = append(agents, agent)
	}
	return agents, nil
}

func (s *AgentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[id]; !ok {
		return errno.ErrAgentNotFound
	}
	delete(s.agents, id)
	return nil
}

package boltdb

import (
	"context"
	"fmt"

	"github.com/boltdb/bolt"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/pkg/utils/json"
)

// AgentStore implements repo.AgentRepository on BoltDB.
type AgentStore struct {
	db *bolt.DB
}

// NewAgentStore creates a BoltDB-backed AgentStore.
func NewAgentStore(db *DB) *AgentStore {
	return &AgentStore{db: db.Bolt()}
}

// Save upserts an agent document.
func (s *AgentStore) Save(_ context.Context, agent *entity.Agent) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAgentStore)
		data, err := json.Marshal(agent)
		if err != nil {
			return fmt.Errorf("failed to marshal agent: %w", err)
		}
		return b.Put([]byte(agent.ID), data)
	})
}

// Get retrieves an agent by its ID.
func (s *AgentStore) Get(_ context.Context, id string) (*entity.Agent, error) {
	var agent entity.Agent
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAgentStore)
		data := b.Get([]byte(id))
		if data == nil {
			return errno.ErrAgentNotFound
		}
		if err := json.Unmarshal(data, &agent); err != nil {
			return fmt.Errorf("failed to unmarshal agent: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// List returns all agents in the store.
func (s *AgentStore) List(_ context.Context) ([]*entity.Agent, error) {
	var agents []*entity.Agent
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAgentStore)
		return b.ForEach(func(k, v []byte) error {
			var agent entity.Agent
			if err := json.Unmarshal(v, &agent); err != nil {
				return fmt.Errorf("failed to unmarshal agent: %w", err)
			}
			agents = append(agents, &agent)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

// Delete removes an agent from the store.
func (s *AgentStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAgentStore)
		if b.Get([]byte(id)) == nil {
			return errno.ErrAgentNotFound
		}
		return b.Delete([]byte(id))
	})
}

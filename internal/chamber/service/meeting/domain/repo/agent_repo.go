package repo

import (
	"context"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

// AgentRepository persists live agents.
//
// A successful Save followed by Get must return an equivalent entity.
type AgentRepository interface {
	Save(ctx context.Context, agent *entity.Agent) error
	Get(ctx context.Context, id string) (*entity.Agent, error)
	List(ctx context.Context) ([]*entity.Agent, error)
	Delete(ctx context.Context, id string) error
}

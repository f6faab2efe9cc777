package llm

import (
	"context"
	"fmt"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider"
)

// AdapterFactory builds ChatAdapters from per-agent model configs.
type AdapterFactory interface {
	Build(ctx context.Context, cfg *entity.ModelConfig) (ChatAdapter, error)
}

type adapterFactory struct {
	registry *provider.Registry
	policy   RetryPolicy
}

// NewAdapterFactory creates a factory backed by the given provider registry.
func NewAdapterFactory(registry *provider.Registry, policy RetryPolicy) AdapterFactory {
	return &adapterFactory{registry: registry, policy: policy}
}

func (f *adapterFactory) Build(ctx context.Context, cfg *entity.ModelConfig) (ChatAdapter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("model config is nil")
	}
	factory, err := f.registry.Get(string(cfg.Provider))
	if err != nil {
		return nil, err
	}

	cm, err := factory().BuildChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build chat model for provider %s: %w", cfg.Provider, err)
	}

	return NewEinoAdapter(cm, f.policy), nil
}

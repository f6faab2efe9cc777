package spi

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

// ChatModelPlugin is the interface for provider plugins.
type ChatModelPlugin interface {
	// Name returns the name of the provider plugin.
	Name() string
	// DefaultBaseURL returns the endpoint used when the model config
	// does not override it.
	DefaultBaseURL() string
	// BuildChatModel builds a BaseChatModel instance from the given model config.
	// The returned BaseChatModel supports Generate and Stream.
	BuildChatModel(ctx context.Context, cfg *entity.ModelConfig) (model.BaseChatModel, error)
}

// PluginFactory is a function that creates a ChatModelPlugin instance.
type PluginFactory func() ChatModelPlugin

package anthropic

import (
	"context"
	"fmt"

	einoClaude "github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider/helper"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider/spi"
)

const Name = "anthropic"

const defaultMaxTokens = 4096

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ChatModelPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{
			PluginName: Name,
			BaseURL:    "https://api.anthropic.com/v1",
		},
	}
}

func (p *Plugin) BuildChatModel(ctx context.Context, cfg *entity.ModelConfig) (model.BaseChatModel, error) {
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("provider %s: model name is empty", Name)
	}

	mc := &einoClaude.Config{
		APIKey:    helper.ResolveEnvValue(cfg.Credential),
		Model:     cfg.ModelName,
		MaxTokens: defaultMaxTokens,
	}

	if cfg.BaseURL != "" {
		mc.BaseURL = &cfg.BaseURL
	}

	applyParamsToClaudeConfig(mc, cfg.Parameters)

	return einoClaude.NewChatModel(ctx, mc)
}

func applyParamsToClaudeConfig(mc *einoClaude.Config, params *entity.ModelParameters) {
	if params == nil {
		return
	}
	if params.Temperature != nil {
		mc.Temperature = params.Temperature
	}
	if params.MaxTokens != 0 {
		mc.MaxTokens = params.MaxTokens
	}
	if params.TopP != nil {
		mc.TopP = params.TopP
	}
}

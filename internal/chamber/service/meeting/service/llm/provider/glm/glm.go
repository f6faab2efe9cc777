package glm

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider/helper"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider/spi"
)

const Name = "glm"

var _ spi.ChatModelPlugin = (*Plugin)(nil)

// Plugin builds GLM/ZhiPu chat models over the OpenAI-compatible endpoint.
type Plugin struct {
	helper.BasePlugin
}

func New() spi.ChatModelPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{
			PluginName: Name,
			BaseURL:    "https://open.bigmodel.cn/api/paas/v4",
		},
	}
}

func (p *Plugin) BuildChatModel(ctx context.Context, cfg *entity.ModelConfig) (model.BaseChatModel, error) {
	return helper.NewOpenAICompatibleChatModel(ctx, cfg, p.BaseURL)
}

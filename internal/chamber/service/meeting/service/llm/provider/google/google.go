package google

import (
	"context"
	"fmt"

	einoGemini "github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider/helper"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider/spi"
)

const Name = "google"

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ChatModelPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{
			PluginName: Name,
			BaseURL:    "https://generativelanguage.googleapis.com/",
		},
	}
}

// BuildChatModel overrides the OpenAI-compatible path because Gemini models
// speak Google's generative AI API.
func (p *Plugin) BuildChatModel(ctx context.Context, cfg *entity.ModelConfig) (model.BaseChatModel, error) {
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("provider %s: model name is empty", Name)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  helper.ResolveEnvValue(cfg.Credential),
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: p.BaseURL,
		},
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client for %s/%s: %w", Name, cfg.ModelName, err)
	}

	mc := &einoGemini.Config{
		Client: client,
		Model:  cfg.ModelName,
	}

	applyParamsToGeminiConfig(mc, cfg.Parameters)

	return einoGemini.NewChatModel(ctx, mc)
}

func applyParamsToGeminiConfig(mc *einoGemini.Config, params *entity.ModelParameters) {
	if params == nil {
		return
	}
	if params.Temperature != nil {
		t := *params.Temperature
		mc.Temperature = &t
	}
	if params.MaxTokens != 0 {
		mt := params.MaxTokens
		mc.MaxTokens = &mt
	}
	if params.TopP != nil {
		mc.TopP = params.TopP
	}
}

package helper

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/gg/gptr"
	einoOpenAI "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

type BasePlugin struct {
	PluginName string
	BaseURL    string
}

func (b *BasePlugin) Name() string {
	return b.PluginName
}

// DefaultBaseURL returns the provider's default endpoint.
func (b *BasePlugin) DefaultBaseURL() string {
	return b.BaseURL
}

// NewOpenAICompatibleChatModel creates an Eino ChatModel using the OpenAI-compatible API.
// This is the common path for providers that expose an OpenAI-compatible endpoint
// (OpenAI, GLM/ZhiPu, etc.).
func NewOpenAICompatibleChatModel(ctx context.Context, cfg *entity.ModelConfig, defaultBaseURL string) (model.BaseChatModel, error) {
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("provider %s: model name is empty", cfg.Provider)
	}

	mc := &einoOpenAI.ChatModelConfig{
		Model:     cfg.ModelName,
		APIKey:    ResolveEnvValue(cfg.Credential),
		MaxTokens: gptr.Of(4096),
		ResponseFormat: &einoOpenAI.ChatCompletionResponseFormat{
			Type: einoOpenAI.ChatCompletionResponseFormatTypeText,
		},
	}

	mc.BaseURL = defaultBaseURL
	if cfg.BaseURL != "" {
		mc.BaseURL = cfg.BaseURL
	}

	applyParamsToOpenAIChatModelConfig(mc, cfg.Parameters)

	return einoOpenAI.NewChatModel(ctx, mc)
}

func applyParamsToOpenAIChatModelConfig(mc *einoOpenAI.ChatModelConfig, params *entity.ModelParameters) {
	if params == nil {
		return
	}
	if params.Temperature != nil {
		mc.Temperature = params.Temperature
	}
	if params.MaxTokens != 0 {
		mc.MaxTokens = gptr.Of(params.MaxTokens)
	}
	if params.TopP != nil {
		mc.TopP = params.TopP
	}
}

// ResolveEnvValue resolves "${ENV_VAR}" references in a string.
func ResolveEnvValue(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envKey := s[2 : len(s)-1]
		return os.Getenv(envKey)
	}
	return s
}

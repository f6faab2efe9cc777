package helper

import (
	"testing"

	"github.com/bytedance/gg/gptr"
	einoOpenAI "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

func TestApplyParamsNilLeavesDefaults(t *testing.T) {
	mc := &einoOpenAI.ChatModelConfig{MaxTokens: gptr.Of(4096)}
	applyParamsToOpenAIChatModelConfig(mc, nil)

	assert.Nil(t, mc.Temperature)
	assert.Equal(t, 4096, *mc.MaxTokens)
	assert.Nil(t, mc.TopP)
}

func TestApplyParamsOverridesDefaults(t *testing.T) {
	temp := float32(0.3)
	topP := float32(0.9)
	mc := &einoOpenAI.ChatModelConfig{MaxTokens: gptr.Of(4096)}
	applyParamsToOpenAIChatModelConfig(mc, &entity.ModelParameters{
		Temperature: &temp,
		MaxTokens:   1024,
		TopP:        &topP,
	})

	require.NotNil(t, mc.Temperature)
	assert.Equal(t, float32(0.3), *mc.Temperature)
	assert.Equal(t, 1024, *mc.MaxTokens)
	require.NotNil(t, mc.TopP)
	assert.Equal(t, float32(0.9), *mc.TopP)
}

func TestApplyParamsZeroMaxTokensKeepsDefault(t *testing.T) {
	mc := &einoOpenAI.ChatModelConfig{MaxTokens: gptr.Of(4096)}
	applyParamsToOpenAIChatModelConfig(mc, &entity.ModelParameters{})
	assert.Equal(t, 4096, *mc.MaxTokens)
}

func TestResolveEnvValue(t *testing.T) {
	t.Setenv("ROUNDTABLE_TEST_KEY", "sk-from-env")

	assert.Equal(t, "sk-from-env", ResolveEnvValue("${ROUNDTABLE_TEST_KEY}"))
	assert.Equal(t, "sk-literal", ResolveEnvValue("sk-literal"))
	assert.Equal(t, "", ResolveEnvValue("${ROUNDTABLE_UNSET_KEY}"))
}

package provider

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider/spi"
)

type nopPlugin struct{ name string }

func (p nopPlugin) Name() string           { return p.name }
func (p nopPlugin) DefaultBaseURL() string { return "" }
func (p nopPlugin) BuildChatModel(context.Context, *entity.ModelConfig) (model.BaseChatModel, error) {
	return nil, nil
}

func factoryFor(name string) spi.PluginFactory {
	return func() spi.ChatModelPlugin { return nopPlugin{name: name} }
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("stub", factoryFor("stub")))

	factory, err := r.Get("stub")
	require.NoError(t, err)
	assert.Equal(t, "stub", factory().Name())
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("stub", factoryFor("stub")))
	assert.Error(t, r.Register("stub", factoryFor("stub")))

	assert.Panics(t, func() { r.MustRegister("stub", factoryFor("stub")) })
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("missing")
	assert.Error(t, err)
}

func TestInTreeRegistryCoversAllKnownProviders(t *testing.T) {
	r := NewInTreeRegistry()
	for _, p := range entity.KnownProviders {
		factory, err := r.Get(string(p))
		require.NoError(t, err, string(p))
		assert.Equal(t, string(p), factory().Name())
	}
	assert.Equal(t, len(entity.KnownProviders), r.Len())
}

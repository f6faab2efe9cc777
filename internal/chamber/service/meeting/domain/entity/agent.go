package entity

import (
	"strings"
	"time"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
)

// Provider identifies the model backend an agent speaks through.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
	ProviderGLM       Provider = "glm"
)

// KnownProviders lists every provider the adapter factory can build.
var KnownProviders = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderGLM}

func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderGLM:
		return true
	}
	return false
}

// ModelParameters are the optional sampling knobs forwarded to a provider.
type ModelParameters struct {
	// Temperature controls sampling randomness. nil means provider default.
	Temperature *float32 `json:"temperature,omitempty"`

	// MaxTokens caps the completion length. 0 means provider default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// TopP is nucleus sampling. nil means provider default.
	TopP *float32 `json:"top_p,omitempty"`
}

// ModelConfig binds an agent to one provider model.
type ModelConfig struct {
	// Provider selects the backend (openai/anthropic/google/glm).
	Provider Provider `json:"provider"`

	// ModelName is the provider-side model identifier (e.g. "gpt-4o").
	ModelName string `json:"model_name"`

	// Credential is the API key. Values of the form "${ENV_VAR}" are
	// resolved from the environment by the provider plugin.
	Credential string `json:"credential"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `json:"base_url,omitempty"`

	// Parameters are optional sampling parameters.
	Parameters *ModelParameters `json:"parameters,omitempty"`
}

// Role describes how an agent behaves in a meeting.
type Role struct {
	// Name is the short role title (e.g. "Product Manager").
	Name string `json:"name"`

	// Description expands on the role's perspective and expertise.
	Description string `json:"description"`

	// SystemPrompt is the role's base instruction, injected verbatim into
	// the system prompt of every turn.
	SystemPrompt string `json:"system_prompt"`
}

// Agent is a configured AI participant: identity, role, and model binding.
//
// The registry holds live agents; meetings capture immutable snapshots at
// creation time so later edits never rewrite history.
type Agent struct {
	// ID is the unique identifier for this agent.
	ID string `json:"id"`

	// Name is the display name used for speaker attribution and mentions.
	Name string `json:"name"`

	// Role is the agent's meeting persona.
	Role Role `json:"role"`

	// ModelConfig is the model binding used for this agent's turns.
	ModelConfig ModelConfig `json:"model_config"`

	// CreatedAt is when this agent was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when this agent was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	maxNameLen         = 50
	maxDescriptionLen  = 2000
	maxSystemPromptLen = 2000
)

// Validate checks the field bounds. Returns errno.ErrValidation wraps.
func (a *Agent) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errno.Validationf("agent name cannot be empty")
	}
	if len(a.Name) > maxNameLen {
		return errno.Validationf("agent name must be %d characters or less", maxNameLen)
	}
	if strings.TrimSpace(a.Role.Name) == "" {
		return errno.Validationf("role name cannot be empty")
	}
	if len(a.Role.Name) > maxNameLen {
		return errno.Validationf("role name must be %d characters or less", maxNameLen)
	}
	if strings.TrimSpace(a.Role.Description) == "" {
		return errno.Validationf("role description cannot be empty")
	}
	if len(a.Role.Description) > maxDescriptionLen {
		return errno.Validationf("role description must be %d characters or less", maxDescriptionLen)
	}
	if strings.TrimSpace(a.Role.SystemPrompt) == "" {
		return errno.Validationf("role system prompt cannot be empty")
	}
	if len(a.Role.SystemPrompt) > maxSystemPromptLen {
		return errno.Validationf("role system prompt must be %d characters or less", maxSystemPromptLen)
	}
	if !a.ModelConfig.Provider.Valid() {
		return errno.Validationf("unknown provider %q", a.ModelConfig.Provider)
	}
	if a.ModelConfig.ModelName == "" {
		return errno.Validationf("model name cannot be empty")
	}
	return nil
}

package provider

import (
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider/anthropic"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider/glm"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider/google"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider/openai"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider/spi"
)

func NewInTreeRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(openai.Name, func() spi.ChatModelPlugin { return openai.New() })
	r.MustRegister(anthropic.Name, func() spi.ChatModelPlugin { return anthropic.New() })
	r.MustRegister(google.Name, func() spi.ChatModelPlugin { return google.New() })
	r.MustRegister(glm.Name, func() spi.ChatModelPlugin { return glm.New() })
	return r
}

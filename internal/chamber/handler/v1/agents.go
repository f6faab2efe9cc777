package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service"
	"github.com/kiosk404/roundtable/internal/pkg/core"
	"github.com/kiosk404/roundtable/pkg/errorx"
)

// AgentHandler handles agent registry REST endpoints.
type AgentHandler struct {
	svc service.AgentService
}

// NewAgentHandler creates a new AgentHandler.
func NewAgentHandler(svc service.AgentService) *AgentHandler {
	return &AgentHandler{svc: svc}
}

// Create handles POST /v1/agents.
func (h *AgentHandler) Create(c *gin.Context) {
	var req CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind agent request"), nil)
		return
	}

	agent := agentFromRequest(req.Name, req.Role, req.ModelConfig)
	if err := h.svc.CreateAgent(c.Request.Context(), agent); err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrAgentCreate, "create agent"), nil)
		return
	}

	core.WriteResponse(c, nil, toAgentResponse(agent))
}

// List handles GET /v1/agents.
func (h *AgentHandler) List(c *gin.Context) {
	agents, err := h.svc.ListAgents(c.Request.Context())
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrAgentList, "list agents"), nil)
		return
	}

	resp := make([]AgentResponse, 0, len(agents))
	for _, a := range agents {
		resp = append(resp, toAgentResponse(a))
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}

// Get handles GET /v1/agents/:id.
func (h *AgentHandler) Get(c *gin.Context) {
	id := c.Param("id")
	agent, err := h.svc.GetAgent(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrAgentNotFound, "agent %q not found", id), nil)
		return
	}
	core.WriteResponse(c, nil, toAgentResponse(agent))
}

// Update handles PUT /v1/agents/:id. An empty credential in the request
// keeps the stored one.
func (h *AgentHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind agent request"), nil)
		return
	}

	current, err := h.svc.GetAgent(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrAgentNotFound, "agent %q not found", id), nil)
		return
	}

	agent := agentFromRequest(req.Name, req.Role, req.ModelConfig)
	agent.ID = id
	if agent.ModelConfig.Credential == "" {
		agent.ModelConfig.Credential = current.ModelConfig.Credential
	}

	if err := h.svc.UpdateAgent(c.Request.Context(), agent); err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrAgentUpdate, "update agent %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, toAgentResponse(agent))
}

// Delete handles DELETE /v1/agents/:id.
func (h *AgentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.DeleteAgent(c.Request.Context(), id); err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrAgentDelete, "delete agent %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"id": id, "deleted": true})
}

// TestConnection handles POST /v1/agents/:id/test_connection.
func (h *AgentHandler) TestConnection(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.TestConnection(c.Request.Context(), id); err != nil {
		core.WriteResponse(c, wrapDomain(err, ErrAgentProbe, "test connection for agent %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"id": id, "connected": true})
}

func agentFromRequest(name string, role RoleRequest, mc ModelConfigRequest) *entity.Agent {
	return &entity.Agent{
		Name: name,
		Role: entity.Role{
			Name:         role.Name,
			Description:  role.Description,
			SystemPrompt: role.SystemPrompt,
		},
		ModelConfig: entity.ModelConfig{
			Provider:   entity.Provider(mc.Provider),
			ModelName:  mc.ModelName,
			Credential: mc.Credential,
			BaseURL:    mc.BaseURL,
			Parameters: mc.Parameters,
		},
	}
}

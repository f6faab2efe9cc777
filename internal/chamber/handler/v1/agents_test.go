package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/store/inmemory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAdapter struct{}

func (stubAdapter) Complete(context.Context, []*schema.Message) (*llm.Completion, error) {
	return &llm.Completion{Content: "ok"}, nil
}

func (stubAdapter) Stream(context.Context, []*schema.Message) (*schema.StreamReader[*entity.StreamDelta], error) {
	panic("not used")
}

func (stubAdapter) TestConnection(context.Context) error { return nil }

type stubFactory struct{}

func (stubFactory) Build(context.Context, *entity.ModelConfig) (llm.ChatAdapter, error) {
	return stubAdapter{}, nil
}

type agentAPIFixture struct {
	engine   *gin.Engine
	meetings *inmemory.MeetingStore
}

func newAgentAPIFixture(t *testing.T) *agentAPIFixture {
	t.Helper()
	agents := inmemory.NewAgentStore()
	meetings := inmemory.NewMeetingStore()
	h := NewAgentHandler(service.NewAgentService(agents, meetings, stubFactory{}))

	engine := gin.New()
	g := engine.Group("/v1")
	g.POST("/agents", h.Create)
	g.GET("/agents", h.List)
	g.GET("/agents/:id", h.Get)
	g.PUT("/agents/:id", h.Update)
	g.DELETE("/agents/:id", h.Delete)
	g.POST("/agents/:id/test_connection", h.TestConnection)

	return &agentAPIFixture{engine: engine, meetings: meetings}
}

func (f *agentAPIFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func createAgentBody(name string) CreateAgentRequest {
	return CreateAgentRequest{
		Name: name,
		Role: RoleRequest{
			Name:         "Engineer",
			Description:  "builds things",
			SystemPrompt: "Be concrete.",
		},
		ModelConfig: ModelConfigRequest{
			Provider:   "openai",
			ModelName:  "gpt-4o",
			Credential: "sk-secret",
		},
	}
}

func TestAgentCreateAndGet(t *testing.T) {
	f := newAgentAPIFixture(t)

	w := f.do(t, http.MethodPost, "/v1/agents", createAgentBody("Alice"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created AgentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Alice", created.Name)
	assert.True(t, created.ModelConfig.CredentialSet)
	assert.NotContains(t, w.Body.String(), "sk-secret", "credentials never leave the server")

	w = f.do(t, http.MethodGet, "/v1/agents/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got AgentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
}

func TestAgentCreateRejectsBadBody(t *testing.T) {
	f := newAgentAPIFixture(t)

	// Missing required fields fail binding.
	w := f.do(t, http.MethodPost, "/v1/agents", gin.H{"name": "Alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Well-formed body with an unknown provider fails domain validation.
	body := createAgentBody("Alice")
	body.ModelConfig.Provider = "frontier"
	w = f.do(t, http.MethodPost, "/v1/agents", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAgentGetNotFound(t *testing.T) {
	f := newAgentAPIFixture(t)
	w := f.do(t, http.MethodGet, "/v1/agents/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAgentList(t *testing.T) {
	f := newAgentAPIFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/v1/agents", createAgentBody("Alice")).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/v1/agents", createAgentBody("Bob")).Code)

	w := f.do(t, http.MethodGet, "/v1/agents", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []AgentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}

func TestAgentUpdateKeepsStoredCredential(t *testing.T) {
	f := newAgentAPIFixture(t)

	w := f.do(t, http.MethodPost, "/v1/agents", createAgentBody("Alice"))
	require.Equal(t, http.StatusOK, w.Code)
	var created AgentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	update := UpdateAgentRequest{
		Name: "Alicia",
		Role: RoleRequest{
			Name:         "Architect",
			Description:  "designs things",
			SystemPrompt: "Think in systems.",
		},
		ModelConfig: ModelConfigRequest{
			Provider:  "openai",
			ModelName: "gpt-4o",
			// Credential deliberately omitted.
		},
	}
	w = f.do(t, http.MethodPut, "/v1/agents/"+created.ID, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated AgentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Alicia", updated.Name)
	assert.True(t, updated.ModelConfig.CredentialSet, "empty credential keeps the stored one")
}

func TestAgentDelete(t *testing.T) {
	f := newAgentAPIFixture(t)

	w := f.do(t, http.MethodPost, "/v1/agents", createAgentBody("Alice"))
	require.Equal(t, http.StatusOK, w.Code)
	var created AgentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	require.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/v1/agents/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/v1/agents/"+created.ID, nil).Code)
}

func TestAgentDeleteRefusedWhileInLiveMeeting(t *testing.T) {
	f := newAgentAPIFixture(t)

	w := f.do(t, http.MethodPost, "/v1/agents", createAgentBody("Alice"))
	require.Equal(t, http.StatusOK, w.Code)
	var created AgentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	require.NoError(t, f.meetings.Save(context.Background(), &entity.Meeting{
		ID:           "m1",
		Topic:        "standup",
		Status:       entity.StatusActive,
		Participants: []*entity.Agent{{ID: created.ID, Name: "Alice"}},
		Config:       entity.DefaultMeetingConfig(),
	}))

	w = f.do(t, http.MethodDelete, "/v1/agents/"+created.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAgentTestConnectionEndpoint(t *testing.T) {
	f := newAgentAPIFixture(t)

	w := f.do(t, http.MethodPost, "/v1/agents", createAgentBody("Alice"))
	require.Equal(t, http.StatusOK, w.Code)
	var created AgentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = f.do(t, http.MethodPost, "/v1/agents/"+created.ID+"/test_connection", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"connected":true`)
}

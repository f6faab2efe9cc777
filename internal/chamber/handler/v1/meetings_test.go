package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service/runtime"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/broadcast"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/store/inmemory"
)

type meetingAPIFixture struct {
	engine *gin.Engine
	svc    service.MeetingService
}

func newMeetingAPIFixture(t *testing.T) *meetingAPIFixture {
	t.Helper()
	agents := inmemory.NewAgentStore()
	for _, a := range []*entity.Agent{
		{
			ID:   "a1",
			Name: "Alice",
			Role: entity.Role{Name: "Engineer", Description: "builds", SystemPrompt: "Be concrete."},
			ModelConfig: entity.ModelConfig{
				Provider: entity.ProviderOpenAI, ModelName: "gpt-4o", Credential: "sk-test",
			},
		},
	} {
		require.NoError(t, agents.Save(context.Background(), a))
	}

	store := inmemory.NewMeetingStore()
	hub := broadcast.NewHub()
	factory := stubFactory{}
	runner := runtime.NewTurnRunner(store, factory, runtime.NewContextBuilder(), hub)
	coordinator := runtime.NewCoordinator(runner, runtime.NewSpeakerSelector(1), 0)
	svc := service.NewMeetingService(store, agents, coordinator, hub,
		service.NewMinutesGenerator(factory), service.NewMindMapGenerator(factory))

	h := NewMeetingHandler(svc)
	engine := gin.New()
	g := engine.Group("/v1")
	g.POST("/meetings", h.Create)
	g.GET("/meetings/:id", h.Get)
	g.POST("/meetings/:id/end", h.End)

	return &meetingAPIFixture{engine: engine, svc: svc}
}

func (f *meetingAPIFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
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

func (f *meetingAPIFixture) createMeeting(t *testing.T) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/v1/meetings", gin.H{
		"topic":           "release readiness",
		"participant_ids": []string{"a1"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp MeetingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func TestEndMeetingEmptyBodyGeneratesMinutes(t *testing.T) {
	f := newMeetingAPIFixture(t)
	id := f.createMeeting(t)
	_, err := f.svc.AddUserMessage(context.Background(), id, "Are we ready to ship?")
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/v1/meetings/"+id+"/end", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp MeetingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(entity.StatusEnded), resp.Status)
	require.NotNil(t, resp.CurrentMinutes, "omitted body defaults to generating final minutes")
	assert.Equal(t, 1, resp.CurrentMinutes.Version)
}

func TestEndMeetingCanSkipMinutes(t *testing.T) {
	f := newMeetingAPIFixture(t)
	id := f.createMeeting(t)
	_, err := f.svc.AddUserMessage(context.Background(), id, "Are we ready to ship?")
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/v1/meetings/"+id+"/end",
		gin.H{"auto_generate_minutes": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp MeetingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(entity.StatusEnded), resp.Status)
	assert.Nil(t, resp.CurrentMinutes)
}

package chamber

import (
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/roundtable/internal/chamber/handler/middleware"
	v1 "github.com/kiosk404/roundtable/internal/chamber/handler/v1"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting"
)

// routerDeps holds the dependencies needed for route registration.
type routerDeps struct {
	module          *meeting.Module
	authConfig      *middleware.AuthConfig
	enableProfiling bool
}

func initRouter(g *gin.Engine, deps *routerDeps) {
	installMiddleware(g, deps)
	installController(g, deps)
}

func installMiddleware(g *gin.Engine, deps *routerDeps) {
	g.Use(gin.Recovery())
	g.Use(middleware.CORS())

	if deps.authConfig != nil {
		g.Use(middleware.BearerAuth(deps.authConfig))
	}
}

func installController(g *gin.Engine, deps *routerDeps) {
	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.enableProfiling {
		pprof.Register(g)
	}

	// Handlers.
	agentHandler := v1.NewAgentHandler(deps.module.Agents)
	meetingHandler := v1.NewMeetingHandler(deps.module.Meetings)
	turnHandler := v1.NewTurnHandler(deps.module.Meetings)
	minutesHandler := v1.NewMinutesHandler(deps.module.Meetings)
	mindMapHandler := v1.NewMindMapHandler(deps.module.Meetings)
	exportHandler := v1.NewExportHandler(deps.module.Meetings)
	eventsHandler := v1.NewEventsHandler(deps.module.Meetings)

	// --- /v1 route group ---
	apiV1 := g.Group("/v1")
	{
		// Agent registry.
		apiV1.POST("/agents", agentHandler.Create)
		apiV1.GET("/agents", agentHandler.List)
		apiV1.GET("/agents/:id", agentHandler.Get)
		apiV1.PUT("/agents/:id", agentHandler.Update)
		apiV1.DELETE("/agents/:id", agentHandler.Delete)
		apiV1.POST("/agents/:id/test_connection", agentHandler.TestConnection)

		// Meeting lifecycle.
		apiV1.POST("/meetings", meetingHandler.Create)
		apiV1.GET("/meetings", meetingHandler.List)
		apiV1.GET("/meetings/:id", meetingHandler.Get)
		apiV1.DELETE("/meetings/:id", meetingHandler.Delete)
		apiV1.POST("/meetings/:id/start", meetingHandler.Start)
		apiV1.POST("/meetings/:id/pause", meetingHandler.Pause)
		apiV1.POST("/meetings/:id/end", meetingHandler.End)
		apiV1.PUT("/meetings/:id/config", meetingHandler.UpdateConfig)

		// Agenda.
		apiV1.POST("/meetings/:id/agenda", meetingHandler.AddAgendaItem)
		apiV1.POST("/meetings/:id/agenda/:item_id/complete", meetingHandler.CompleteAgendaItem)
		apiV1.DELETE("/meetings/:id/agenda/:item_id", meetingHandler.RemoveAgendaItem)

		// Conversation.
		apiV1.POST("/meetings/:id/messages", turnHandler.AddMessage)
		apiV1.POST("/meetings/:id/turns", turnHandler.RequestTurn)
		apiV1.POST("/meetings/:id/turns/stop", turnHandler.StopTurn)
		apiV1.POST("/meetings/:id/rounds", turnHandler.RunRound)

		// Minutes.
		apiV1.POST("/meetings/:id/minutes", minutesHandler.Generate)
		apiV1.GET("/meetings/:id/minutes", minutesHandler.GetCurrent)
		apiV1.PUT("/meetings/:id/minutes", minutesHandler.Update)
		apiV1.GET("/meetings/:id/minutes/history", minutesHandler.History)

		// Mind map.
		apiV1.POST("/meetings/:id/mindmap", mindMapHandler.Generate)
		apiV1.GET("/meetings/:id/mindmap", mindMapHandler.Get)
		apiV1.PUT("/meetings/:id/mindmap", mindMapHandler.Update)
		apiV1.GET("/meetings/:id/mindmap/export", mindMapHandler.Export)

		// Exports and events.
		apiV1.GET("/meetings/:id/export", exportHandler.Meeting)
		apiV1.GET("/meetings/:id/events", eventsHandler.Subscribe)
	}
}

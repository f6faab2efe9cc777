package chamber

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/roundtable/internal/chamber/config"
	"github.com/kiosk404/roundtable/internal/chamber/handler/middleware"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting"
	"github.com/kiosk404/roundtable/pkg/logger"
)

// shutdownTimeout bounds how long in-flight requests may take to drain.
const shutdownTimeout = 10 * time.Second

type apiServer struct {
	engine        *gin.Engine
	server        *http.Server
	meetingModule *meeting.Module
}

func createAPIServer(cfg *config.Config) (*apiServer, error) {
	gin.SetMode(cfg.Server.Mode)

	// Initialize the Meeting module (K8S-style: Config → Complete → New).
	meetingCfg := &meeting.Config{
		ChainDepth: cfg.Meeting.ChainDepth,
		MaxRetries: cfg.Meeting.MaxRetries,
		StoreType:  cfg.Meeting.StoreType,
		BoltDBPath: cfg.Meeting.BoltDBPath,
	}
	meetingModule, err := meetingCfg.Complete().New(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Meeting module: %w", err)
	}
	logger.Info("[Chamber] Meeting module initialized successfully")

	engine := gin.New()
	addr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.BindPort)

	return &apiServer{
		engine: engine,
		server: &http.Server{
			Addr:    addr,
			Handler: engine,
		},
		meetingModule: meetingModule,
	}, nil
}

func (s *apiServer) prepareRun(cfg *config.Config) {
	initRouter(s.engine, &routerDeps{
		module: s.meetingModule,
		authConfig: &middleware.AuthConfig{
			Enabled: cfg.Auth.Enabled,
			Token:   cfg.Auth.Token,
		},
		enableProfiling: cfg.Server.EnableProfiling,
	})
}

// run serves until SIGINT/SIGTERM, then drains in-flight requests and
// closes the meeting module.
func (s *apiServer) run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[Chamber] serving on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		s.closeModule()
		return err
	case <-ctx.Done():
	}

	logger.Info("[Chamber] shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("[Chamber] graceful shutdown failed: %v", err)
	}
	s.closeModule()
	return <-errCh
}

func (s *apiServer) closeModule() {
	if err := s.meetingModule.Close(); err != nil {
		logger.Warn("[Chamber] closing meeting module: %v", err)
	}
}

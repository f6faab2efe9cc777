package meeting

import (
	"context"
	"fmt"
	"time"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/repo"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service/runtime"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/broadcast"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm/provider"
	boltdbStore "github.com/kiosk404/roundtable/internal/chamber/service/meeting/store/boltdb"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/store/inmemory"
	"github.com/kiosk404/roundtable/pkg/logger"
)

// Config holds the configuration for the Meeting module.
// Follows K8S-style: Config → Complete() → New(ctx).
type Config struct {
	// ChainDepth limits mention-triggered follow-up turns (default: 4).
	ChainDepth int `json:"chain_depth,omitempty"`

	// MaxRetries is the retry budget for transient model failures (default: 3).
	MaxRetries int `json:"max_retries,omitempty"`

	// StoreType selects the persistence backend: "inmemory" or "boltdb".
	// Default: "boltdb".
	StoreType string `json:"store_type,omitempty"`

	// BoltDBPath is the file path for BoltDB storage (when StoreType="boltdb").
	// Default: "data/roundtable.db".
	BoltDBPath string `json:"boltdb_path,omitempty"`
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.ChainDepth <= 0 {
		c.ChainDepth = runtime.DefaultChainDepth
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.StoreType == "" {
		c.StoreType = "boltdb"
	}
	if c.BoltDBPath == "" {
		c.BoltDBPath = "data/roundtable.db"
	}
	return CompletedConfig{c}
}

// Module is the top-level Meeting module, holding all domain services.
//
// It exposes:
//   - Agents: agent registry CRUD + connectivity probes
//   - Meetings: the meeting state machine, turns, minutes, mind maps
//   - Hub: the per-meeting event fan-out
type Module struct {
	Agents   service.AgentService
	Meetings service.MeetingService
	Hub      *broadcast.Hub

	boltDB *boltdbStore.DB // nil when using inmemory store
}

// Close releases resources held by the module.
func (m *Module) Close() error {
	if m.boltDB != nil {
		return m.boltDB.Close()
	}
	return nil
}

// New creates and initializes the Meeting module from a completed config.
func (c CompletedConfig) New(_ context.Context) (*Module, error) {
	logger.Info("[Meeting] creating Meeting module...")

	var (
		agentStore   repo.AgentRepository
		meetingStore repo.MeetingRepository
		boltDB       *boltdbStore.DB
	)

	switch c.StoreType {
	case "boltdb":
		var err error
		boltDB, err = boltdbStore.Open(c.BoltDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open boltdb at %s: %w", c.BoltDBPath, err)
		}
		agentStore = boltdbStore.NewAgentStore(boltDB)
		meetingStore = boltdbStore.NewMeetingStore(boltDB)
		logger.Info("[Meeting] using BoltDB store at %s", c.BoltDBPath)
	default:
		agentStore = inmemory.NewAgentStore()
		meetingStore = inmemory.NewMeetingStore()
		logger.Info("[Meeting] using in-memory store")
	}

	policy := llm.DefaultRetryPolicy()
	policy.MaxAttempts = c.MaxRetries
	adapters := llm.NewAdapterFactory(provider.NewInTreeRegistry(), policy)

	hub := broadcast.NewHub()
	builder := runtime.NewContextBuilder()
	runner := runtime.NewTurnRunner(meetingStore, adapters, builder, hub)
	selector := runtime.NewSpeakerSelector(time.Now().UnixNano())
	coordinator := runtime.NewCoordinator(runner, selector, c.ChainDepth)

	minutes := service.NewMinutesGenerator(adapters)
	mindMaps := service.NewMindMapGenerator(adapters)

	agents := service.NewAgentService(agentStore, meetingStore, adapters)
	meetings := service.NewMeetingService(meetingStore, agentStore, coordinator, hub, minutes, mindMaps)

	logger.Info("[Meeting] Meeting module initialized (store=%s, chain_depth=%d, retries=%d)",
		c.StoreType, c.ChainDepth, c.MaxRetries)

	return &Module{
		Agents:   agents,
		Meetings: meetings,
		Hub:      hub,
		boltDB:   boltDB,
	}, nil
}

package runtime

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/pkg/logger"
)

// DefaultChainDepth bounds mention-triggered follow-up turns.
const DefaultChainDepth = 4

// Coordinator serializes turn execution per meeting.
//
// All operations that read-modify-write one meeting run under its slot
// mutex, so a second request queues rather than interleaves messages.
// Streaming holds the lock for the whole turn. Across meetings operations
// run in parallel.
type Coordinator struct {
	runner     *TurnRunner
	selector   *SpeakerSelector
	chainDepth int

	mu    sync.Mutex
	slots map[string]*meetingSlot
}

type meetingSlot struct {
	mu sync.Mutex

	// abort is the controller of the turn currently holding mu, nil when
	// idle. Guarded by the coordinator's mu, not the slot's.
	abort *AbortController
}

// NewCoordinator creates a Coordinator. chainDepth <= 0 selects the default.
func NewCoordinator(runner *TurnRunner, selector *SpeakerSelector, chainDepth int) *Coordinator {
	if chainDepth <= 0 {
		chainDepth = DefaultChainDepth
	}
	return &Coordinator{
		runner:     runner,
		selector:   selector,
		chainDepth: chainDepth,
		slots:      make(map[string]*meetingSlot),
	}
}

func (c *Coordinator) slot(meetingID string) *meetingSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[meetingID]
	if !ok {
		s = &meetingSlot{}
		c.slots[meetingID] = s
	}
	return s
}

// WithLock runs fn while holding the meeting's serialization lock. Used by
// state-machine operations that mutate the meeting outside a turn.
func (c *Coordinator) WithLock(meetingID string, fn func() error) error {
	s := c.slot(meetingID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// RunTurn executes one turn for the given speaker, then chains follow-up
// turns for mentioned participants up to the depth limit. Returns the lead
// turn's message.
func (c *Coordinator) RunTurn(ctx context.Context, meetingID, speakerID string, mode TurnMode) (*entity.Message, error) {
	s := c.slot(meetingID)
	s.mu.Lock()
	defer s.mu.Unlock()

	abort := c.arm(s, ctx, meetingID)
	defer c.disarm(s, abort)

	result, err := c.runner.ExecuteTurn(ctx, meetingID, speakerID, mode, abort)
	if err != nil {
		return nil, err
	}

	c.chain(ctx, meetingID, c.chainTargets(result), abort, 2)
	return result.Message, nil
}

// chainTargets resolves the mention fan-out for a finished turn through the
// selector, as participant IDs in mention order.
func (c *Coordinator) chainTargets(result *TurnResult) []string {
	var ids []string
	for _, agent := range c.selector.MentionTargets(result.Meeting, result.Message) {
		ids = append(ids, agent.ID)
	}
	return ids
}

// RunRound executes one turn per participant in the order the selector
// yields. Stops early when the meeting leaves active, the round limit is
// hit, or the round is cancelled. Mention chaining is deferred to explicit
// turn requests; a round gives every participant exactly one turn.
func (c *Coordinator) RunRound(ctx context.Context, meeting *entity.Meeting, mode TurnMode) ([]*entity.Message, error) {
	s := c.slot(meeting.ID)
	s.mu.Lock()
	defer s.mu.Unlock()

	abort := c.arm(s, ctx, meeting.ID)
	defer c.disarm(s, abort)

	var produced []*entity.Message
	for _, speaker := range c.selector.RoundOrder(meeting) {
		if err := abort.CheckAborted(); err != nil {
			return produced, err
		}
		result, err := c.runner.ExecuteTurn(ctx, meeting.ID, speaker.ID, mode, abort)
		if err != nil {
			if errors.Is(err, errno.ErrMeetingNotActive) || errors.Is(err, errno.ErrMaxRoundsReached) {
				return produced, nil
			}
			return produced, err
		}
		produced = append(produced, result.Message)
	}
	return produced, nil
}

// StopTurn cancels the meeting's in-flight turn and any chained follow-ups.
// Accumulated partial content is discarded; nothing is appended.
func (c *Coordinator) StopTurn(meetingID string) {
	c.mu.Lock()
	s, ok := c.slots[meetingID]
	var abort *AbortController
	if ok {
		abort = s.abort
	}
	c.mu.Unlock()

	if abort != nil {
		abort.Abort()
	}
}

// Release cancels any in-flight work and forgets the meeting's slot. Called
// on meeting deletion.
func (c *Coordinator) Release(meetingID string) {
	c.StopTurn(meetingID)
	c.mu.Lock()
	delete(c.slots, meetingID)
	c.mu.Unlock()
}

// chain re-enters ExecuteTurn for mentioned participants, depth-first, until
// the depth limit, a turn without mentions, or an abort. Chained turns run
// blocking regardless of how the lead turn streamed; subscribers see their
// messages through new_message events. Chain failures end the chain without
// failing the lead turn.
func (c *Coordinator) chain(ctx context.Context, meetingID string, targets []string, abort *AbortController, depth int) {
	if depth > c.chainDepth || len(targets) == 0 {
		return
	}
	for _, target := range targets {
		if abort.IsAborted() {
			return
		}
		result, err := c.runner.ExecuteTurn(ctx, meetingID, target, TurnBlocking, abort)
		if err != nil {
			if !errors.Is(err, errno.ErrTurnAborted) {
				logger.WarnX("meeting", "mention chain stopped at depth %d for %s: %v", depth, target, err)
			}
			return
		}
		c.chain(ctx, meetingID, c.chainTargets(result), abort, depth+1)
	}
}

func (c *Coordinator) arm(s *meetingSlot, ctx context.Context, meetingID string) *AbortController {
	abort := NewAbortController(ctx, uuid.New().String()[:8]+"/"+meetingID, 0)
	c.mu.Lock()
	s.abort = abort
	c.mu.Unlock()
	return abort
}

func (c *Coordinator) disarm(s *meetingSlot, abort *AbortController) {
	c.mu.Lock()
	if s.abort == abort {
		s.abort = nil
	}
	c.mu.Unlock()
	abort.CleanUp()
}

package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/pkg/logger"
)

// AbortController manages turn cancellation and timeout.
//
// It wraps context.WithCancel to provide a way to cancel a turn:
// - Explicit Abort() for user-issued stops
// - Timeout for automatic cancellation after a specified duration
// - Thread-safe abort state tracking
type AbortController struct {
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	down   bool
	turnID string
}

// NewAbortController creates a new AbortController.
//
// If timeout is greater than 0 the context is additionally canceled after
// that duration.
func NewAbortController(parent context.Context, turnID string, timeout time.Duration) *AbortController {
	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	return &AbortController{
		ctx:    ctx,
		cancel: cancel,
		turnID: turnID,
	}
}

// Context returns the controlled context.
// Use this context for all downstream operations.
func (ac *AbortController) Context() context.Context {
	return ac.ctx
}

// Abort cancels the turn and marks it as aborted.
//
// It is safe to call Abort multiple times.
func (ac *AbortController) Abort() {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.down {
		return
	}
	ac.down = true
	ac.cancel()
	logger.Info("[AbortController] Abort turn %s", ac.turnID)
}

// IsAborted returns true if the turn is aborted.
func (ac *AbortController) IsAborted() bool {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.down {
		return true
	}
	select {
	case <-ac.ctx.Done():
		return true
	default:
		return false
	}
}

// CheckAborted returns errno.ErrTurnAborted if the turn is aborted.
func (ac *AbortController) CheckAborted() error {
	if ac.IsAborted() {
		return errno.ErrTurnAborted
	}
	return nil
}

// CleanUp releases the controller's context resources.
func (ac *AbortController) CleanUp() {
	ac.cancel()
}

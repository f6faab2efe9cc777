// Package safego launches goroutines that survive panics.
package safego

import (
	"context"
	"runtime/debug"

	"github.com/kiosk404/roundtable/pkg/logger"
)

// Go runs fn in a new goroutine, recovering and logging any panic so a
// misbehaving turn cannot take the whole server down. The context is
// passed for call-site symmetry; cancellation is the fn's concern.
func Go(_ context.Context, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("[safego] goroutine panic recovered: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

package llm

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

// Completion is the final result of a non-streaming model call.
type Completion struct {
	Content          string
	ReasoningContent string
}

// ChatAdapter is the uniform surface the turn engine speaks to a model
// through, regardless of provider.
//
// Complete blocks until the model finishes. Stream returns a reader of
// incremental deltas; the caller consumes via sr.Recv() until io.EOF and
// owns assembling the final text. Both honor ctx cancellation.
type ChatAdapter interface {
	Complete(ctx context.Context, messages []*schema.Message) (*Completion, error)
	Stream(ctx context.Context, messages []*schema.Message) (*schema.StreamReader[*entity.StreamDelta], error)
	// TestConnection sends a minimal request to verify the model responds.
	TestConnection(ctx context.Context) error
}

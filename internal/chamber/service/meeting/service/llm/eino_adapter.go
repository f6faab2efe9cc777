package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/pkg/utils/safego"
)

const (
	completeTimeout = 60 * time.Second
	streamTimeout   = 120 * time.Second
	probeTimeout    = 10 * time.Second
)

// einoAdapter implements ChatAdapter on top of an Eino BaseChatModel.
type einoAdapter struct {
	cm     einoModel.BaseChatModel
	policy RetryPolicy
}

// NewEinoAdapter wraps an Eino chat model with deadlines and retry.
func NewEinoAdapter(cm einoModel.BaseChatModel, policy RetryPolicy) ChatAdapter {
	return &einoAdapter{cm: cm, policy: policy}
}

func (a *einoAdapter) Complete(ctx context.Context, messages []*schema.Message) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, completeTimeout)
	defer cancel()

	msg, err := Retry(ctx, a.policy, func(ctx context.Context) (*schema.Message, error) {
		return a.cm.Generate(ctx, messages)
	})
	if err != nil {
		return nil, err
	}

	return &Completion{
		Content:          strings.TrimSpace(msg.Content),
		ReasoningContent: msg.ReasoningContent,
	}, nil
}

// Stream opens a model stream and converts message chunks into deltas.
//
// Retries only apply to opening the stream. Once the first chunk has been
// handed to the caller the stream is committed; a mid-stream failure is
// surfaced as a stream error, never replayed.
func (a *einoAdapter) Stream(ctx context.Context, messages []*schema.Message) (*schema.StreamReader[*entity.StreamDelta], error) {
	ctx, cancel := context.WithTimeout(ctx, streamTimeout)

	src, err := Retry(ctx, a.policy, func(ctx context.Context) (*schema.StreamReader[*schema.Message], error) {
		return a.cm.Stream(ctx, messages)
	})
	if err != nil {
		cancel()
		return nil, err
	}

	sr, sw := schema.Pipe[*entity.StreamDelta](20)

	safego.Go(ctx, func() {
		defer cancel()
		defer sw.Close()
		defer src.Close()

		for {
			msg, err := src.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				sw.Send(nil, fmt.Errorf("stream recv error: %w", err))
				return
			}
			if msg == nil {
				continue
			}
			if msg.ReasoningContent != "" {
				if sw.Send(&entity.StreamDelta{Kind: entity.DeltaReasoning, Text: msg.ReasoningContent}, nil) {
					return
				}
			}
			if msg.Content != "" {
				if sw.Send(&entity.StreamDelta{Kind: entity.DeltaContent, Text: msg.Content}, nil) {
					return
				}
			}
		}
	})

	return sr, nil
}

func (a *einoAdapter) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, err := a.cm.Generate(ctx, []*schema.Message{
		schema.UserMessage("ping"),
	})
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

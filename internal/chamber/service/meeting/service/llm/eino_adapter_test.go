package llm

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

// fakeChatModel scripts Generate results and replays Stream chunks.
type fakeChatModel struct {
	mu            sync.Mutex
	generateCalls int
	generateErrs  []error
	reply         *schema.Message

	chunks    []*schema.Message
	streamErr error
}

func (m *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...einoModel.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateCalls++
	if len(m.generateErrs) > 0 {
		err := m.generateErrs[0]
		m.generateErrs = m.generateErrs[1:]
		return nil, err
	}
	return m.reply, nil
}

func (m *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	sr, sw := schema.Pipe[*schema.Message](8)
	go func() {
		defer sw.Close()
		for _, chunk := range m.chunks {
			sw.Send(chunk, nil)
		}
		if m.streamErr != nil {
			sw.Send(nil, m.streamErr)
		}
	}()
	return sr, nil
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestEinoAdapterComplete(t *testing.T) {
	cm := &fakeChatModel{reply: &schema.Message{
		Role:             schema.Assistant,
		Content:          "  hello there  ",
		ReasoningContent: "thinking aloud",
	}}
	adapter := NewEinoAdapter(cm, fastPolicy())

	completion, err := adapter.Complete(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hello there", completion.Content, "content is trimmed")
	assert.Equal(t, "thinking aloud", completion.ReasoningContent)
}

func TestEinoAdapterCompleteRetriesTransientFailures(t *testing.T) {
	cm := &fakeChatModel{
		generateErrs: []error{errors.New("503 service unavailable")},
		reply:        &schema.Message{Role: schema.Assistant, Content: "second try"},
	}
	adapter := NewEinoAdapter(cm, fastPolicy())

	completion, err := adapter.Complete(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "second try", completion.Content)
	assert.Equal(t, 2, cm.generateCalls)
}

func TestEinoAdapterCompleteDoesNotRetryAuthFailures(t *testing.T) {
	cm := &fakeChatModel{
		generateErrs: []error{errors.New("401 invalid api key")},
		reply:        &schema.Message{Role: schema.Assistant, Content: "never reached"},
	}
	adapter := NewEinoAdapter(cm, fastPolicy())

	_, err := adapter.Complete(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, 1, cm.generateCalls)
}

func TestEinoAdapterStreamConvertsChunks(t *testing.T) {
	cm := &fakeChatModel{chunks: []*schema.Message{
		{ReasoningContent: "mulling"},
		{Content: "Hel"},
		{Content: "lo"},
	}}
	adapter := NewEinoAdapter(cm, fastPolicy())

	sr, err := adapter.Stream(context.Background(), nil)
	require.NoError(t, err)
	defer sr.Close()

	var deltas []*entity.StreamDelta
	for {
		delta, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		deltas = append(deltas, delta)
	}

	require.Len(t, deltas, 3)
	assert.Equal(t, entity.DeltaReasoning, deltas[0].Kind)
	assert.Equal(t, "mulling", deltas[0].Text)
	assert.Equal(t, entity.DeltaContent, deltas[1].Kind)
	assert.Equal(t, "Hel", deltas[1].Text)
	assert.Equal(t, "lo", deltas[2].Text)
}

func TestEinoAdapterStreamSurfacesMidStreamError(t *testing.T) {
	cm := &fakeChatModel{
		chunks:    []*schema.Message{{Content: "partial"}},
		streamErr: errors.New("connection reset"),
	}
	adapter := NewEinoAdapter(cm, fastPolicy())

	sr, err := adapter.Stream(context.Background(), nil)
	require.NoError(t, err)
	defer sr.Close()

	first, err := sr.Recv()
	require.NoError(t, err)
	assert.Equal(t, "partial", first.Text)

	_, err = sr.Recv()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF, "mid-stream failures are not a clean end")
}

func TestEinoAdapterTestConnection(t *testing.T) {
	cm := &fakeChatModel{reply: &schema.Message{Role: schema.Assistant, Content: "pong"}}
	adapter := NewEinoAdapter(cm, fastPolicy())
	assert.NoError(t, adapter.TestConnection(context.Background()))

	failing := &fakeChatModel{generateErrs: []error{errors.New("no such host")}}
	adapter = NewEinoAdapter(failing, fastPolicy())
	assert.Error(t, adapter.TestConnection(context.Background()))
}

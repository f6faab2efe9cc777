package runtime

import (
	"context"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/broadcast"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/store/inmemory"
)

type scriptedReply struct {
	content   string
	reasoning string
	err       error
}

// scriptedAdapter replays a fixed sequence of replies; the last reply repeats
// once the script runs out.
type scriptedAdapter struct {
	mu      sync.Mutex
	replies []scriptedReply
	calls   int
}

func script(replies ...scriptedReply) *scriptedAdapter {
	return &scriptedAdapter{replies: replies}
}

func (a *scriptedAdapter) next() scriptedReply {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if len(a.replies) == 0 {
		return scriptedReply{content: "nothing further"}
	}
	r := a.replies[0]
	if len(a.replies) > 1 {
		a.replies = a.replies[1:]
	}
	return r
}

func (a *scriptedAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *scriptedAdapter) Complete(_ context.Context, _ []*schema.Message) (*llm.Completion, error) {
	r := a.next()
	if r.err != nil {
		return nil, r.err
	}
	return &llm.Completion{Content: r.content, ReasoningContent: r.reasoning}, nil
}

func (a *scriptedAdapter) Stream(_ context.Context, _ []*schema.Message) (*schema.StreamReader[*entity.StreamDelta], error) {
	r := a.next()
	if r.err != nil {
		return nil, r.err
	}
	sr, sw := schema.Pipe[*entity.StreamDelta](8)
	go func() {
		defer sw.Close()
		if r.reasoning != "" {
			sw.Send(&entity.StreamDelta{Kind: entity.DeltaReasoning, Text: r.reasoning}, nil)
		}
		half := len(r.content) / 2
		for _, chunk := range []string{r.content[:half], r.content[half:]} {
			if chunk != "" {
				sw.Send(&entity.StreamDelta{Kind: entity.DeltaContent, Text: chunk}, nil)
			}
		}
	}()
	return sr, nil
}

func (a *scriptedAdapter) TestConnection(context.Context) error { return nil }

type fakeFactory struct {
	adapter llm.ChatAdapter
	err     error
}

func (f *fakeFactory) Build(context.Context, *entity.ModelConfig) (llm.ChatAdapter, error) {
	return f.adapter, f.err
}

func runnerMeeting() *entity.Meeting {
	return &entity.Meeting{
		ID:     "m1",
		Topic:  "release planning",
		Status: entity.StatusActive,
		Participants: []*entity.Agent{
			{ID: "a1", Name: "Alice", Role: entity.Role{Name: "Engineer"}},
			{ID: "a2", Name: "Bob", Role: entity.Role{Name: "Product Manager"}},
		},
		Moderator: entity.Moderator{Type: entity.ModeratorUser},
		Config:    entity.DefaultMeetingConfig(),
	}
}

func newRunnerFixture(t *testing.T, m *entity.Meeting, adapter llm.ChatAdapter) (*TurnRunner, *inmemory.MeetingStore, *broadcast.Hub) {
	t.Helper()
	store := inmemory.NewMeetingStore()
	require.NoError(t, store.Save(context.Background(), m))
	hub := broadcast.NewHub()
	runner := NewTurnRunner(store, &fakeFactory{adapter: adapter}, NewContextBuilder(), hub)
	return runner, store, hub
}

func newTestAbort(t *testing.T) *AbortController {
	t.Helper()
	abort := NewAbortController(context.Background(), "test-turn", 0)
	t.Cleanup(abort.CleanUp)
	return abort
}

func drainEvents(ch <-chan *entity.MeetingEvent) []*entity.MeetingEvent {
	var out []*entity.MeetingEvent
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestExecuteTurnBlocking(t *testing.T) {
	m := runnerMeeting()
	runner, store, hub := newRunnerFixture(t, m, script(scriptedReply{content: "Thanks @Bob, good point."}))
	events, cancel := hub.Subscribe("m1")
	defer cancel()

	result, err := runner.ExecuteTurn(context.Background(), "m1", "a1", TurnBlocking, newTestAbort(t))
	require.NoError(t, err)

	assert.Equal(t, "Thanks @Bob, good point.", result.Message.Content)
	assert.Equal(t, []string{"a2"}, result.Message.MentionedIDs())
	require.Len(t, result.Message.Mentions, 1)
	assert.Equal(t, result.Message.ID, result.Message.Mentions[0].MessageID)
	require.NotNil(t, result.Meeting)
	assert.Equal(t, "m1", result.Meeting.ID)

	stored, err := store.Get(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, stored.Messages, 1)
	assert.Equal(t, "a1", stored.Messages[0].SpeakerID)
	assert.Equal(t, 0, stored.CurrentRound, "one of two participants spoke")

	got := drainEvents(events)
	require.Len(t, got, 1)
	assert.Equal(t, entity.EventNewMessage, got[0].Type)
	assert.Equal(t, result.Message.ID, got[0].MessageID)
}

func TestExecuteTurnMeetingNotActive(t *testing.T) {
	m := runnerMeeting()
	m.Status = entity.StatusPaused
	runner, store, _ := newRunnerFixture(t, m, script())

	_, err := runner.ExecuteTurn(context.Background(), "m1", "a1", TurnBlocking, newTestAbort(t))
	assert.ErrorIs(t, err, errno.ErrMeetingNotActive)

	stored, _ := store.Get(context.Background(), "m1")
	assert.Empty(t, stored.Messages)
}

func TestExecuteTurnNotParticipant(t *testing.T) {
	runner, _, _ := newRunnerFixture(t, runnerMeeting(), script())

	_, err := runner.ExecuteTurn(context.Background(), "m1", "ghost", TurnBlocking, newTestAbort(t))
	assert.ErrorIs(t, err, errno.ErrNotParticipant)
}

func TestExecuteTurnRoundLimitReached(t *testing.T) {
	m := runnerMeeting()
	maxRounds := 1
	m.Config.MaxRounds = &maxRounds
	m.CurrentRound = 1
	runner, _, _ := newRunnerFixture(t, m, script())

	_, err := runner.ExecuteTurn(context.Background(), "m1", "a1", TurnBlocking, newTestAbort(t))
	assert.ErrorIs(t, err, errno.ErrMaxRoundsReached)
}

func TestExecuteTurnEmptyResponse(t *testing.T) {
	m := runnerMeeting()
	runner, store, hub := newRunnerFixture(t, m, script(scriptedReply{content: "   \n"}))
	events, cancel := hub.Subscribe("m1")
	defer cancel()

	_, err := runner.ExecuteTurn(context.Background(), "m1", "a1", TurnBlocking, newTestAbort(t))
	assert.ErrorIs(t, err, errno.ErrEmptyResponse)

	stored, _ := store.Get(context.Background(), "m1")
	assert.Empty(t, stored.Messages)

	got := drainEvents(events)
	require.Len(t, got, 1)
	assert.Equal(t, entity.EventTurnFailed, got[0].Type)
	assert.Equal(t, "a1", got[0].SpeakerID)
	assert.NotEmpty(t, got[0].ErrorKind)
}

func TestExecuteTurnTruncatesAtRuneBoundary(t *testing.T) {
	m := runnerMeeting()
	limit := 5
	m.Config.MaxMessageLength = &limit
	runner, _, _ := newRunnerFixture(t, m, script(scriptedReply{content: "héllo wörld"}))

	result, err := runner.ExecuteTurn(context.Background(), "m1", "a1", TurnBlocking, newTestAbort(t))
	require.NoError(t, err)
	assert.Equal(t, "héllo"+truncationMarker, result.Message.Content)
}

func TestExecuteTurnAdvancesRoundAndAutoEnds(t *testing.T) {
	m := runnerMeeting()
	m.Participants = m.Participants[:1]
	maxRounds := 1
	m.Config.MaxRounds = &maxRounds
	runner, store, hub := newRunnerFixture(t, m, script(scriptedReply{content: "final word"}))
	events, cancel := hub.Subscribe("m1")
	defer cancel()

	_, err := runner.ExecuteTurn(context.Background(), "m1", "a1", TurnBlocking, newTestAbort(t))
	require.NoError(t, err)

	stored, _ := store.Get(context.Background(), "m1")
	assert.Equal(t, 1, stored.CurrentRound)
	assert.Equal(t, entity.StatusEnded, stored.Status)

	got := drainEvents(events)
	require.Len(t, got, 2)
	assert.Equal(t, entity.EventNewMessage, got[0].Type)
	assert.Equal(t, entity.EventStatusChange, got[1].Type)
	assert.Equal(t, entity.StatusEnded, got[1].Status)
}

func TestExecuteTurnStreaming(t *testing.T) {
	m := runnerMeeting()
	runner, store, hub := newRunnerFixture(t, m,
		script(scriptedReply{content: "streamed answer", reasoning: "thinking"}))
	events, cancel := hub.Subscribe("m1")
	defer cancel()

	result, err := runner.ExecuteTurn(context.Background(), "m1", "a1", TurnStreaming, newTestAbort(t))
	require.NoError(t, err)
	assert.Equal(t, "streamed answer", result.Message.Content)
	assert.Equal(t, "thinking", result.Message.ReasoningContent)

	stored, _ := store.Get(context.Background(), "m1")
	require.Len(t, stored.Messages, 1)

	var kinds []entity.DeltaKind
	var sawNewMessage bool
	for _, e := range drainEvents(events) {
		switch e.Type {
		case entity.EventStreamingDelta:
			kinds = append(kinds, e.Delta.Kind)
		case entity.EventNewMessage:
			sawNewMessage = true
		}
	}
	assert.Equal(t, []entity.DeltaKind{
		entity.DeltaReasoning, entity.DeltaContent, entity.DeltaContent, entity.DeltaComplete,
	}, kinds)
	assert.True(t, sawNewMessage, "persisted message announced after the stream")
}

func TestExecuteTurnStreamingAborted(t *testing.T) {
	m := runnerMeeting()
	runner, store, hub := newRunnerFixture(t, m, script(scriptedReply{content: "never lands"}))
	events, cancel := hub.Subscribe("m1")
	defer cancel()

	abort := newTestAbort(t)
	abort.Abort()

	_, err := runner.ExecuteTurn(context.Background(), "m1", "a1", TurnStreaming, abort)
	assert.ErrorIs(t, err, errno.ErrTurnAborted)

	stored, _ := store.Get(context.Background(), "m1")
	assert.Empty(t, stored.Messages, "aborted turns append nothing")

	for _, e := range drainEvents(events) {
		assert.NotEqual(t, entity.EventTurnFailed, e.Type, "abort is not a failure")
		assert.NotEqual(t, entity.EventNewMessage, e.Type)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		name    string
		content string
		limit   int
		want    string
	}{
		{name: "under limit untouched", content: "short", limit: 10, want: "short"},
		{name: "at limit untouched", content: "exact", limit: 5, want: "exact"},
		{name: "over limit cut with marker", content: "abcdefgh", limit: 3, want: "abc" + truncationMarker},
		{name: "zero limit disables", content: "anything", limit: 0, want: "anything"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, truncate(tc.content, tc.limit))
		})
	}
}

package broadcast

import (
	"sync"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/pkg/logger"
)

// subscriberBuffer is the per-subscriber event queue depth. A consumer that
// falls further behind than this is dropped: it receives a terminal lagged
// marker and its channel is closed.
const subscriberBuffer = 256

type subscriber struct {
	ch chan *entity.MeetingEvent
}

// Hub fans meeting events out to per-meeting subscriber sets.
//
// Publish never blocks on a slow consumer: a subscriber whose buffer is full
// is evicted with a terminal lagged marker, so every other subscriber and
// the publishing turn keep moving.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers a consumer for one meeting's events. The returned
// cancel func is idempotent and closes the channel; the hub may close it
// first when the subscriber falls too far behind.
func (h *Hub) Subscribe(meetingID string) (<-chan *entity.MeetingEvent, func()) {
	sub := &subscriber{ch: make(chan *entity.MeetingEvent, subscriberBuffer)}

	h.mu.Lock()
	set, ok := h.subs[meetingID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[meetingID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.removeLocked(meetingID, sub)
	}
	return sub.ch, cancel
}

// removeLocked detaches sub and closes its channel. Membership in the set is
// the single guard, so the channel is closed at most once even when the hub
// evicts a subscriber whose cancel later runs. Called with h.mu held.
func (h *Hub) removeLocked(meetingID string, sub *subscriber) {
	set, ok := h.subs[meetingID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, meetingID)
	}
	close(sub.ch)
}

// Publish delivers an event to every subscriber of the meeting.
func (h *Hub) Publish(event *entity.MeetingEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[event.MeetingID]
	if !ok {
		return
	}
	for sub := range set {
		h.deliver(event.MeetingID, sub, event)
	}
}

// SubscriberCount reports how many consumers are attached to a meeting.
func (h *Hub) SubscriberCount(meetingID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[meetingID])
}

// deliver enqueues one event. A subscriber whose buffer is full is dropped:
// the hub makes room for a terminal lagged marker, sends it, and closes the
// channel. Called with h.mu held; the hub is the only sender, so the drain
// and the send below cannot block.
func (h *Hub) deliver(meetingID string, sub *subscriber, event *entity.MeetingEvent) {
	select {
	case sub.ch <- event:
		return
	default:
	}

	logger.Warn("slow event subscriber for meeting %s, dropping subscriber", meetingID)
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- &entity.MeetingEvent{Type: entity.EventLagged, MeetingID: meetingID}
	h.removeLocked(meetingID, sub)
}

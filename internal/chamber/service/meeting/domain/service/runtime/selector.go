package runtime

import (
	"math/rand"
	"sync"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

// SpeakerSelector decides who speaks next.
//
// Mention targets on the reference message override rotation for exactly
// one hop. Run-round ordering follows the configured speaking order:
// sequential rotates from just after the most recent agent speaker, random
// draws a uniform permutation.
type SpeakerSelector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSpeakerSelector creates a selector seeded from the given source.
func NewSpeakerSelector(seed int64) *SpeakerSelector {
	return &SpeakerSelector{rnd: rand.New(rand.NewSource(seed))}
}

// MentionTargets returns the participants mentioned by the reference
// message, in mention order. Empty when there is nothing to chain.
func (s *SpeakerSelector) MentionTargets(meeting *entity.Meeting, ref *entity.Message) []*entity.Agent {
	if ref == nil {
		return nil
	}
	var targets []*entity.Agent
	for _, mn := range ref.Mentions {
		if p := meeting.FindParticipant(mn.MentionedParticipantID); p != nil {
			targets = append(targets, p)
		}
	}
	return targets
}

// RoundOrder returns the speaker sequence for one full round.
func (s *SpeakerSelector) RoundOrder(meeting *entity.Meeting) []*entity.Agent {
	n := len(meeting.Participants)
	if n == 0 {
		return nil
	}

	if meeting.Config.SpeakingOrder == entity.OrderRandom {
		order := make([]*entity.Agent, n)
		copy(order, meeting.Participants)
		s.mu.Lock()
		s.rnd.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		s.mu.Unlock()
		return order
	}

	start := (s.lastAgentSpeakerIndex(meeting) + 1) % n
	order := make([]*entity.Agent, 0, n)
	for i := 0; i < n; i++ {
		order = append(order, meeting.Participants[(start+i)%n])
	}
	return order
}

// lastAgentSpeakerIndex returns the participant index of the most recent
// agent message, or -1 so rotation starts at the first participant.
func (s *SpeakerSelector) lastAgentSpeakerIndex(meeting *entity.Meeting) int {
	for i := len(meeting.Messages) - 1; i >= 0; i-- {
		msg := meeting.Messages[i]
		if msg.SpeakerType != entity.SpeakerAgent {
			continue
		}
		for idx, p := range meeting.Participants {
			if p.ID == msg.SpeakerID {
				return idx
			}
		}
	}
	return -1
}

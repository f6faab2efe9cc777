package runtime

import (
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

// RoundComplete reports whether every participant has contributed at least
// one agent message within the current round. User messages are interleaved
// freely and never advance the round.
func RoundComplete(meeting *entity.Meeting) bool {
	spoken := make(map[string]bool, len(meeting.Participants))
	for _, msg := range meeting.Messages {
		if msg.RoundNumber == meeting.CurrentRound && msg.SpeakerType == entity.SpeakerAgent {
			spoken[msg.SpeakerID] = true
		}
	}
	for _, p := range meeting.Participants {
		if !spoken[p.ID] {
			return false
		}
	}
	return true
}

// AdvanceRound applies round bookkeeping after an agent message append.
// Returns true when hitting max_rounds auto-ended the meeting; the caller
// owns emitting the status_change event.
func AdvanceRound(meeting *entity.Meeting) bool {
	if !RoundComplete(meeting) {
		return false
	}
	meeting.CurrentRound++
	if meeting.Config.MaxRounds != nil && meeting.CurrentRound >= *meeting.Config.MaxRounds {
		meeting.Status = entity.StatusEnded
		return true
	}
	return false
}

// RoundLimitReached reports whether another agent turn would exceed
// max_rounds. Checked before executing a turn.
func RoundLimitReached(meeting *entity.Meeting) bool {
	return meeting.Config.MaxRounds != nil && meeting.CurrentRound >= *meeting.Config.MaxRounds
}

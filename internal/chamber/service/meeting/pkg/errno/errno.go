package errno

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrAgentNotFound      = errors.New("agent not found")
	ErrMeetingNotFound    = errors.New("meeting not found")
	ErrAgendaItemNotFound = errors.New("agenda item not found")
	ErrMinutesNotFound    = errors.New("minutes not generated")
	ErrMindMapNotFound    = errors.New("mind map not generated")
	ErrMeetingNotActive   = errors.New("meeting not active")
	ErrMeetingEnded       = errors.New("meeting already ended")
	ErrNotParticipant     = errors.New("agent is not a meeting participant")
	ErrMaxRoundsReached   = errors.New("max rounds reached")
	ErrAgentInUse         = errors.New("agent is a participant in a live meeting")
	ErrEmptyResponse      = errors.New("model returned an empty response")
	ErrTurnAborted        = errors.New("turn aborted")
	ErrChainDepthExceeded = errors.New("mention chain depth exceeded")
	ErrPersistence        = errors.New("persistence failed")
)

// Validationf wraps ErrValidation with a formatted detail so callers can
// both match the class and read the field-level reason.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

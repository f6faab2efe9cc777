package export

import (
	"fmt"
	"strings"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/pkg/utils/json"
)

// MeetingMarkdown renders a meeting as a human-readable transcript:
// topic heading, participants, one section per message, and the latest
// minutes as an appendix.
func MeetingMarkdown(meeting *entity.Meeting) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", meeting.Topic)

	b.WriteString("Participants:\n")
	for _, p := range meeting.Participants {
		fmt.Fprintf(&b, "- %s (%s)\n", p.Name, p.Role.Name)
	}
	b.WriteString("\n")

	for _, msg := range meeting.Messages {
		fmt.Fprintf(&b, "## %d · %s · %s\n\n%s\n\n",
			msg.RoundNumber,
			msg.SpeakerName,
			msg.Timestamp.Format("2006-01-02 15:04:05"),
			msg.Content,
		)
	}

	if meeting.CurrentMinutes != nil {
		fmt.Fprintf(&b, "---\n\n## Minutes (v%d)\n\n%s\n",
			meeting.CurrentMinutes.Version,
			meeting.CurrentMinutes.Content,
		)
	}
	return b.String()
}

// MeetingJSON is the direct serialization of the stored document; importing
// it back yields a structurally equal meeting.
func MeetingJSON(meeting *entity.Meeting) ([]byte, error) {
	return json.MarshalIndent(meeting, "", "  ")
}

package runtime

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

// mentionPattern matches @name or @"name with spaces".
var mentionPattern = regexp.MustCompile(`@(?:"([^"]+)"|(\w+))`)

// ParseMentions extracts participant mentions from a message body in
// document order.
//
// A captured name is matched against the participant's name first, then
// against the role name. Matching is case-sensitive exact. As a third form,
// @<participant name> terminated by whitespace is accepted, which covers
// names the word pattern cannot capture without quotes. Each participant
// appears at most once; the first occurrence wins.
func ParseMentions(content string, participants []*entity.Agent) []entity.Mention {
	type hit struct {
		pos   int
		agent *entity.Agent
	}
	var hits []hit

	for _, match := range mentionPattern.FindAllStringSubmatchIndex(content, -1) {
		name := submatch(content, match, 1)
		if name == "" {
			name = submatch(content, match, 2)
		}
		if agent := resolveMention(name, participants); agent != nil {
			hits = append(hits, hit{pos: match[0], agent: agent})
		}
	}

	// Space-terminated form for names the word pattern cannot express.
	for _, p := range participants {
		token := "@" + p.Name
		for offset := 0; ; {
			idx := strings.Index(content[offset:], token)
			if idx < 0 {
				break
			}
			pos := offset + idx
			offset = pos + len(token)
			if terminatedBySpace(content, pos+len(token)) {
				hits = append(hits, hit{pos: pos, agent: p})
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]bool, len(hits))
	var mentions []entity.Mention
	for _, h := range hits {
		if seen[h.agent.ID] {
			continue
		}
		seen[h.agent.ID] = true
		mentions = append(mentions, entity.Mention{
			MentionedParticipantID:   h.agent.ID,
			MentionedParticipantName: h.agent.Name,
		})
	}
	return mentions
}

func submatch(content string, match []int, group int) string {
	start, end := match[2*group], match[2*group+1]
	if start < 0 {
		return ""
	}
	return content[start:end]
}

func resolveMention(name string, participants []*entity.Agent) *entity.Agent {
	if name == "" {
		return nil
	}
	for _, p := range participants {
		if p.Name == name {
			return p
		}
	}
	for _, p := range participants {
		if p.Role.Name == name {
			return p
		}
	}
	return nil
}

func terminatedBySpace(content string, pos int) bool {
	if pos >= len(content) {
		return true
	}
	return unicode.IsSpace(rune(content[pos]))
}

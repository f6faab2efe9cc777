package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/llm"
	"github.com/kiosk404/roundtable/pkg/logger"
	"github.com/kiosk404/roundtable/pkg/utils/json"
)

// maxDiscussionDepth bounds how deep sub_points recursion nests below the
// agenda level.
const maxDiscussionDepth = 3

// MindMapGenerator asks a model for the discussion-point structure of a
// meeting and materializes it as a validated tree.
type MindMapGenerator struct {
	adapters llm.AdapterFactory
}

// NewMindMapGenerator creates a MindMapGenerator.
func NewMindMapGenerator(adapters llm.AdapterFactory) *MindMapGenerator {
	return &MindMapGenerator{adapters: adapters}
}

// discussionPoint is the shape the model is asked to return.
type discussionPoint struct {
	Content           string            `json:"content"`
	ParentTopic       string            `json:"parent_topic,omitempty"`
	MessageReferences []string          `json:"message_references,omitempty"`
	SubPoints         []discussionPoint `json:"sub_points,omitempty"`
}

type mindMapDoc struct {
	DiscussionPoints []discussionPoint `json:"discussion_points"`
}

// Generate builds a new mind map and stores it on the meeting, superseding
// any previous one. On malformed model output it falls back to the minimal
// root-plus-agenda tree. The caller owns persisting the meeting.
func (g *MindMapGenerator) Generate(ctx context.Context, meeting *entity.Meeting, generatorID string) (*entity.MindMap, error) {
	generator, err := resolveGenerator(meeting, generatorID)
	if err != nil {
		return nil, err
	}

	adapter, err := g.adapters.Build(ctx, &generator.ModelConfig)
	if err != nil {
		return nil, err
	}
	completion, err := adapter.Complete(ctx, []*schema.Message{
		schema.UserMessage(buildMindMapPrompt(meeting)),
	})
	if err != nil {
		return nil, err
	}

	mm := g.buildTree(meeting, completion.Content)
	mm.ID = uuid.New().String()
	mm.MeetingID = meeting.ID
	mm.CreatedAt = time.Now()
	mm.CreatedBy = generator.ID
	mm.Version = 1
	if meeting.MindMap != nil {
		mm.Version = meeting.MindMap.Version + 1
	}

	if err := mm.Validate(meeting); err != nil {
		logger.WarnX("meeting", "generated mind map invalid, falling back to agenda skeleton: %v", err)
		mm = skeletonTree(meeting)
		mm.ID = uuid.New().String()
		mm.MeetingID = meeting.ID
		mm.CreatedAt = time.Now()
		mm.CreatedBy = generator.ID
		mm.Version = 1
		if meeting.MindMap != nil {
			mm.Version = meeting.MindMap.Version + 1
		}
	}

	meeting.MindMap = mm
	meeting.UpdatedAt = mm.CreatedAt
	return mm, nil
}

// Store replaces the meeting's mind map with a caller-supplied document
// after validating the tree invariants. The caller owns persistence.
func (g *MindMapGenerator) Store(meeting *entity.Meeting, mm *entity.MindMap) error {
	if err := mm.Validate(meeting); err != nil {
		return err
	}
	if mm.ID == "" {
		mm.ID = uuid.New().String()
	}
	mm.MeetingID = meeting.ID
	mm.CreatedAt = time.Now()
	mm.Version = 1
	if meeting.MindMap != nil {
		mm.Version = meeting.MindMap.Version + 1
	}
	meeting.MindMap = mm
	meeting.UpdatedAt = mm.CreatedAt
	return nil
}

func buildMindMapPrompt(meeting *entity.Meeting) string {
	var b strings.Builder
	b.WriteString("Derive the discussion structure of the following meeting.\n\n")
	fmt.Fprintf(&b, "Meeting topic: %s\n\n", meeting.Topic)

	if len(meeting.Agenda) > 0 {
		b.WriteString("Agenda:\n")
		for _, item := range meeting.Agenda {
			status := "○"
			if item.Completed {
				status = "✓"
			}
			fmt.Fprintf(&b, "%s %s: %s\n", status, item.Title, item.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("Discussion:\n")
	for _, msg := range meeting.Messages {
		fmt.Fprintf(&b, "[%s] (message id: %s): %s\n", msg.SpeakerName, msg.ID, msg.Content)
	}

	b.WriteString(`
Respond with JSON of this shape, and nothing else:
{
  "discussion_points": [
    {
      "content": "key point, argument, or decision",
      "parent_topic": "the agenda title this belongs to, or omit for the meeting topic",
      "message_references": ["message id", "..."],
      "sub_points": [ { "content": "...", "message_references": [] } ]
    }
  ]
}`)
	return b.String()
}

// buildTree turns the model response into a tree: root carries the topic,
// one level-1 node per agenda item, discussion points attached to their
// agenda node by title (root when no title matches), sub-points nested to
// level 3. Message references the meeting cannot resolve are dropped rather
// than failing the whole map.
func (g *MindMapGenerator) buildTree(meeting *entity.Meeting, response string) *entity.MindMap {
	mm := skeletonTree(meeting)

	doc, ok := parseMindMapResponse(response)
	if !ok {
		logger.WarnX("meeting", "mind map response unparseable for meeting %s, keeping agenda skeleton", meeting.ID)
		return mm
	}

	agendaNodes := make(map[string]string, len(meeting.Agenda))
	for id, node := range mm.Nodes {
		if node.Level == 1 {
			agendaNodes[node.Content] = id
		}
	}

	var attach func(parentID string, level int, points []discussionPoint)
	attach = func(parentID string, level int, points []discussionPoint) {
		if level > maxDiscussionDepth {
			return
		}
		for _, point := range points {
			if strings.TrimSpace(point.Content) == "" {
				continue
			}
			node := &entity.MindMapNode{
				ID:       fmt.Sprintf("node_%d", len(mm.Nodes)),
				Content:  point.Content,
				Level:    level,
				ParentID: parentID,
			}
			for _, ref := range point.MessageReferences {
				if meeting.FindMessage(ref) != nil {
					node.MessageReferences = append(node.MessageReferences, ref)
				}
			}
			mm.Nodes[node.ID] = node
			parent := mm.Nodes[parentID]
			parent.ChildrenIDs = append(parent.ChildrenIDs, node.ID)
			attach(node.ID, level+1, point.SubPoints)
		}
	}

	for _, point := range doc.DiscussionPoints {
		parentID := mm.RootID
		level := 1
		if id, ok := agendaNodes[point.ParentTopic]; ok {
			parentID = id
			level = 2
		}
		attach(parentID, level, []discussionPoint{point})
	}
	return mm
}

// skeletonTree is the minimal valid map: the topic root plus one branch per
// agenda item.
func skeletonTree(meeting *entity.Meeting) *entity.MindMap {
	root := &entity.MindMapNode{
		ID:      "node_0",
		Content: meeting.Topic,
		Level:   0,
	}
	mm := &entity.MindMap{
		RootID: root.ID,
		Nodes:  map[string]*entity.MindMapNode{root.ID: root},
	}
	for _, item := range meeting.Agenda {
		node := &entity.MindMapNode{
			ID:       fmt.Sprintf("node_%d", len(mm.Nodes)),
			Content:  item.Title,
			Level:    1,
			ParentID: root.ID,
			Metadata: map[string]string{"agenda_id": item.ID},
		}
		mm.Nodes[node.ID] = node
		root.ChildrenIDs = append(root.ChildrenIDs, node.ID)
	}
	return mm
}

// parseMindMapResponse is the strict-then-lenient two-pass parse: strict
// JSON after fence stripping, then the outermost brace-delimited object.
func parseMindMapResponse(response string) (*mindMapDoc, bool) {
	var doc mindMapDoc
	cleaned := stripCodeFence(response)
	if err := json.Unmarshal([]byte(cleaned), &doc); err == nil && len(doc.DiscussionPoints) > 0 {
		return &doc, true
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &doc); err == nil && len(doc.DiscussionPoints) > 0 {
			return &doc, true
		}
	}
	return nil, false
}

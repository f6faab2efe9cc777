package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

func mindMapMeeting() *entity.Meeting {
	m := generatorMeeting()
	m.Agenda = []*entity.AgendaItem{
		{ID: "g1", Title: "Schema changes", Description: "what moves"},
		{ID: "g2", Title: "Rollout", Description: "how it ships"},
	}
	return m
}

func newMindMapFixture(content string) (*MindMapGenerator, *captureAdapter) {
	adapter := &captureAdapter{content: content}
	return NewMindMapGenerator(&captureFactory{adapter: adapter}), adapter
}

func findNodeByContent(mm *entity.MindMap, content string) *entity.MindMapNode {
	for _, node := range mm.Nodes {
		if node.Content == content {
			return node
		}
	}
	return nil
}

func TestGenerateMindMapAttachesPointsToAgenda(t *testing.T) {
	response := `{"discussion_points":[
		{"content":"Move users table first","parent_topic":"Schema changes","message_references":["msg1"],
		 "sub_points":[{"content":"Keep the old columns for a week"}]},
		{"content":"General note without a matching topic"}
	]}`
	g, _ := newMindMapFixture(response)
	m := mindMapMeeting()

	mm, err := g.Generate(context.Background(), m, "")
	require.NoError(t, err)
	require.NoError(t, mm.Validate(m))

	assert.Equal(t, 1, mm.Version)
	assert.Equal(t, "m1", mm.MeetingID)
	assert.Same(t, mm, m.MindMap)

	root := mm.Root()
	require.NotNil(t, root)
	assert.Equal(t, "database migration", root.Content)

	agenda := findNodeByContent(mm, "Schema changes")
	require.NotNil(t, agenda)
	assert.Equal(t, 1, agenda.Level)

	point := findNodeByContent(mm, "Move users table first")
	require.NotNil(t, point)
	assert.Equal(t, agenda.ID, point.ParentID)
	assert.Equal(t, 2, point.Level)
	assert.Equal(t, []string{"msg1"}, point.MessageReferences)

	sub := findNodeByContent(mm, "Keep the old columns for a week")
	require.NotNil(t, sub)
	assert.Equal(t, point.ID, sub.ParentID)
	assert.Equal(t, 3, sub.Level)

	// No agenda title match parks the point directly under the root.
	loose := findNodeByContent(mm, "General note without a matching topic")
	require.NotNil(t, loose)
	assert.Equal(t, mm.RootID, loose.ParentID)
	assert.Equal(t, 1, loose.Level)
}

func TestGenerateMindMapDropsUnresolvableMessageRefs(t *testing.T) {
	response := `{"discussion_points":[
		{"content":"A point","message_references":["msg1","no-such-message"]}
	]}`
	g, _ := newMindMapFixture(response)
	m := mindMapMeeting()

	mm, err := g.Generate(context.Background(), m, "")
	require.NoError(t, err)

	point := findNodeByContent(mm, "A point")
	require.NotNil(t, point)
	assert.Equal(t, []string{"msg1"}, point.MessageReferences)
}

func TestGenerateMindMapLenientParse(t *testing.T) {
	// Chatter around the JSON object is tolerated.
	response := "Here is the structure you asked for:\n" +
		`{"discussion_points":[{"content":"Buried point"}]}` +
		"\nLet me know if you need changes."
	g, _ := newMindMapFixture(response)
	m := mindMapMeeting()

	mm, err := g.Generate(context.Background(), m, "")
	require.NoError(t, err)
	assert.NotNil(t, findNodeByContent(mm, "Buried point"))
}

func TestGenerateMindMapFallsBackToSkeleton(t *testing.T) {
	g, _ := newMindMapFixture("I cannot produce JSON today, sorry.")
	m := mindMapMeeting()

	mm, err := g.Generate(context.Background(), m, "")
	require.NoError(t, err, "unparseable output degrades, it does not fail")
	require.NoError(t, mm.Validate(m))

	require.Len(t, mm.Nodes, 3, "root plus one branch per agenda item")
	assert.NotNil(t, findNodeByContent(mm, "Schema changes"))
	assert.NotNil(t, findNodeByContent(mm, "Rollout"))
}

func TestGenerateMindMapSubPointDepthIsBounded(t *testing.T) {
	response := `{"discussion_points":[
		{"content":"level two","parent_topic":"Schema changes",
		 "sub_points":[{"content":"level three",
		  "sub_points":[{"content":"too deep"}]}]}
	]}`
	g, _ := newMindMapFixture(response)
	m := mindMapMeeting()

	mm, err := g.Generate(context.Background(), m, "")
	require.NoError(t, err)

	assert.NotNil(t, findNodeByContent(mm, "level three"))
	assert.Nil(t, findNodeByContent(mm, "too deep"), "nesting stops below the depth cap")
}

func TestGenerateMindMapVersionsIncrement(t *testing.T) {
	g, adapter := newMindMapFixture(`{"discussion_points":[{"content":"first"}]}`)
	m := mindMapMeeting()

	first, err := g.Generate(context.Background(), m, "")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	adapter.content = `{"discussion_points":[{"content":"second"}]}`
	second, err := g.Generate(context.Background(), m, "")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version, "regeneration supersedes and bumps")
	assert.Same(t, second, m.MindMap)
}

func TestStoreMindMapValidatesAndVersions(t *testing.T) {
	g, _ := newMindMapFixture("")
	m := mindMapMeeting()

	valid := &entity.MindMap{
		RootID: "r",
		Nodes: map[string]*entity.MindMapNode{
			"r": {ID: "r", Content: "edited root", Level: 0, ChildrenIDs: []string{"c"}},
			"c": {ID: "c", Content: "edited child", Level: 1, ParentID: "r"},
		},
	}
	require.NoError(t, g.Store(m, valid))
	assert.Equal(t, 1, valid.Version)
	assert.Equal(t, "m1", valid.MeetingID)
	assert.NotEmpty(t, valid.ID)
	assert.Same(t, valid, m.MindMap)

	next := &entity.MindMap{
		RootID: "r",
		Nodes: map[string]*entity.MindMapNode{
			"r": {ID: "r", Content: "edited again", Level: 0},
		},
	}
	require.NoError(t, g.Store(m, next))
	assert.Equal(t, 2, next.Version)
}

func TestStoreMindMapRejectsInvalidTree(t *testing.T) {
	g, _ := newMindMapFixture("")
	m := mindMapMeeting()

	orphaned := &entity.MindMap{
		RootID: "r",
		Nodes: map[string]*entity.MindMapNode{
			"r": {ID: "r", Content: "root", Level: 0},
			// Not listed in any parent's children: unreachable from the root.
			"x": {ID: "x", Content: "orphan", Level: 1, ParentID: "r"},
		},
	}
	assert.Error(t, g.Store(m, orphaned))
	assert.Nil(t, m.MindMap, "invalid input leaves the meeting untouched")
}

func TestMindMapValidate(t *testing.T) {
	m := mindMapMeeting()

	cases := []struct {
		name    string
		mm      *entity.MindMap
		wantErr bool
	}{
		{
			name: "valid two level tree",
			mm: &entity.MindMap{
				RootID: "r",
				Nodes: map[string]*entity.MindMapNode{
					"r": {ID: "r", Level: 0, ChildrenIDs: []string{"c"}},
					"c": {ID: "c", Level: 1, ParentID: "r", MessageReferences: []string{"msg1"}},
				},
			},
		},
		{
			name:    "missing root",
			mm:      &entity.MindMap{RootID: "nope", Nodes: map[string]*entity.MindMapNode{}},
			wantErr: true,
		},
		{
			name: "root with a parent",
			mm: &entity.MindMap{
				RootID: "r",
				Nodes:  map[string]*entity.MindMapNode{"r": {ID: "r", Level: 0, ParentID: "x"}},
			},
			wantErr: true,
		},
		{
			name: "child parent disagreement",
			mm: &entity.MindMap{
				RootID: "r",
				Nodes: map[string]*entity.MindMapNode{
					"r": {ID: "r", Level: 0, ChildrenIDs: []string{"c"}},
					"c": {ID: "c", Level: 1, ParentID: "other"},
				},
			},
			wantErr: true,
		},
		{
			name: "unknown message reference",
			mm: &entity.MindMap{
				RootID: "r",
				Nodes: map[string]*entity.MindMapNode{
					"r": {ID: "r", Level: 0, ChildrenIDs: []string{"c"}},
					"c": {ID: "c", Level: 1, ParentID: "r", MessageReferences: []string{"bogus"}},
				},
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.mm.Validate(m)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

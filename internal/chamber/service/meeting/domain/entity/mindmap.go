package entity

import (
	"fmt"
	"time"
)

// MindMapNode is one node of the discussion tree.
type MindMapNode struct {
	// ID is unique within the mind map.
	ID string `json:"id"`

	// Content is the node label.
	Content string `json:"content"`

	// Level is the depth: 0 for the root, 1 for agenda branches, 2+ for
	// discussion points.
	Level int `json:"level"`

	// ParentID is empty only on the root.
	ParentID string `json:"parent_id,omitempty"`

	// ChildrenIDs lists direct children in insertion order.
	ChildrenIDs []string `json:"children_ids,omitempty"`

	// MessageReferences are IDs of meeting messages backing this node.
	MessageReferences []string `json:"message_references,omitempty"`

	// Metadata holds free-form annotations (e.g. source agenda title).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// MindMap is the latest tree of discussion points for a meeting.
// Replace-only: storing a new one supersedes the old and bumps Version.
type MindMap struct {
	// ID is the unique mind-map identifier.
	ID string `json:"id"`

	// MeetingID is the owning meeting.
	MeetingID string `json:"meeting_id"`

	// RootID names the level-0 node inside Nodes.
	RootID string `json:"root_id"`

	// Nodes maps node ID to node, root included.
	Nodes map[string]*MindMapNode `json:"nodes"`

	// Version is 1-origin and bumped on every regeneration.
	Version int `json:"version"`

	// CreatedAt is when this version was generated.
	CreatedAt time.Time `json:"created_at"`

	// CreatedBy is "user" or the generating participant's ID.
	CreatedBy string `json:"created_by"`
}

// Root returns the root node, or nil if the map is malformed.
func (m *MindMap) Root() *MindMapNode {
	return m.Nodes[m.RootID]
}

// Validate checks the tree invariants: a single level-0 root without a
// parent, parent/children agreement, full connectivity, and (when a
// meeting is supplied) that every message reference resolves.
func (m *MindMap) Validate(meeting *Meeting) error {
	root := m.Root()
	if root == nil {
		return fmt.Errorf("root node %q missing from nodes", m.RootID)
	}
	if root.Level != 0 || root.ParentID != "" {
		return fmt.Errorf("root node %q must be level 0 with no parent", m.RootID)
	}

	for id, node := range m.Nodes {
		if node.ID != id {
			return fmt.Errorf("node key %q does not match node id %q", id, node.ID)
		}
		if id != m.RootID {
			if node.Level == 0 || node.ParentID == "" {
				return fmt.Errorf("node %q: only the root may be level 0 without a parent", id)
			}
			parent, ok := m.Nodes[node.ParentID]
			if !ok {
				return fmt.Errorf("node %q references missing parent %q", id, node.ParentID)
			}
			if !containsString(parent.ChildrenIDs, id) {
				return fmt.Errorf("node %q is not listed in parent %q children", id, node.ParentID)
			}
		}
		for _, childID := range node.ChildrenIDs {
			child, ok := m.Nodes[childID]
			if !ok {
				return fmt.Errorf("node %q references missing child %q", id, childID)
			}
			if child.ParentID != id {
				return fmt.Errorf("child %q of node %q claims parent %q", childID, id, child.ParentID)
			}
		}
		if meeting != nil {
			for _, ref := range node.MessageReferences {
				if meeting.FindMessage(ref) == nil {
					return fmt.Errorf("node %q references unknown message %q", id, ref)
				}
			}
		}
	}

	// Reachability: walking down from the root must visit every node,
	// which together with the parent checks above rules out cycles.
	visited := map[string]bool{}
	var walk func(id string)
	walk = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, childID := range m.Nodes[id].ChildrenIDs {
			walk(childID)
		}
	}
	walk(m.RootID)
	if len(visited) != len(m.Nodes) {
		return fmt.Errorf("mind map is not a tree: %d of %d nodes reachable from root", len(visited), len(m.Nodes))
	}
	return nil
}

// Walk visits nodes depth-first from the root in child order.
func (m *MindMap) Walk(fn func(node *MindMapNode)) {
	var walk func(id string)
	walk = func(id string) {
		node, ok := m.Nodes[id]
		if !ok {
			return
		}
		fn(node)
		for _, childID := range node.ChildrenIDs {
			walk(childID)
		}
	}
	walk(m.RootID)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

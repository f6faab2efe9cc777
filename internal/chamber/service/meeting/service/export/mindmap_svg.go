package export

import (
	"bytes"

	svg "github.com/ajstarks/svgo"
	"github.com/mitchellh/go-wordwrap"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

// levelFills shade nodes by depth, root darkest.
var levelFills = []string{"#3b5bdb", "#4c6ef5", "#748ffc", "#bac8ff"}

// MindMapSVG renders the tree as a left-to-right layered SVG. Every node
// and edge of the stored tree appears exactly once.
func MindMapSVG(mm *entity.MindMap) []byte {
	placed, width, height := layoutTree(mm)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height)

	positions := make(map[string]placedNode, len(placed))
	for _, p := range placed {
		positions[p.node.ID] = p
	}

	// Edges first so boxes draw over the line ends.
	for _, p := range placed {
		for _, childID := range p.node.ChildrenIDs {
			child, ok := positions[childID]
			if !ok {
				continue
			}
			canvas.Line(
				p.x+nodeWidth, p.y+nodeHeight/2,
				child.x, child.y+nodeHeight/2,
				"stroke:#868e96;stroke-width:1.5",
			)
		}
	}

	for _, p := range placed {
		canvas.Roundrect(p.x, p.y, nodeWidth, nodeHeight, 6, 6,
			"fill:"+levelFill(p.node.Level)+";stroke:#343a40")
		writeSVGLabel(canvas, p)
	}

	canvas.End()
	return buf.Bytes()
}

func writeSVGLabel(canvas *svg.SVG, p placedNode) {
	lines := splitLabel(p.node, 2)
	lineHeight := 16
	startY := p.y + nodeHeight/2 - (len(lines)-1)*lineHeight/2 + 5
	for i, line := range lines {
		canvas.Text(p.x+nodeWidth/2, startY+i*lineHeight, line,
			"text-anchor:middle;font-size:12px;fill:#ffffff;font-family:sans-serif")
	}
}

// splitLabel word-wraps the node label to at most maxLines box lines.
func splitLabel(node *entity.MindMapNode, maxLines int) []string {
	wrapped := wordwrap.WrapString(nodeLabel(node.Content), 24)
	lines := bytes.Split([]byte(wrapped), []byte("\n"))
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = append(lines[maxLines-1], []byte("…")...)
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, string(l))
	}
	return out
}

func levelFill(level int) string {
	if level >= len(levelFills) {
		level = len(levelFills) - 1
	}
	return levelFills[level]
}

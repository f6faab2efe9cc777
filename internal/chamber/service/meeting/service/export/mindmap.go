package export

import (
	"fmt"
	"strings"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/pkg/utils/json"
)

// MindMapFormat selects a mind-map export rendering.
type MindMapFormat string

const (
	MindMapJSONFormat     MindMapFormat = "json"
	MindMapMarkdownFormat MindMapFormat = "markdown"
	MindMapSVGFormat      MindMapFormat = "svg"
	MindMapPNGFormat      MindMapFormat = "png"
)

// maxShownRefs caps how many message references a rendered node lists.
const maxShownRefs = 3

// RenderMindMap renders the map in the requested format and returns the
// bytes plus their content type.
func RenderMindMap(mm *entity.MindMap, format MindMapFormat) ([]byte, string, error) {
	switch format {
	case MindMapJSONFormat:
		data, err := json.MarshalIndent(mm, "", "  ")
		return data, "application/json", err
	case MindMapMarkdownFormat:
		return []byte(MindMapMarkdown(mm)), "text/markdown", nil
	case MindMapSVGFormat:
		return MindMapSVG(mm), "image/svg+xml", nil
	case MindMapPNGFormat:
		data, err := MindMapPNG(mm)
		return data, "image/png", err
	default:
		return nil, "", errno.Validationf("unknown mind map export format %q", format)
	}
}

// MindMapMarkdown renders the root as an H1 and every descendant as a
// nested bullet by level, message references trailing as italic markers.
func MindMapMarkdown(mm *entity.MindMap) string {
	var b strings.Builder

	root := mm.Root()
	if root == nil {
		return ""
	}
	fmt.Fprintf(&b, "# %s\n\n", root.Content)

	var walk func(id string)
	walk = func(id string) {
		node, ok := mm.Nodes[id]
		if !ok {
			return
		}
		if node.Level > 0 {
			indent := strings.Repeat("  ", node.Level-1)
			fmt.Fprintf(&b, "%s- %s", indent, node.Content)
			if len(node.MessageReferences) > 0 {
				refs := node.MessageReferences
				if len(refs) > maxShownRefs {
					refs = refs[:maxShownRefs]
				}
				fmt.Fprintf(&b, " *(%s)*", strings.Join(refs, ", "))
			}
			b.WriteString("\n")
		}
		for _, childID := range node.ChildrenIDs {
			walk(childID)
		}
	}
	walk(mm.RootID)
	return b.String()
}

// placedNode is one node with its layout position in pixels.
type placedNode struct {
	node *entity.MindMapNode
	x, y int
}

// Rendering geometry shared by the SVG and PNG backends.
const (
	nodeWidth   = 180
	nodeHeight  = 48
	columnGap   = 60
	rowGap      = 24
	layoutPad   = 30
	maxLabelLen = 48
)

// layoutTree assigns left-to-right layered positions: x by level, y by
// leaf order with internal nodes centered over their children. Returns the
// placements and the canvas size.
func layoutTree(mm *entity.MindMap) ([]placedNode, int, int) {
	var placed []placedNode
	nextRow := 0
	maxLevel := 0

	var place func(id string) int
	place = func(id string) int {
		node, ok := mm.Nodes[id]
		if !ok {
			return 0
		}
		if node.Level > maxLevel {
			maxLevel = node.Level
		}

		var y int
		if len(node.ChildrenIDs) == 0 {
			y = layoutPad + nextRow*(nodeHeight+rowGap)
			nextRow++
		} else {
			first, last := 0, 0
			for i, childID := range node.ChildrenIDs {
				cy := place(childID)
				if i == 0 {
					first = cy
				}
				last = cy
			}
			y = (first + last) / 2
		}

		placed = append(placed, placedNode{
			node: node,
			x:    layoutPad + node.Level*(nodeWidth+columnGap),
			y:    y,
		})
		return y
	}
	place(mm.RootID)

	width := 2*layoutPad + (maxLevel+1)*nodeWidth + maxLevel*columnGap
	rows := nextRow
	if rows == 0 {
		rows = 1
	}
	height := 2*layoutPad + rows*nodeHeight + (rows-1)*rowGap
	return placed, width, height
}

// nodeLabel truncates content for box rendering.
func nodeLabel(content string) string {
	runes := []rune(content)
	if len(runes) <= maxLabelLen {
		return content
	}
	return string(runes[:maxLabelLen-1]) + "…"
}

package export

import (
	"bytes"

	"github.com/fogleman/gg"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

// levelColors are the RGB node fills per depth, matching the SVG palette.
var levelColors = [][3]float64{
	{0.23, 0.36, 0.86},
	{0.30, 0.43, 0.96},
	{0.45, 0.56, 0.99},
	{0.73, 0.78, 1.00},
}

// MindMapPNG renders the tree as a raster image using the same layered
// layout as the SVG backend.
func MindMapPNG(mm *entity.MindMap) ([]byte, error) {
	placed, width, height := layoutTree(mm)

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	positions := make(map[string]placedNode, len(placed))
	for _, p := range placed {
		positions[p.node.ID] = p
	}

	dc.SetRGB(0.53, 0.56, 0.59)
	dc.SetLineWidth(1.5)
	for _, p := range placed {
		for _, childID := range p.node.ChildrenIDs {
			child, ok := positions[childID]
			if !ok {
				continue
			}
			dc.DrawLine(
				float64(p.x+nodeWidth), float64(p.y+nodeHeight/2),
				float64(child.x), float64(child.y+nodeHeight/2),
			)
			dc.Stroke()
		}
	}

	for _, p := range placed {
		fill := levelColor(p.node.Level)
		dc.SetRGB(fill[0], fill[1], fill[2])
		dc.DrawRoundedRectangle(float64(p.x), float64(p.y), nodeWidth, nodeHeight, 6)
		dc.Fill()

		dc.SetRGB(1, 1, 1)
		drawPNGLabel(dc, p)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawPNGLabel(dc *gg.Context, p placedNode) {
	lines := splitLabel(p.node, 2)
	lineHeight := 16.0
	cx := float64(p.x) + nodeWidth/2
	startY := float64(p.y) + nodeHeight/2 - float64(len(lines)-1)*lineHeight/2
	for i, line := range lines {
		dc.DrawStringAnchored(line, cx, startY+float64(i)*lineHeight, 0.5, 0.5)
	}
}

func levelColor(level int) [3]float64 {
	if level >= len(levelColors) {
		level = len(levelColors) - 1
	}
	return levelColors[level]
}

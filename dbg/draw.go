package dbg

import (
	"math"
	"os"

	"github.com/fogleman/gg"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"golang.org/x/image/colornames"

	"github.com/nyquist-labs/paraflip/geom"
	"github.com/nyquist-labs/paraflip/mesh"
)

const drawPadding = 20.0

// Draw renders m's live triangles to a PNG at path and, when the terminal
// supports it, cats the image inline the way the reference debug drawer
// does. Constrained edges are stroked in a different color than ordinary
// mesh edges so a forced constraint is easy to pick out visually.
func Draw(m *mesh.Mesh, pts []geom.Point, path string, scale float64) error {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	width := int(scale*(maxX-minX)) + int(drawPadding)*2
	height := int(scale*(maxY-minY)) + int(drawPadding)*2
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	c := gg.NewContext(width, height)
	c.SetColor(colornames.White)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()

	c.Translate(0, float64(height))
	c.Scale(1, -1)
	c.Translate(drawPadding, drawPadding)
	c.Scale(scale, scale)
	c.Translate(-minX, -minY)

	c.SetLineWidth(1.0 / scale)
	for ti, alive := range m.Alive {
		if !alive {
			continue
		}
		v := m.Tris[ti].Verts
		c.MoveTo(pts[v[0]].X, pts[v[0]].Y)
		c.LineTo(pts[v[1]].X, pts[v[1]].Y)
		c.LineTo(pts[v[2]].X, pts[v[2]].Y)
		c.ClosePath()
	}
	c.SetColor(colornames.Lightsteelblue)
	c.FillPreserve()
	c.SetColor(colornames.Steelblue)
	c.Stroke()

	m.Edges(func(t0 int, e0 int8, constrained bool) bool {
		if !constrained {
			return true
		}
		a, b := m.EdgeVerts(t0, e0)
		c.MoveTo(pts[a].X, pts[a].Y)
		c.LineTo(pts[b].X, pts[b].Y)
		c.SetColor(colornames.Crimson)
		c.SetLineWidth(2.0 / scale)
		c.Stroke()
		return true
	})

	for _, p := range pts {
		c.DrawPoint(p.X, p.Y, 3.0/scale)
		c.SetColor(colornames.Black)
		c.Fill()
	}

	if err := c.SavePNG(path); err != nil {
		return err
	}

	imgcat.CatFile(path, os.Stdout)
	return nil
}

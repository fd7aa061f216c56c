package gen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"

	"github.com/nyquist-labs/paraflip/geom"
)

// WritePoints writes one point per line as whitespace-separated "x y z",
// matching the format ReadPoints expects back.
func WritePoints(w io.Writer, pts []geom.Point) error {
	bw := bufio.NewWriter(w)
	for _, p := range pts {
		if _, err := fmt.Fprintf(bw, "%.12g %.12g %.12g\n", p.X, p.Y, p.Z); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadPoints parses whitespace-separated "x y [z]" lines, one point per
// line. A missing z defaults to 0.
func ReadPoints(r io.Reader) ([]geom.Point, error) {
	var pts []geom.Point
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("gen: malformed point line %q", line)
		}
		var p geom.Point
		var err error
		if p.X, err = strconv.ParseFloat(fields[0], 64); err != nil {
			return nil, fmt.Errorf("gen: parsing x in %q: %w", line, err)
		}
		if p.Y, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return nil, fmt.Errorf("gen: parsing y in %q: %w", line, err)
		}
		if len(fields) >= 3 {
			if p.Z, err = strconv.ParseFloat(fields[2], 64); err != nil {
				return nil, fmt.Errorf("gen: parsing z in %q: %w", line, err)
			}
		}
		pts = append(pts, p)
	}
	return pts, scanner.Err()
}

// WriteConstraints writes one "u v" pair per line.
func WriteConstraints(w io.Writer, edges []geom.Edge) error {
	bw := bufio.NewWriter(w)
	for _, e := range edges {
		if _, err := fmt.Fprintf(bw, "%d %d\n", e.U, e.V); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadConstraints parses "u v" pairs, one per line.
func ReadConstraints(r io.Reader) ([]geom.Edge, error) {
	var edges []geom.Edge
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("gen: malformed constraint line %q", line)
		}
		u, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("gen: parsing u in %q: %w", line, err)
		}
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("gen: parsing v in %q: %w", line, err)
		}
		edges = append(edges, geom.Edge{U: u, V: v})
	}
	return edges, scanner.Err()
}

// LoadSVGPolygon reads an SVG document's first <polygon> element and
// returns its vertices as a point set, for test fixtures that are easier
// to eyeball as a drawing than as a column of numbers.
func LoadSVGPolygon(r io.Reader) ([]geom.Point, error) {
	element, err := svgparser.Parse(r, false)
	if err != nil {
		return nil, fmt.Errorf("gen: parsing svg: %w", err)
	}

	poly := findPolygon(element)
	if poly == nil {
		return nil, fmt.Errorf("gen: no <polygon> element found")
	}

	raw, ok := poly.Attributes["points"]
	if !ok {
		return nil, fmt.Errorf("gen: <polygon> has no points attribute")
	}
	return parseSVGPoints(raw)
}

func findPolygon(el *svgparser.Element) *svgparser.Element {
	if el == nil {
		return nil
	}
	if el.Name == "polygon" {
		return el
	}
	for _, child := range el.Children {
		if found := findPolygon(child); found != nil {
			return found
		}
	}
	return nil
}

func parseSVGPoints(raw string) ([]geom.Point, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("gen: odd number of coordinates in polygon points %q", raw)
	}
	pts := make([]geom.Point, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("gen: parsing polygon x: %w", err)
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("gen: parsing polygon y: %w", err)
		}
		pts = append(pts, geom.Point{X: x, Y: y})
	}
	return pts, nil
}

// LoadSVGPolygonFile is a convenience wrapper around LoadSVGPolygon for a
// path on disk.
func LoadSVGPolygonFile(path string) ([]geom.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSVGPolygon(f)
}

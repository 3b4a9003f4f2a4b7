package main

import "slices"

// Rect is a screen-space bounding rectangle measured by the browser.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) right() float64 { return r.Left + r.Width }
func (r Rect) midY() float64  { return r.Top + r.Height/2 }

// Point is a viewport scroll offset.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout is the element geometry of a matching view. A nil rect marks an
// element that is not mounted yet.
type Layout struct {
	Left   []*Rect `json:"left"`
	Right  []*Rect `json:"right"`
	Scroll Point   `json:"scroll"`
}

// ConnectorLine is a line drawn between two connected labels.
type ConnectorLine struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// ComputeLines derives one line per connection, in ascending left index
// order. Each line joins the right-edge midpoint of the left label to the
// left-edge midpoint of the right label, offset by the scroll position.
func ComputeLines(conns []Connection, layout Layout) []ConnectorLine {
	sorted := slices.Clone(conns)
	slices.SortStableFunc(sorted, func(a, b Connection) int { return a.LeftIdx - b.LeftIdx })

	lines := make([]ConnectorLine, 0, len(sorted))
	for _, c := range sorted {
		l := rectAt(layout.Left, c.LeftIdx)
		r := rectAt(layout.Right, c.RightIdx)
		if l == nil || r == nil {
			lines = append(lines, ConnectorLine{})
			continue
		}
		lines = append(lines, ConnectorLine{
			X1: l.right() + layout.Scroll.X,
			Y1: l.midY() + layout.Scroll.Y,
			X2: r.Left + layout.Scroll.X,
			Y2: r.midY() + layout.Scroll.Y,
		})
	}
	return lines
}

func rectAt(rects []*Rect, i int) *Rect {
	if i < 0 || i >= len(rects) {
		return nil
	}
	return rects[i]
}

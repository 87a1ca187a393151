package canvas

// Point is a canvas coordinate.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Geometry holds the fixed layout constants of a canvas.
type Geometry struct {
	// SidebarWidth is the strip on the right edge reserved for the element list.
	SidebarWidth int `yaml:"sidebar_width"`
	// Padding is added on every side of a label's text extents.
	Padding int `yaml:"padding"`
	// SplitOffset is the horizontal distance of each split half from the source.
	SplitOffset int `yaml:"split_offset"`
	// DuplicateOffset is added to the source position of a duplicate.
	DuplicateOffset Point `yaml:"duplicate_offset"`
}

// DefaultGeometry is the pixel layout of the browser canvas.
func DefaultGeometry() Geometry {
	return Geometry{
		SidebarWidth:    350,
		Padding:         10,
		SplitOffset:     50,
		DuplicateOffset: Point{X: 10, Y: -10},
	}
}

// TerminalGeometry is the layout used when the canvas is a terminal grid.
func TerminalGeometry() Geometry {
	return Geometry{
		SidebarWidth:    32,
		Padding:         0,
		SplitOffset:     6,
		DuplicateOffset: Point{X: 2, Y: 1},
	}
}

// SplitPositions returns where the two halves of a split land, left then right.
func (g Geometry) SplitPositions(x, y int) (left, right Point) {
	return Point{X: x - g.SplitOffset, Y: y}, Point{X: x + g.SplitOffset, Y: y}
}

// DuplicatePosition returns where a duplicate of a placement at (x, y) lands.
func (g Geometry) DuplicatePosition(x, y int) Point {
	return Point{X: x + g.DuplicateOffset.X, Y: y + g.DuplicateOffset.Y}
}

// Box is an axis-aligned bounding box.
type Box struct {
	X, Y, W, H int
}

// Contains reports whether (px, py) lies inside or on the edge of the box.
func (b Box) Contains(px, py int) bool {
	return px >= b.X && px <= b.X+b.W &&
		py >= b.Y && py <= b.Y+b.H
}

// Overlaps reports whether two boxes intersect on both axes.
func (b Box) Overlaps(o Box) bool {
	return !(b.X > o.X+o.W || b.X+b.W < o.X ||
		b.Y > o.Y+o.H || b.Y+b.H < o.Y)
}

// LabelBox returns the padded box of label centered at (x, y).
func LabelBox(m Metrics, label string, x, y, pad int) Box {
	ext := m.Measure(label)
	return Box{
		X: x - ext.Width/2 - pad,
		Y: y - ext.Ascent/2 - pad,
		W: ext.Width + 2*pad,
		H: ext.Ascent + ext.Descent + 2*pad,
	}
}

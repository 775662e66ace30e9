package model

// BoundingBox is a rectangular region in page coordinates. X and Y locate the
// lower-left corner; Width and Height extend right and up.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterX returns the horizontal center of the box.
func (b BoundingBox) CenterX() float64 {
	return b.X + b.Width/2
}

// CenterY returns the vertical center of the box.
func (b BoundingBox) CenterY() float64 {
	return b.Y + b.Height/2
}

// Right returns the X coordinate of the right edge.
func (b BoundingBox) Right() float64 {
	return b.X + b.Width
}

// Top returns the Y coordinate of the top edge.
func (b BoundingBox) Top() float64 {
	return b.Y + b.Height
}

// Overlaps reports whether the two boxes intersect.
func (b BoundingBox) Overlaps(other BoundingBox) bool {
	return b.X < other.Right() && other.X < b.Right() &&
		b.Y < other.Top() && other.Y < b.Top()
}

// Union returns the smallest box containing both b and other.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	minX := b.X
	if other.X < minX {
		minX = other.X
	}
	minY := b.Y
	if other.Y < minY {
		minY = other.Y
	}
	maxX := b.Right()
	if other.Right() > maxX {
		maxX = other.Right()
	}
	maxY := b.Top()
	if other.Top() > maxY {
		maxY = other.Top()
	}
	return BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

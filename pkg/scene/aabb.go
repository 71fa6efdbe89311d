package scene

// AABB is an axis-aligned bounding box used for pointer hit testing.
type AABB struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Contains reports whether the point (x, y) lies inside the box, borders
// included.
func (b AABB) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Intersects reports whether the two boxes overlap.
func (b AABB) Intersects(other AABB) bool {
	return !(b.MaxX < other.MinX ||
		b.MinX > other.MaxX ||
		b.MaxY < other.MinY ||
		b.MinY > other.MaxY)
}

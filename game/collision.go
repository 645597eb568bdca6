package game

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// RectAt builds a w×h rectangle whose top-left corner is p.
func RectAt(p Vec2, w, h float64) Rect {
	return Rect{X: p.X, Y: p.Y, W: w, H: h}
}

// Overlaps reports strict overlap; touching edges do not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W &&
		r.X+r.W > o.X &&
		r.Y < o.Y+o.H &&
		r.Y+r.H > o.Y
}

// OverlapsPadded reports whether r grown by pad on every side overlaps o.
func (r Rect) OverlapsPadded(o Rect, pad float64) bool {
	return r.X-pad < o.X+o.W &&
		r.X+r.W+pad > o.X &&
		r.Y-pad < o.Y+o.H &&
		r.Y+r.H+pad > o.Y
}

// DistSqToPoint returns the squared distance from p to the closest point of r.
func (r Rect) DistSqToPoint(p Vec2) float64 {
	cx := Clamp(p.X, r.X, r.X+r.W)
	cy := Clamp(p.Y, r.Y, r.Y+r.H)
	dx := p.X - cx
	dy := p.Y - cy
	return dx*dx + dy*dy
}

// Center returns the midpoint of r.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.W/2, r.Y + r.H/2}
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

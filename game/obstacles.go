package game

import "math/rand"

// Obstacle is a static axis-aligned wall block. Never mutated once placed.
type Obstacle struct {
	Pos    Vec2
	Width  float64
	Height float64
}

// Rect returns the obstacle's bounding rectangle.
func (o Obstacle) Rect() Rect {
	return RectAt(o.Pos, o.Width, o.Height)
}

// Collides reports whether a w×h box at p intersects the obstacle.
func (o Obstacle) Collides(p Vec2, w, h float64) bool {
	return o.Rect().Overlaps(RectAt(p, w, h))
}

// ObstacleGenerator places obstacles that keep the arena fully connected
// and leave every spawn point's safe zone clear.
type ObstacleGenerator struct {
	rng    *rand.Rand
	width  float64
	height float64
	spawns []Vec2
}

// NewObstacleGenerator creates a generator for a width×height world.
func NewObstacleGenerator(rng *rand.Rand, width, height float64, spawns []Vec2) *ObstacleGenerator {
	return &ObstacleGenerator{
		rng:    rng,
		width:  width,
		height: height,
		spawns: spawns,
	}
}

// Generate samples candidates until count obstacles are accepted or
// maxAttempts candidates have been tried. A short result is not an error:
// every returned set is traversable.
func (g *ObstacleGenerator) Generate(count int, minCenterGap float64, maxAttempts int) []Obstacle {
	obstacles := make([]Obstacle, 0, count)

	for attempts := 0; len(obstacles) < count && attempts < maxAttempts; attempts++ {
		candidate := g.sample()
		if !g.acceptable(candidate, obstacles, minCenterGap) {
			continue
		}

		obstacles = append(obstacles, candidate)
		if !NewNavGrid(g.width, g.height, NavCellSize, obstacles).Connected() {
			obstacles = obstacles[:len(obstacles)-1]
		}
	}
	return obstacles
}

func (g *ObstacleGenerator) sample() Obstacle {
	w := g.uniform(ObstacleMinSize, ObstacleMaxSize)
	h := g.uniform(ObstacleMinSize, ObstacleMaxSize)
	return Obstacle{
		Pos: Vec2{
			X: g.uniform(ObstacleMargin, g.width-w),
			Y: g.uniform(ObstacleMargin, g.height-h),
		},
		Width:  w,
		Height: h,
	}
}

func (g *ObstacleGenerator) uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + g.rng.Float64()*(max-min)
}

func (g *ObstacleGenerator) acceptable(c Obstacle, placed []Obstacle, minCenterGap float64) bool {
	rect := c.Rect()
	center := rect.Center()
	for _, o := range placed {
		other := o.Rect()
		if rect.OverlapsPadded(other, ObstaclePadding) {
			return false
		}
		oc := other.Center()
		if abs(center.X-oc.X) < minCenterGap && abs(center.Y-oc.Y) < minCenterGap {
			return false
		}
	}
	return !g.inSafeZone(rect)
}

func (g *ObstacleGenerator) inSafeZone(r Rect) bool {
	const radiusSq = SpawnSafeZoneRadius * SpawnSafeZoneRadius
	for _, sp := range g.spawns {
		if r.DistSqToPoint(sp) < radiusSq {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package game

import (
	"math"
	"math/rand"
)

// SpawnPoints returns the fixed spawn locations for a width×height world:
// four inset corners followed by the four inset edge midpoints.
func SpawnPoints(width, height float64) []Vec2 {
	return []Vec2{
		{SpawnInset, SpawnInset},
		{width - SpawnInset, SpawnInset},
		{SpawnInset, height - SpawnInset},
		{width - SpawnInset, height - SpawnInset},
		{width / 2, SpawnInset},
		{width / 2, height - SpawnInset},
		{SpawnInset, height / 2},
		{width - SpawnInset, height / 2},
	}
}

// BestSpawn picks the point whose nearest living player is farthest away.
// The first maximal point wins ties; with no players that is points[0].
func BestSpawn(points []Vec2, living []Vec2) Vec2 {
	if len(points) == 0 {
		return Vec2{}
	}
	best := points[0]
	bestMin := -1.0
	for _, sp := range points {
		minDist := math.MaxFloat64
		for _, p := range living {
			if d := sp.Dist(p); d < minDist {
				minDist = d
			}
		}
		if minDist > bestMin {
			bestMin = minDist
			best = sp
		}
	}
	return best
}

// SelectSpawn returns BestSpawn plus independent jitter in
// [-SpawnJitter, SpawnJitter) on each axis.
func SelectSpawn(rng *rand.Rand, points []Vec2, living []Vec2) Vec2 {
	sp := BestSpawn(points, living)
	return Vec2{
		X: sp.X + (rng.Float64()*2-1)*SpawnJitter,
		Y: sp.Y + (rng.Float64()*2-1)*SpawnJitter,
	}
}

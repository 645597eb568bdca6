package game

import "time"

// World constants shared with clients.
const (
	WorldWidth       = 800.0
	WorldHeight      = 600.0
	PlayerSize       = 30.0
	ProjectileSize   = 10.0 // drawn size
	ProjectileHitbox = 5.0  // collision box edge
	PlayerSpeed      = 5.0  // units per tick per pressed axis
	ProjectileSpeed  = 10.0 // units per tick
	PlayerMaxHealth  = 100
	ProjectileDamage = 10
	TickRate         = 60
	TickDuration     = time.Second / TickRate
	TotalObstacles   = 30
)

// Obstacle generation tuning.
const (
	ObstacleMinSize      = 30.0
	ObstacleMaxSize      = 80.0
	ObstacleMargin       = 50.0
	ObstaclePadding      = 20.0
	ObstacleMinCenterGap = 120.0
	ObstacleMaxAttempts  = 100000
	SpawnSafeZoneRadius  = 100.0
	SpawnInset           = 100.0
	SpawnJitter          = 20.0
	NavCellSize          = 20.0
)

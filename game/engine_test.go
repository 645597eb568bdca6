package game

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(obstacles ...Obstacle) *Engine {
	return NewEngine(rand.New(rand.NewSource(1)), obstacles)
}

// place adds a player and moves it to pos, bypassing spawn selection.
func place(e *Engine, id int, pos Vec2) {
	e.AddPlayer(id)
	e.mu.Lock()
	e.players[id].Pos = pos
	e.mu.Unlock()
}

func mustPlayer(t *testing.T, e *Engine, id int) Player {
	t.Helper()
	p, ok := e.Player(id)
	require.True(t, ok, "player %d missing", id)
	return p
}

func TestAddPlayerDefaults(t *testing.T) {
	e := newTestEngine()
	e.AddPlayer(1)

	p := mustPlayer(t, e, 1)
	assert.Equal(t, PlayerMaxHealth, p.Health)
	assert.True(t, p.Alive)
	assert.Equal(t, DirRight, p.Facing)
	assert.InDelta(t, SpawnInset, p.Pos.X, SpawnJitter)
	assert.InDelta(t, SpawnInset, p.Pos.Y, SpawnJitter)
	assert.Equal(t, Input{}, e.inputs[1])
}

func TestAddPlayerSpreadsSpawns(t *testing.T) {
	e := newTestEngine()
	e.AddPlayer(1)
	e.AddPlayer(2)

	p2 := mustPlayer(t, e, 2)
	assert.InDelta(t, WorldWidth-SpawnInset, p2.Pos.X, SpawnJitter)
	assert.InDelta(t, WorldHeight-SpawnInset, p2.Pos.Y, SpawnJitter)
}

func TestAddPlayerReplacesExisting(t *testing.T) {
	e := newTestEngine()
	e.AddPlayer(1)
	e.mu.Lock()
	e.players[1].Health = 40
	e.mu.Unlock()

	e.AddPlayer(1)
	assert.Equal(t, PlayerMaxHealth, mustPlayer(t, e, 1).Health)
	assert.Equal(t, 1, e.PlayerCount())
}

func TestRemovePlayerIdempotent(t *testing.T) {
	e := newTestEngine()
	e.AddPlayer(1)
	e.RemovePlayer(1)
	e.RemovePlayer(1)
	e.RemovePlayer(99)

	_, ok := e.Player(1)
	assert.False(t, ok)
	assert.Empty(t, e.inputs)
}

func TestSetInputUnknownPlayerIgnored(t *testing.T) {
	e := newTestEngine()
	e.SetInput(5, Input{Right: true, Shooting: true})
	e.Shoot(5)

	assert.Empty(t, e.inputs)
	assert.Empty(t, e.projectiles)
}

func TestMovementSpeedAndFacing(t *testing.T) {
	tests := []struct {
		name   string
		input  Input
		vel    Vec2
		facing Direction
	}{
		{"idle", Input{}, Vec2{0, 0}, DirRight},
		{"up", Input{Up: true}, Vec2{0, -PlayerSpeed}, DirUp},
		{"down", Input{Down: true}, Vec2{0, PlayerSpeed}, DirDown},
		{"left", Input{Left: true}, Vec2{-PlayerSpeed, 0}, DirLeft},
		{"up right", Input{Up: true, Right: true}, Vec2{PlayerSpeed, -PlayerSpeed}, DirRight},
		{"down left", Input{Down: true, Left: true}, Vec2{-PlayerSpeed, PlayerSpeed}, DirLeft},
		{"opposed", Input{Left: true, Right: true}, Vec2{0, 0}, DirRight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			place(e, 1, Vec2{300, 300})
			e.SetInput(1, tt.input)
			e.Tick()

			p := mustPlayer(t, e, 1)
			assert.Equal(t, tt.vel, p.Vel)
			assert.Equal(t, Vec2{300, 300}.Add(tt.vel), p.Pos)
			assert.Equal(t, tt.facing, p.Facing)
		})
	}
}

func TestMovementClampedToWorld(t *testing.T) {
	e := newTestEngine()
	place(e, 1, Vec2{2, 1})
	place(e, 2, Vec2{WorldWidth - PlayerSize - 1, WorldHeight - PlayerSize})
	e.SetInput(1, Input{Up: true, Left: true})
	e.SetInput(2, Input{Down: true, Right: true})
	e.Tick()

	p1 := mustPlayer(t, e, 1)
	assert.Equal(t, Vec2{0, 0}, p1.Pos)
	assert.Equal(t, Vec2{-2, -1}, p1.Vel)
	assert.Equal(t, Vec2{WorldWidth - PlayerSize, WorldHeight - PlayerSize}, mustPlayer(t, e, 2).Pos)
}

func TestMovementIntoObstacleLeavesPositionUnchanged(t *testing.T) {
	e := newTestEngine(Obstacle{Pos: Vec2{133, 280}, Width: 40, Height: 60})
	place(e, 1, Vec2{100, 300})
	e.SetInput(1, Input{Right: true})
	e.Tick()

	p := mustPlayer(t, e, 1)
	assert.Equal(t, Vec2{100, 300}, p.Pos)
	assert.True(t, p.Vel.IsZero())
	assert.Equal(t, DirRight, p.Facing)
}

// Obstacles revert the whole move while players only block the offending
// axis. Both cases use the same geometry: the blocker is to the east and the
// southward component alone would be free.
func TestDiagonalObstacleRevertsButPlayerSlides(t *testing.T) {
	diagonal := Input{Right: true, Down: true}

	t.Run("obstacle", func(t *testing.T) {
		e := newTestEngine(Obstacle{Pos: Vec2{133, 250}, Width: 40, Height: 100})
		place(e, 1, Vec2{100, 300})
		e.SetInput(1, diagonal)
		e.Tick()

		p := mustPlayer(t, e, 1)
		assert.Equal(t, Vec2{100, 300}, p.Pos)
		assert.True(t, p.Vel.IsZero())
	})

	t.Run("player", func(t *testing.T) {
		e := newTestEngine()
		place(e, 1, Vec2{100, 300})
		place(e, 2, Vec2{133, 280})
		e.SetInput(1, diagonal)
		e.Tick()

		p := mustPlayer(t, e, 1)
		assert.Equal(t, Vec2{100, 305}, p.Pos)
		assert.Equal(t, Vec2{0, PlayerSpeed}, p.Vel)
	})
}

func TestDeadPlayersDoNotBlockOrMove(t *testing.T) {
	e := newTestEngine()
	place(e, 1, Vec2{100, 300})
	place(e, 2, Vec2{133, 300})
	e.mu.Lock()
	e.players[2].Health = 0
	e.players[2].Alive = false
	e.mu.Unlock()

	e.SetInput(1, Input{Right: true})
	e.SetInput(2, Input{Down: true})
	e.Tick()

	assert.Equal(t, Vec2{105, 300}, mustPlayer(t, e, 1).Pos)
	assert.Equal(t, Vec2{133, 300}, mustPlayer(t, e, 2).Pos)
}

func TestEveryShootingInputFires(t *testing.T) {
	e := newTestEngine()
	place(e, 1, Vec2{300, 300})

	e.SetInput(1, Input{Right: true, Shooting: true})
	e.SetInput(1, Input{Up: true, Shooting: true})
	require.Len(t, e.projectiles, 2)
	assert.Equal(t, Vec2{ProjectileSpeed, 0}, e.projectiles[0].Vel)
	assert.Equal(t, Vec2{0, -ProjectileSpeed}, e.projectiles[1].Vel)

	// resending the same input fires again
	e.SetInput(1, Input{Up: true, Shooting: true})
	require.Len(t, e.projectiles, 3)

	e.SetInput(1, Input{})
	assert.Len(t, e.projectiles, 3)
}

func TestProjectileSpawn(t *testing.T) {
	tests := []struct {
		name   string
		facing Direction
		input  Input
		vel    Vec2
	}{
		{"idle uses facing", DirRight, Input{}, Vec2{ProjectileSpeed, 0}},
		{"idle facing up", DirUp, Input{}, Vec2{0, -ProjectileSpeed}},
		{"moving left overrides facing", DirRight, Input{Left: true}, Vec2{-ProjectileSpeed, 0}},
		{"right beats left", DirUp, Input{Left: true, Right: true}, Vec2{ProjectileSpeed, 0}},
		{"left beats up", DirDown, Input{Up: true, Left: true}, Vec2{-ProjectileSpeed, 0}},
		{"up beats down", DirLeft, Input{Up: true, Down: true}, Vec2{0, -ProjectileSpeed}},
		{"down", DirLeft, Input{Down: true}, Vec2{0, ProjectileSpeed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			place(e, 1, Vec2{300, 300})
			e.mu.Lock()
			e.players[1].Facing = tt.facing
			e.mu.Unlock()

			tt.input.Shooting = true
			e.SetInput(1, tt.input)

			require.Len(t, e.projectiles, 1)
			pr := e.projectiles[0]
			assert.Equal(t, 1, pr.OwnerID)
			assert.Equal(t, Vec2{300 + PlayerSize/2, 300 + PlayerSize/2}, pr.Pos)
			assert.Equal(t, tt.vel, pr.Vel)
		})
	}
}

func TestExplicitShoot(t *testing.T) {
	e := newTestEngine()
	place(e, 1, Vec2{300, 300})
	e.Shoot(1)
	e.Shoot(1)
	assert.Len(t, e.projectiles, 2)
}

func TestProjectileAtEdgeRemoved(t *testing.T) {
	e := newTestEngine()
	e.projectiles = []Projectile{
		{OwnerID: 1, Pos: Vec2{WorldWidth, 300}, Vel: Vec2{ProjectileSpeed, 0}},
		{OwnerID: 1, Pos: Vec2{300, 0}, Vel: Vec2{0, -ProjectileSpeed}},
		{OwnerID: 1, Pos: Vec2{300, 300}, Vel: Vec2{ProjectileSpeed, 0}},
	}
	e.Tick()

	require.Len(t, e.projectiles, 1)
	assert.Equal(t, Vec2{310, 300}, e.projectiles[0].Pos)
}

func TestProjectileStoppedByObstacle(t *testing.T) {
	e := newTestEngine(Obstacle{Pos: Vec2{320, 280}, Width: 40, Height: 40})
	e.projectiles = []Projectile{{OwnerID: 1, Pos: Vec2{300, 300}, Vel: Vec2{ProjectileSpeed, 0}}}

	e.Tick()
	assert.Len(t, e.projectiles, 1)
	e.Tick()
	assert.Empty(t, e.projectiles)
}

func TestProjectileHitDamagesAndIsRemoved(t *testing.T) {
	e := newTestEngine()
	place(e, 1, Vec2{100, 100})
	place(e, 2, Vec2{300, 300})
	e.projectiles = []Projectile{{OwnerID: 1, Pos: Vec2{290, 310}, Vel: Vec2{ProjectileSpeed, 0}}}

	e.Tick()

	assert.Equal(t, PlayerMaxHealth-ProjectileDamage, mustPlayer(t, e, 2).Health)
	assert.Empty(t, e.projectiles)
}

func TestProjectileIgnoresOwner(t *testing.T) {
	e := newTestEngine()
	place(e, 1, Vec2{300, 300})
	e.SetInput(1, Input{Shooting: true})
	e.Tick()

	assert.Equal(t, PlayerMaxHealth, mustPlayer(t, e, 1).Health)
	assert.Len(t, e.projectiles, 1)
}

func TestProjectileHitsLowestIDFirst(t *testing.T) {
	e := newTestEngine()
	place(e, 9, Vec2{100, 100})
	place(e, 3, Vec2{300, 300})
	place(e, 2, Vec2{300, 300})
	e.projectiles = []Projectile{{OwnerID: 9, Pos: Vec2{305, 305}, Vel: Vec2{1, 0}}}

	e.Tick()

	assert.Equal(t, PlayerMaxHealth-ProjectileDamage, mustPlayer(t, e, 2).Health)
	assert.Equal(t, PlayerMaxHealth, mustPlayer(t, e, 3).Health)
}

func TestDeadPlayerNotDamagedFurther(t *testing.T) {
	e := newTestEngine()
	place(e, 1, Vec2{100, 100})
	place(e, 2, Vec2{300, 300})
	e.mu.Lock()
	e.players[2].Health = ProjectileDamage
	e.mu.Unlock()

	e.projectiles = []Projectile{{OwnerID: 1, Pos: Vec2{305, 305}, Vel: Vec2{1, 0}}}
	e.Tick()

	p := mustPlayer(t, e, 2)
	assert.Zero(t, p.Health)
	assert.False(t, p.Alive)

	// Passes through the corpse
	e.projectiles = []Projectile{{OwnerID: 1, Pos: Vec2{305, 305}, Vel: Vec2{1, 0}}}
	e.Tick()
	assert.Zero(t, mustPlayer(t, e, 2).Health)
	assert.Len(t, e.projectiles, 1)
}

// fireAndWait shoots once from shooter and runs enough ticks for the shot to
// cross the arena.
func fireAndWait(e *Engine, shooter int) {
	e.SetInput(shooter, Input{Shooting: true})
	for i := 0; i < 30; i++ {
		e.Tick()
	}
	e.SetInput(shooter, Input{})
}

func TestShotAcrossGapHitsTarget(t *testing.T) {
	e := newTestEngine()
	place(e, 1, Vec2{100, 285})
	place(e, 2, Vec2{300, 285})

	fireAndWait(e, 1)

	assert.Equal(t, 90, mustPlayer(t, e, 2).Health)
	assert.Equal(t, PlayerMaxHealth, mustPlayer(t, e, 1).Health)
	assert.Empty(t, e.Snapshot().Projectiles)
}

func TestEliminationAndWinner(t *testing.T) {
	e := newTestEngine()
	place(e, 1, Vec2{100, 285})
	place(e, 2, Vec2{300, 285})

	_, ok := e.Winner()
	require.False(t, ok, "no winner before any elimination")

	for i := 0; i < PlayerMaxHealth/ProjectileDamage; i++ {
		fireAndWait(e, 1)
	}

	victim := mustPlayer(t, e, 2)
	assert.Zero(t, victim.Health)
	assert.False(t, victim.Alive)

	events := e.TakeEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventEliminated, events[0].Kind)
	assert.Equal(t, 2, events[0].Victim)
	assert.Equal(t, 1, events[0].Shooter)
	assert.Empty(t, e.TakeEvents())

	winner, ok := e.Winner()
	assert.True(t, ok)
	assert.Equal(t, 1, winner)

	// Eliminated players stay in the snapshot and ignore input
	snap := e.Snapshot()
	require.Len(t, snap.Players, 2)
	assert.False(t, snap.Players[1].Alive)
	assert.True(t, snap.HasWinner)
	assert.Equal(t, 1, snap.WinnerID)
	assert.Equal(t, 1, snap.Living())

	e.SetInput(2, Input{Up: true, Shooting: true})
	e.Shoot(2)
	e.Tick()
	assert.Equal(t, victim.Pos, mustPlayer(t, e, 2).Pos)
	assert.Empty(t, e.projectiles)
}

func TestNoWinnerWhileSeveralAlive(t *testing.T) {
	e := newTestEngine()
	place(e, 1, Vec2{100, 100})
	place(e, 2, Vec2{300, 300})
	place(e, 3, Vec2{500, 500})
	e.mu.Lock()
	e.players[3].Alive = false
	e.players[3].Health = 0
	e.eliminations = 1
	e.mu.Unlock()

	_, ok := e.Winner()
	assert.False(t, ok)

	e.RemovePlayer(2)
	winner, ok := e.Winner()
	assert.True(t, ok)
	assert.Equal(t, 1, winner)
}

func TestSnapshotIsIsolated(t *testing.T) {
	e := newTestEngine(Obstacle{Pos: Vec2{600, 100}, Width: 40, Height: 40})
	place(e, 1, Vec2{300, 300})
	e.SetInput(1, Input{Right: true, Shooting: true})

	snap := e.Snapshot()
	for i := 0; i < 5; i++ {
		e.Tick()
	}

	assert.Equal(t, Vec2{300, 300}, snap.Players[0].Pos)
	assert.Equal(t, Vec2{315, 315}, snap.Projectiles[0].Pos)
	assert.Len(t, snap.Obstacles, 1)
	assert.Equal(t, uint64(0), snap.Tick)
}

func TestConcurrentMutationKeepsMapsInSync(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(5)), GenerateObstacles(rand.New(rand.NewSource(5)), 10))

	checkSync := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if len(e.players) != len(e.inputs) {
			t.Errorf("players=%d inputs=%d", len(e.players), len(e.inputs))
			return
		}
		for id := range e.players {
			if _, ok := e.inputs[id]; !ok {
				t.Errorf("player %d has no input", id)
			}
		}
	}

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				e.Tick()
				_ = e.Snapshot()
				checkSync()
			}
		}
	}()

	var workers sync.WaitGroup
	for w := 0; w < 8; w++ {
		workers.Add(1)
		go func(w int) {
			defer workers.Done()
			rng := rand.New(rand.NewSource(int64(w)))
			for i := 0; i < 500; i++ {
				id := rng.Intn(12)
				switch rng.Intn(4) {
				case 0:
					e.AddPlayer(id)
				case 1:
					e.RemovePlayer(id)
				case 2:
					e.SetInput(id, Input{
						Up:       rng.Intn(2) == 0,
						Right:    rng.Intn(2) == 0,
						Shooting: rng.Intn(2) == 0,
					})
				default:
					e.Shoot(id)
				}
				checkSync()
			}
		}(w)
	}

	workers.Wait()
	close(done)
	wg.Wait()
	checkSync()
}

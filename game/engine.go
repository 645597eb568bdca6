package game

import (
	"maps"
	"math/rand"
	"slices"
	"sync"
)

// EventKind classifies things the engine reports to its driver.
type EventKind uint8

const (
	EventEliminated EventKind = iota + 1
)

// Event is a notable state change produced during a tick.
type Event struct {
	Kind    EventKind
	Tick    uint64
	Victim  int
	Shooter int
}

// Engine owns the authoritative game state. Every exported method is safe
// for concurrent use: one full tick, or one input application, is atomic.
type Engine struct {
	mu           sync.Mutex
	width        float64
	height       float64
	rng          *rand.Rand
	players      map[int]*Player
	inputs       map[int]Input
	projectiles  []Projectile
	obstacles    []Obstacle
	spawns       []Vec2
	index        *SpatialGrid
	tick         uint64
	eliminations int
	events       []Event
	queryBuf     []int
}

// NewEngine creates an engine over a fixed obstacle layout. rng drives spawn
// jitter.
func NewEngine(rng *rand.Rand, obstacles []Obstacle) *Engine {
	e := &Engine{
		width:     WorldWidth,
		height:    WorldHeight,
		rng:       rng,
		players:   make(map[int]*Player),
		inputs:    make(map[int]Input),
		obstacles: slices.Clone(obstacles),
		spawns:    SpawnPoints(WorldWidth, WorldHeight),
		index:     NewSpatialGrid(WorldWidth, WorldHeight),
	}
	for i, o := range e.obstacles {
		e.index.InsertRect(o.Rect(), i)
	}
	return e
}

// GenerateObstacles builds a traversable layout of up to count obstacles
// for the standard world.
func GenerateObstacles(rng *rand.Rand, count int) []Obstacle {
	gen := NewObstacleGenerator(rng, WorldWidth, WorldHeight, SpawnPoints(WorldWidth, WorldHeight))
	return gen.Generate(count, ObstacleMinCenterGap, ObstacleMaxAttempts)
}

// AddPlayer spawns a player at the fairest spawn point with an idle input.
// An existing player with the same id is replaced.
func (e *Engine) AddPlayer(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	living := make([]Vec2, 0, len(e.players))
	for pid, p := range e.players {
		if p.Alive && pid != id {
			living = append(living, p.Pos)
		}
	}
	e.players[id] = NewPlayer(id, SelectSpawn(e.rng, e.spawns, living))
	e.inputs[id] = Input{}
}

// RemovePlayer deletes a player and its input. Unknown ids are ignored.
func (e *Engine) RemovePlayer(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.players, id)
	delete(e.inputs, id)
}

// SetInput stores the latest input for a player. Every input with Shooting
// set fires one projectile immediately; movement applies on the next tick.
func (e *Engine) SetInput(id int, in Input) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.players[id]
	if !ok {
		return
	}
	e.inputs[id] = in
	if in.Shooting && p.Alive {
		e.fire(p, in)
	}
}

// Shoot fires one projectile for a living player using its current input.
func (e *Engine) Shoot(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.players[id]
	if !ok || !p.Alive {
		return
	}
	e.fire(p, e.inputs[id])
}

func (e *Engine) fire(p *Player, in Input) {
	e.projectiles = append(e.projectiles, NewProjectile(p, in.fireDirection(p.Facing)))
}

// Tick advances the simulation by one step: players move first, then
// projectiles fly and resolve hits.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tick++
	ids := slices.Sorted(maps.Keys(e.players))
	for _, id := range ids {
		p := e.players[id]
		if !p.Alive {
			continue
		}
		e.movePlayer(p, e.inputs[id])
	}
	e.advanceProjectiles(ids)
}

// movePlayer applies one tick of movement. Other players block per axis so a
// diagonal move slides along them; obstacles revert the whole move.
func (e *Engine) movePlayer(p *Player, in Input) {
	start := p.Pos
	delta, facing, moved := in.step()
	if moved {
		p.Facing = facing
	}

	pos := start.Add(delta)
	if e.blockedByPlayer(p.ID, pos) {
		pos = start
		if delta.X != 0 {
			pos.X += delta.X
			if e.blockedByPlayer(p.ID, pos) {
				pos.X = start.X
			}
		}
		if delta.Y != 0 {
			pos.Y += delta.Y
			if e.blockedByPlayer(p.ID, pos) {
				pos.Y = start.Y
			}
		}
	}

	pos.X = Clamp(pos.X, 0, e.width-PlayerSize)
	pos.Y = Clamp(pos.Y, 0, e.height-PlayerSize)

	if e.hitsObstacle(RectAt(pos, PlayerSize, PlayerSize)) {
		pos = start
	}

	p.Vel = pos.Sub(start)
	p.Pos = pos
}

// blockedByPlayer reports whether a player box at pos overlaps any other
// living player.
func (e *Engine) blockedByPlayer(id int, pos Vec2) bool {
	box := RectAt(pos, PlayerSize, PlayerSize)
	for oid, o := range e.players {
		if oid == id || !o.Alive {
			continue
		}
		if box.Overlaps(o.Rect()) {
			return true
		}
	}
	return false
}

func (e *Engine) hitsObstacle(r Rect) bool {
	e.queryBuf = e.index.QueryBuf(r, e.queryBuf[:0])
	for _, i := range e.queryBuf {
		if e.obstacles[i].Rect().Overlaps(r) {
			return true
		}
	}
	return false
}

// advanceProjectiles moves every projectile and drops the ones that left the
// world, struck an obstacle or struck a player. ids is the ascending player
// order used to pick the victim when several overlap.
func (e *Engine) advanceProjectiles(ids []int) {
	kept := e.projectiles[:0]
	for _, pr := range e.projectiles {
		pr.Pos = pr.Pos.Add(pr.Vel)
		if pr.OutOfBounds(e.width, e.height) {
			continue
		}
		box := pr.Rect()
		if e.hitsObstacle(box) {
			continue
		}
		if victim := e.firstHit(pr.OwnerID, box, ids); victim != nil {
			if victim.TakeDamage(ProjectileDamage) {
				e.eliminations++
				e.events = append(e.events, Event{
					Kind:    EventEliminated,
					Tick:    e.tick,
					Victim:  victim.ID,
					Shooter: pr.OwnerID,
				})
			}
			continue
		}
		kept = append(kept, pr)
	}
	clear(e.projectiles[len(kept):])
	e.projectiles = kept
}

func (e *Engine) firstHit(owner int, box Rect, ids []int) *Player {
	for _, id := range ids {
		p, ok := e.players[id]
		if !ok || id == owner || !p.Alive {
			continue
		}
		if box.Overlaps(p.Rect()) {
			return p
		}
	}
	return nil
}

// TakeEvents returns and clears the events collected since the last call.
func (e *Engine) TakeEvents() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	events := e.events
	e.events = nil
	return events
}

// Winner returns the last living player once at least one elimination has
// happened.
func (e *Engine) Winner() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.winnerLocked()
}

func (e *Engine) winnerLocked() (int, bool) {
	if e.eliminations == 0 {
		return 0, false
	}
	winner, alive := 0, 0
	for id, p := range e.players {
		if p.Alive {
			winner = id
			alive++
		}
	}
	if alive != 1 {
		return 0, false
	}
	return winner, true
}

// Player returns a copy of the player with the given id.
func (e *Engine) Player(id int) (Player, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// PlayerCount returns the number of players, living or eliminated.
func (e *Engine) PlayerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.players)
}

// Obstacles returns the static obstacle layout.
func (e *Engine) Obstacles() []Obstacle {
	return slices.Clone(e.obstacles)
}

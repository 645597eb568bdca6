package game

import (
	"cmp"
	"slices"
)

// Snapshot is an immutable copy of the game state taken for broadcast.
// Players are ordered by id. Obstacles share the engine's static layout,
// which is never written after construction.
type Snapshot struct {
	Tick         uint64
	Players      []Player
	Projectiles  []Projectile
	Obstacles    []Obstacle
	Eliminations int
	WinnerID     int
	HasWinner    bool
}

// Snapshot copies the current state. Later ticks never touch the result.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Tick:         e.tick,
		Players:      make([]Player, 0, len(e.players)),
		Projectiles:  slices.Clone(e.projectiles),
		Obstacles:    e.obstacles,
		Eliminations: e.eliminations,
	}
	for _, p := range e.players {
		s.Players = append(s.Players, *p)
	}
	slices.SortFunc(s.Players, func(a, b Player) int { return cmp.Compare(a.ID, b.ID) })
	s.WinnerID, s.HasWinner = e.winnerLocked()
	return s
}

// Living returns the number of players still alive in the snapshot.
func (s Snapshot) Living() int {
	n := 0
	for _, p := range s.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

package game

// Direction is the facing a player last moved in.
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "unknown"
}

// unit returns the axis-aligned unit vector for d in screen coordinates.
func (d Direction) unit() Vec2 {
	switch d {
	case DirUp:
		return Vec2{0, -1}
	case DirDown:
		return Vec2{0, 1}
	case DirLeft:
		return Vec2{-1, 0}
	default:
		return Vec2{1, 0}
	}
}

// Input is the latest key state a client reported. It replaces the previous
// one wholesale.
type Input struct {
	Up, Down, Left, Right bool
	Shooting              bool
}

// Moving reports whether any direction is pressed.
func (in Input) Moving() bool {
	return in.Up || in.Down || in.Left || in.Right
}

// step returns the per-tick displacement for the pressed directions and the
// facing of the last pressed bit in up, down, left, right order.
func (in Input) step() (delta Vec2, facing Direction, moved bool) {
	if in.Up {
		delta.Y -= PlayerSpeed
		facing, moved = DirUp, true
	}
	if in.Down {
		delta.Y += PlayerSpeed
		facing, moved = DirDown, true
	}
	if in.Left {
		delta.X -= PlayerSpeed
		facing, moved = DirLeft, true
	}
	if in.Right {
		delta.X += PlayerSpeed
		facing, moved = DirRight, true
	}
	return delta, facing, moved
}

// fireDirection picks right > left > up > down among pressed keys, falling
// back to the last facing when idle.
func (in Input) fireDirection(last Direction) Direction {
	switch {
	case in.Right:
		return DirRight
	case in.Left:
		return DirLeft
	case in.Up:
		return DirUp
	case in.Down:
		return DirDown
	}
	return last
}

// Player is one combatant. Pos is the top-left corner of its box.
type Player struct {
	ID     int
	Pos    Vec2
	Vel    Vec2
	Health int
	Alive  bool
	Facing Direction
}

// NewPlayer creates a player at full health facing right.
func NewPlayer(id int, pos Vec2) *Player {
	return &Player{
		ID:     id,
		Pos:    pos,
		Health: PlayerMaxHealth,
		Alive:  true,
		Facing: DirRight,
	}
}

// Rect returns the player's collision box.
func (p *Player) Rect() Rect {
	return RectAt(p.Pos, PlayerSize, PlayerSize)
}

// Center returns the middle of the player's box.
func (p *Player) Center() Vec2 {
	return Vec2{p.Pos.X + PlayerSize/2, p.Pos.Y + PlayerSize/2}
}

// TakeDamage reduces health and returns true if the player died.
// Dead players take no further damage.
func (p *Player) TakeDamage(dmg int) bool {
	if !p.Alive {
		return false
	}
	p.Health -= dmg
	if p.Health <= 0 {
		p.Health = 0
		p.Alive = false
		return true
	}
	return false
}

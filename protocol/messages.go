package protocol

// IDAssign tells a client which player id its connection owns.
type IDAssign struct {
	_msgpack struct{} `msgpack:",as_array"`

	ID uint32
}

// Input is the client's full key state.
type Input struct {
	_msgpack struct{} `msgpack:",as_array"`

	Up       bool
	Down     bool
	Left     bool
	Right    bool
	Shooting bool
}

// PlayerState is one player in a GameState broadcast. Eliminated players
// are included with Alive false.
type PlayerState struct {
	_msgpack struct{} `msgpack:",as_array"`

	ID     uint32
	X      float64
	Y      float64
	VX     float64
	VY     float64
	Health int32
	Alive  bool
	Facing uint8 // 0 up, 1 down, 2 left, 3 right
}

type ProjectileState struct {
	_msgpack struct{} `msgpack:",as_array"`

	Owner uint32
	X     float64
	Y     float64
	VX    float64
	VY    float64
}

type ObstacleState struct {
	_msgpack struct{} `msgpack:",as_array"`

	X float64
	Y float64
	W float64
	H float64
}

// GameState is the full authoritative broadcast sent every tick.
// Winner is 0 until exactly one player survives an elimination.
type GameState struct {
	_msgpack struct{} `msgpack:",as_array"`

	Tick         uint64
	Winner       uint32
	Eliminations uint32
	Players      []PlayerState
	Projectiles  []ProjectileState
	Obstacles    []ObstacleState
}

package main

import (
	"arena-server/game"
	"arena-server/protocol"
)

func playerState(p game.Player) protocol.PlayerState {
	return protocol.PlayerState{
		ID:     uint32(p.ID),
		X:      p.Pos.X,
		Y:      p.Pos.Y,
		VX:     p.Vel.X,
		VY:     p.Vel.Y,
		Health: int32(p.Health),
		Alive:  p.Alive,
		Facing: uint8(p.Facing),
	}
}

func projectileState(pr game.Projectile) protocol.ProjectileState {
	return protocol.ProjectileState{
		Owner: uint32(pr.OwnerID),
		X:     pr.Pos.X,
		Y:     pr.Pos.Y,
		VX:    pr.Vel.X,
		VY:    pr.Vel.Y,
	}
}

func obstacleState(o game.Obstacle) protocol.ObstacleState {
	return protocol.ObstacleState{X: o.Pos.X, Y: o.Pos.Y, W: o.Width, H: o.Height}
}

// toGameState converts a snapshot into its wire form. Winner is 0 when
// nobody has won.
func toGameState(s game.Snapshot) protocol.GameState {
	gs := protocol.GameState{
		Tick:         s.Tick,
		Eliminations: uint32(s.Eliminations),
		Players:      make([]protocol.PlayerState, 0, len(s.Players)),
		Projectiles:  make([]protocol.ProjectileState, 0, len(s.Projectiles)),
		Obstacles:    make([]protocol.ObstacleState, 0, len(s.Obstacles)),
	}
	if s.HasWinner {
		gs.Winner = uint32(s.WinnerID)
	}
	for _, p := range s.Players {
		gs.Players = append(gs.Players, playerState(p))
	}
	for _, pr := range s.Projectiles {
		gs.Projectiles = append(gs.Projectiles, projectileState(pr))
	}
	for _, o := range s.Obstacles {
		gs.Obstacles = append(gs.Obstacles, obstacleState(o))
	}
	return gs
}

func encodeSnapshot(s game.Snapshot) ([]byte, error) {
	gs := toGameState(s)
	return protocol.Encode(protocol.GameStateKind, &gs)
}

func encodeIDAssign(id int) []byte {
	return protocol.MustEncode(protocol.PlayerIDAssign, &protocol.IDAssign{ID: uint32(id)})
}

func toInput(in protocol.Input) game.Input {
	return game.Input{
		Up:       in.Up,
		Down:     in.Down,
		Left:     in.Left,
		Right:    in.Right,
		Shooting: in.Shooting,
	}
}

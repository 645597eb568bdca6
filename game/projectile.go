package game

// Projectile is a shot travelling in a straight line at constant velocity.
type Projectile struct {
	OwnerID int
	Pos     Vec2
	Vel     Vec2
}

// NewProjectile fires from the owner's center in direction dir.
func NewProjectile(owner *Player, dir Direction) Projectile {
	return Projectile{
		OwnerID: owner.ID,
		Pos:     owner.Center(),
		Vel:     dir.unit().Scale(ProjectileSpeed),
	}
}

// Rect returns the projectile's hitbox.
func (p Projectile) Rect() Rect {
	return RectAt(p.Pos, ProjectileHitbox, ProjectileHitbox)
}

// OutOfBounds reports whether the projectile left a width×height world.
func (p Projectile) OutOfBounds(width, height float64) bool {
	return p.Pos.X < 0 || p.Pos.X > width ||
		p.Pos.Y < 0 || p.Pos.Y > height
}

package model

import "math"

func NewParticle(owner PlayerId, x, y int, direction Direction) *Particle {
	return newParticle(owner, x, y, direction, DEFAULT_STEP)
}

func newParticle(owner PlayerId, x, y int, direction Direction, step float32) *Particle {
	return &Particle{
		Owner:           owner,
		X:               float32(x),
		Y:               float32(y),
		Direction:       direction,
		originX:         x,
		originY:         y,
		stepsToComplete: stepsFor(step),
		step:            step,
	}
}

// stepsFor is the smallest number of advances whose float32 distance
// reaches one cell.
func stepsFor(step float32) int {
	n := int(math.Floor(1 / float64(step)))
	if n < 1 {
		n = 1
	}
	for n > 1 && float32(n-1)*step >= 1 {
		n--
	}
	for float32(n)*step < 1 {
		n++
	}
	return n
}

func (p *Particle) Origin() (x, y int) {
	return p.originX, p.originY
}

// Destination is the neighbour cell the particle lands on.
func (p *Particle) Destination() (x, y int) {
	dx, dy := p.Direction.Offset()
	return p.originX + dx, p.originY + dy
}

// Progress is the travelled share of the cell, capped at 1.
func (p *Particle) Progress() float32 {
	return travelled(p.steps, p.step)
}

func (p *Particle) IsCompleted() bool {
	return p.steps >= p.stepsToComplete
}

// Advance moves the particle one step. Once completed it snaps the position to
// the destination and keeps returning true.
func (p *Particle) Advance() bool {
	if p.IsCompleted() {
		x, y := p.Destination()
		p.X, p.Y = float32(x), float32(y)
		return true
	}
	p.steps++
	dx, dy := p.Direction.Offset()
	t := travelled(p.steps, p.step)
	p.X = float32(p.originX) + float32(dx)*t
	p.Y = float32(p.originY) + float32(dy)*t
	return false
}

func travelled(steps int, step float32) float32 {
	t := float32(steps) * step
	if t > 1 {
		return 1
	}
	return t
}

package model

type ServerMessage struct {
	Setup     []Setup
	Cells     []CellInfo
	Particles []ParticleInfo
	Rejected  []Rejection
	Winner    []PlayerId
}

type Setup struct {
	Side      int
	Step      float32
	PlayerKey PlayerId
	Players   []PlayerId
}

// CellInfo carries the state of one position, Dots 0 means empty.
type CellInfo struct {
	Col, Row int
	Owner    PlayerId
	Dots     Dots
}

type ParticleInfo struct {
	Owner     PlayerId
	Col, Row  int
	Direction Direction
}

type Rejection struct {
	Col, Row int
	Reason   string
}

type ClientMessage struct {
	Col, Row int
}

func CellInfoAt(b *Board, x, y int) (CellInfo, error) {
	c, err := b.Get(x, y)
	if err != nil {
		return CellInfo{}, err
	}
	return CellInfo{Col: x, Row: y, Owner: c.Owner, Dots: c.Value}, nil
}

// Snapshot lists every position of the board in row-major order.
func Snapshot(b *Board) []CellInfo {
	infos := make([]CellInfo, 0, b.Side()*b.Side())
	b.Each(func(x, y int, c StaticCell) {
		infos = append(infos, CellInfo{Col: x, Row: y, Owner: c.Owner, Dots: c.Value})
	})
	return infos
}

func ParticleInfoOf(p *Particle) ParticleInfo {
	x, y := p.Origin()
	return ParticleInfo{Owner: p.Owner, Col: x, Row: y, Direction: p.Direction}
}

// Spawn rebuilds a particle on the receiving side with the session step.
func (pi ParticleInfo) Spawn(step float32) *Particle {
	return newParticle(pi.Owner, pi.Col, pi.Row, pi.Direction, step)
}

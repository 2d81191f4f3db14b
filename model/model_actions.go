package model

import "fmt"

func NewBoard(side int, opts ...Option) (*Board, error) {
	if side < 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, side)
	}
	b := &Board{
		side:  side,
		step:  DEFAULT_STEP,
		cells: make([]StaticCell, side*side),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Board) Side() int {
	return b.side
}

func (b *Board) Step() float32 {
	return b.step
}

func (b *Board) EmptyRule() EmptyRule {
	return b.emptyRule
}

// Put applies one placement of owner at (x, y). Only a cell already at THREE
// explodes: it is cleared and one particle per in-bounds neighbour is returned.
// Chain reactions are left to the caller.
func (b *Board) Put(owner PlayerId, x, y int) ([]*Particle, error) {
	i, err := b.index(x, y)
	if err != nil {
		return nil, err
	}
	cell := b.cells[i]
	if cell.Empty() {
		if b.emptyRule == EMPTY_CLAIM {
			b.cells[i] = StaticCell{Owner: owner, Value: ONE}
		}
		return nil, nil
	}
	next, overflow := cell.Value.Promote()
	if !overflow {
		b.cells[i] = StaticCell{Owner: owner, Value: next}
		return nil, nil
	}
	b.cells[i] = StaticCell{}
	particles := make([]*Particle, 0, 4)
	for _, d := range DIRECTIONS {
		dx, dy := d.Offset()
		if b.Inside(x+dx, y+dy) {
			particles = append(particles, newParticle(owner, x, y, d, b.step))
		}
	}
	return particles, nil
}

// Get returns the cell at (x, y); an empty position yields the zero StaticCell.
func (b *Board) Get(x, y int) (StaticCell, error) {
	i, err := b.index(x, y)
	if err != nil {
		return StaticCell{}, err
	}
	return b.cells[i], nil
}

// Winner returns the single owner of all occupied cells. An empty board or a
// board with mixed owners has no winner.
func (b *Board) Winner() (PlayerId, bool) {
	var winner PlayerId
	found := false
	for _, c := range b.cells {
		if c.Empty() {
			continue
		}
		if !found {
			winner, found = c.Owner, true
		} else if c.Owner != winner {
			return 0, false
		}
	}
	return winner, found
}

func (b *Board) Occupied() int {
	n := 0
	for _, c := range b.cells {
		if !c.Empty() {
			n++
		}
	}
	return n
}

// Each visits every position in row-major order.
func (b *Board) Each(f func(x, y int, c StaticCell)) {
	for i, c := range b.cells {
		f(i%b.side, i/b.side, c)
	}
}

func (b *Board) set(x, y int, c StaticCell) {
	b.cells[x+y*b.side] = c
}

func (b *Board) Inside(x, y int) bool {
	return x >= 0 && x < b.side && y >= 0 && y < b.side
}

func (b *Board) index(x, y int) (int, error) {
	if !b.Inside(x, y) {
		return 0, fmt.Errorf("%w: (%d,%d) outside %dx%d board", ErrIndexOutOfRange, x, y, b.side, b.side)
	}
	return x + y*b.side, nil
}

package viewmodel

const (
	CELL_SIZE = 64
	MARGIN    = 16
	HEADER    = 56
)

// Layout maps board coordinates to window pixels.
type Layout struct {
	Side   int
	Cell   int
	Margin int
	Header int
}

func NewLayout(side int) Layout {
	return Layout{Side: side, Cell: CELL_SIZE, Margin: MARGIN, Header: HEADER}
}

func (l Layout) Size() (width, height int) {
	board := l.Side * l.Cell
	return board + 2*l.Margin, board + 2*l.Margin + l.Header
}

// BoardRect is the top left corner and edge length of the grid.
func (l Layout) BoardRect() (x, y, side int) {
	return l.Margin, l.Margin + l.Header, l.Side * l.Cell
}

func (l Layout) CellOrigin(x, y int) (px, py int) {
	bx, by, _ := l.BoardRect()
	return bx + x*l.Cell, by + y*l.Cell
}

// CellAt is the cell under a pixel, false outside the grid.
func (l Layout) CellAt(px, py int) (x, y int, ok bool) {
	bx, by, side := l.BoardRect()
	if px < bx || py < by || px >= bx+side || py >= by+side {
		return 0, 0, false
	}
	return (px - bx) / l.Cell, (py - by) / l.Cell, true
}

// Center is the pixel at the middle of a possibly fractional cell position.
func (l Layout) Center(x, y float32) (px, py float64) {
	bx, by, _ := l.BoardRect()
	half := float64(l.Cell) / 2
	return float64(bx) + float64(x)*float64(l.Cell) + half, float64(by) + float64(y)*float64(l.Cell) + half
}

package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/zucenko/chainreaction/engine"
	"github.com/zucenko/chainreaction/model"
)

const (
	CELL_W = 5
	CELL_H = 3
	MARGIN = 1
)

var COLORS = []tcell.Color{
	tcell.NewHexColor(0xfa3636),
	tcell.NewHexColor(0xedbc1e),
	tcell.NewHexColor(0x0abd38),
	tcell.NewHexColor(0x34fbf6),
	tcell.NewHexColor(0x321ecc),
	tcell.NewHexColor(0xcb18dd),
}

var COLOR_NONE = tcell.NewHexColor(0x444444)

// Canvas is the part of tcell.Screen the board is drawn on.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

func PlayerColor(id model.PlayerId) tcell.Color {
	if id < 1 {
		return COLOR_NONE
	}
	return COLORS[int(id-1)%len(COLORS)]
}

// cellAt maps a screen position to board coordinates.
func cellAt(sx, sy int) (x, y int, ok bool) {
	if sx < MARGIN || sy < MARGIN {
		return 0, 0, false
	}
	x, y = (sx-MARGIN)/CELL_W, (sy-MARGIN)/CELL_H
	if (sx-MARGIN)%CELL_W == CELL_W-1 || (sy-MARGIN)%CELL_H == CELL_H-1 {
		return 0, 0, false
	}
	return x, y, true
}

func cellOrigin(x, y int) (sx, sy int) {
	return MARGIN + x*CELL_W, MARGIN + y*CELL_H
}

func (g *Game) Draw(c Canvas) {
	board := g.Driver.Board()
	board.Each(func(x, y int, cell model.StaticCell) {
		g.drawCell(c, x, y, cell)
	})

	for _, p := range g.Driver.InFlight() {
		px := MARGIN + int(math.Round(float64(p.X)*CELL_W)) + 1
		py := MARGIN + int(math.Round(float64(p.Y)*CELL_H))
		c.SetContent(px, py, '*', nil, tcell.StyleDefault.Foreground(PlayerColor(p.Owner)).Bold(true))
	}

	sx, sy := cellOrigin(g.CursorX, g.CursorY)
	cursor := tcell.StyleDefault.Foreground(PlayerColor(g.Player))
	c.SetContent(sx-1, sy, '[', nil, cursor)
	c.SetContent(sx+CELL_W-1, sy, ']', nil, cursor)

	status := fmt.Sprintf("player %d  in flight %-3d", g.Player, len(g.Driver.InFlight()))
	if g.State == GAME_OVER {
		status = fmt.Sprintf("player %d wins! q to quit", g.Winner)
	}
	_, statusY := cellOrigin(0, board.Side())
	drawText(c, MARGIN, statusY, status, tcell.StyleDefault.Foreground(PlayerColor(g.Player)))
	drawText(c, MARGIN, statusY+1, fmt.Sprintf("%-40s", g.Message), tcell.StyleDefault)
}

func (g *Game) drawCell(c Canvas, x, y int, cell model.StaticCell) {
	sx, sy := cellOrigin(x, y)
	style := tcell.StyleDefault.Foreground(PlayerColor(cell.Owner))
	if f, ok := g.Flashes[engine.Pos{X: x, Y: y}]; ok && f > 0.3 {
		style = style.Reverse(true)
	}
	for dy := 0; dy < CELL_H-1; dy++ {
		for dx := 0; dx < CELL_W-1; dx++ {
			c.SetContent(sx+dx, sy+dy, ' ', nil, style)
		}
	}
	if cell.Empty() {
		c.SetContent(sx+1, sy, '·', nil, tcell.StyleDefault.Foreground(COLOR_NONE))
		return
	}
	for i := 0; i < int(cell.Value); i++ {
		c.SetContent(sx+i, sy, '●', nil, style)
	}
}

func drawText(c Canvas, x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		c.SetContent(x+i, y, r, nil, style)
	}
}

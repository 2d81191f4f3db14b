package main

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/chainreaction/engine"
	"github.com/zucenko/chainreaction/model"
)

type canvas map[[2]int]rune

func (c canvas) SetContent(x, y int, primary rune, combining []rune, style tcell.Style) {
	c[[2]int{x, y}] = primary
}

func (c canvas) text(x, y, n int) string {
	sb := strings.Builder{}
	for i := 0; i < n; i++ {
		sb.WriteRune(c[[2]int{x + i, y}])
	}
	return sb.String()
}

type explosions []int

func (e *explosions) Explode(n int) { *e = append(*e, n) }
func (e *explosions) Close()        {}

func newTestGame(t *testing.T, layout string, step float32) (*Game, *explosions) {
	board, err := model.ReadBoard(strings.NewReader(layout),
		model.WithEmptyRule(model.EMPTY_CLAIM), model.WithStep(step))
	require.NoError(t, err)
	sounds := &explosions{}
	return NewGame(engine.NewDriver(board), 2, sounds), sounds
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestDrawBoard(t *testing.T) {
	g, _ := newTestGame(t, "12 .. ..\n.. .. ..\n.. .. ..\n", 0.02)
	c := canvas{}
	g.Draw(c)

	assert.Equal(t, '[', c[[2]int{0, 1}])
	assert.Equal(t, "●● ", c.text(1, 1, 3))
	assert.Equal(t, ']', c[[2]int{5, 1}])
	assert.Equal(t, '·', c[[2]int{7, 1}])
	assert.True(t, strings.HasPrefix(c.text(1, 10, 20), "player 1"))
}

func TestKeys(t *testing.T) {
	g, _ := newTestGame(t, ".. ..\n.. ..\n", 0.02)

	assert.False(t, g.Handle(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone)))
	assert.Equal(t, 1, g.CursorX)
	g.Handle(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	assert.Equal(t, 0, g.CursorX, "cursor wraps")
	g.Handle(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	assert.Equal(t, 1, g.CursorY)

	g.Handle(key('2'))
	assert.Equal(t, model.PlayerId(2), g.Player)
	g.Handle(key('7'))
	assert.Equal(t, model.PlayerId(2), g.Player, "only configured players")

	g.Handle(key(' '))
	cell, err := g.Driver.Board().Get(0, 1)
	require.NoError(t, err)
	assert.Equal(t, model.StaticCell{Owner: 2, Value: model.ONE}, cell)
	assert.Equal(t, model.PlayerId(1), g.Player)

	assert.True(t, g.Handle(key('q')))
	assert.True(t, g.Handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
}

func TestMouseClickPlacesOnce(t *testing.T) {
	g, _ := newTestGame(t, ".. ..\n.. ..\n", 0.02)

	g.Handle(tcell.NewEventMouse(7, 4, tcell.Button1, tcell.ModNone))
	g.Handle(tcell.NewEventMouse(7, 4, tcell.Button1, tcell.ModNone))
	cell, _ := g.Driver.Board().Get(1, 1)
	assert.Equal(t, model.StaticCell{Owner: 1, Value: model.ONE}, cell)
	assert.Equal(t, 1, g.CursorX)
	assert.Equal(t, 1, g.CursorY)

	g.Handle(tcell.NewEventMouse(7, 4, tcell.ButtonNone, tcell.ModNone))
	g.Handle(tcell.NewEventMouse(7, 4, tcell.Button1, tcell.ModNone))
	cell, _ = g.Driver.Board().Get(1, 1)
	assert.Equal(t, model.StaticCell{Owner: 2, Value: model.TWO}, cell)

	// gap between cells
	g.Handle(tcell.NewEventMouse(5, 1, tcell.ButtonNone, tcell.ModNone))
	g.Handle(tcell.NewEventMouse(5, 1, tcell.Button1, tcell.ModNone))
	cell, _ = g.Driver.Board().Get(0, 0)
	assert.True(t, cell.Empty())
}

func TestCellAt(t *testing.T) {
	x, y, ok := cellAt(7, 4)
	assert.True(t, ok)
	assert.Equal(t, [2]int{1, 1}, [2]int{x, y})
	_, _, ok = cellAt(0, 0)
	assert.False(t, ok)
	_, _, ok = cellAt(5, 1)
	assert.False(t, ok)
	_, _, ok = cellAt(2, 3)
	assert.False(t, ok)
}

func TestExplosionAnimatesAndEnds(t *testing.T) {
	g, sounds := newTestGame(t, "13 ..\n.. ..\n", 0.25)

	g.Place(0, 0)
	assert.Equal(t, ACTING, g.State)
	assert.Equal(t, []int{2}, []int(*sounds))
	assert.Equal(t, float32(1), g.Flashes[engine.Pos{X: 0, Y: 0}])

	c := canvas{}
	g.Draw(c)
	assert.Equal(t, '*', c[[2]int{2, 1}])

	g.Place(1, 1)
	cell, _ := g.Driver.Board().Get(1, 1)
	assert.True(t, cell.Empty(), "no placement while acting")

	for i := 0; i < 5; i++ {
		g.Update()
	}
	assert.Equal(t, IDLE, g.State)
	assert.Empty(t, g.Flashes)
	assert.Equal(t, 2, g.Driver.Board().Occupied())

	g.Place(1, 1)
	assert.Equal(t, IDLE, g.State)
	g.Place(1, 1)
	assert.Equal(t, GAME_OVER, g.State)
	assert.Equal(t, model.PlayerId(1), g.Winner)

	c = canvas{}
	g.Draw(c)
	assert.Equal(t, "player 1 wins!", c.text(1, 7, 14))
}

func TestGameStateName(t *testing.T) {
	assert.Equal(t, "ACTING", ACTING.Name())
	assert.Equal(t, "N/A(0)", GameState(0).Name())
}

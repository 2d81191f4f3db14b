package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/chainreaction/anim"
	"github.com/zucenko/chainreaction/audio"
	"github.com/zucenko/chainreaction/engine"
	"github.com/zucenko/chainreaction/model"
)

const FLASH_DURATION = float32(0.5)

type GameState int

const (
	IDLE GameState = iota + 1
	ACTING
	GAME_OVER
)

func (s GameState) Name() string {
	switch s {
	case IDLE:
		return "IDLE"
	case ACTING:
		return "ACTING"
	case GAME_OVER:
		return "GAME_OVER"
	default:
		return fmt.Sprintf("N/A(%d)", s)
	}
}

type Game struct {
	State            GameState
	Driver           *engine.Driver
	Players          int
	Player           model.PlayerId
	Moved            map[model.PlayerId]bool
	CursorX, CursorY int
	Flashes          map[engine.Pos]float32
	Tweens           *anim.Runner
	Audio            audio.Player
	Winner           model.PlayerId
	Message          string

	mouseDown bool
}

func NewGame(driver *engine.Driver, players int, player audio.Player) *Game {
	if player == nil {
		player = audio.Silent{}
	}
	return &Game{
		State:   IDLE,
		Driver:  driver,
		Players: players,
		Player:  1,
		Moved:   make(map[model.PlayerId]bool),
		Flashes: make(map[engine.Pos]float32),
		Tweens:  anim.NewRunner(),
		Audio:   player,
	}
}

// Place puts a marker for the selected player; the selection then moves on
// to the next player.
func (g *Game) Place(x, y int) {
	if g.State != IDLE {
		return
	}
	report, err := g.Driver.Place(g.Player, x, y)
	if err != nil {
		g.Message = err.Error()
		return
	}
	g.Message = ""
	g.Moved[g.Player] = true
	g.react(report)
	g.Player = g.Player%model.PlayerId(g.Players) + 1
}

// Update runs one animation tick.
func (g *Game) Update() {
	g.react(g.Driver.Tick())
	g.Tweens.Update(g.Driver.Board().Step())
}

func (g *Game) react(report engine.Report) {
	batches := make(map[engine.Pos]int)
	for _, p := range report.Spawned {
		x, y := p.Origin()
		batches[engine.Pos{X: x, Y: y}]++
	}
	for pos, n := range batches {
		g.flash(pos)
		g.Audio.Explode(n)
	}

	if !g.Driver.Settled() {
		g.State = ACTING
		return
	}
	g.State = IDLE
	if len(g.Moved) < g.Players {
		return
	}
	if winner, ok := g.Driver.Winner(); ok {
		log.Infof("player %d wins", winner)
		g.Winner = winner
		g.State = GAME_OVER
	}
}

func (g *Game) flash(pos engine.Pos) {
	g.Flashes[pos] = 1
	g.Tweens.Fade(FLASH_DURATION, func(v float32) {
		g.Flashes[pos] = v
	}).AddOnFinish(func() {
		delete(g.Flashes, pos)
	})
}

// Handle reacts to one terminal event and reports whether to quit.
func (g *Game) Handle(ev tcell.Event) bool {
	side := g.Driver.Board().Side()
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyUp:
			g.moveCursor(0, -1, side)
		case tcell.KeyDown:
			g.moveCursor(0, 1, side)
		case tcell.KeyLeft:
			g.moveCursor(-1, 0, side)
		case tcell.KeyRight:
			g.moveCursor(1, 0, side)
		case tcell.KeyEnter:
			g.Place(g.CursorX, g.CursorY)
		case tcell.KeyRune:
			r := ev.Rune()
			switch {
			case r == 'q':
				return true
			case r == ' ':
				g.Place(g.CursorX, g.CursorY)
			case r >= '1' && r <= '9' && int(r-'0') <= g.Players:
				g.Player = model.PlayerId(r - '0')
			}
		}
	case *tcell.EventMouse:
		pressed := ev.Buttons()&tcell.Button1 != 0
		click := pressed && !g.mouseDown
		g.mouseDown = pressed
		if !click {
			return false
		}
		if x, y, ok := cellAt(ev.Position()); ok && g.Driver.Board().Inside(x, y) {
			g.CursorX, g.CursorY = x, y
			g.Place(x, y)
		}
	}
	return false
}

func (g *Game) moveCursor(dx, dy, side int) {
	g.CursorX = (g.CursorX + dx + side) % side
	g.CursorY = (g.CursorY + dy + side) % side
}

package main

import (
	"fmt"
	"image/color"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
	"github.com/hajimehoshi/ebiten/inpututil"
	"github.com/hajimehoshi/ebiten/text"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/chainreaction/anim"
	"github.com/zucenko/chainreaction/audio"
	"github.com/zucenko/chainreaction/engine"
	"github.com/zucenko/chainreaction/model"
	"github.com/zucenko/chainreaction/viewmodel"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	FRAME_DT     = float32(1) / 60
	POP_DURATION = float32(0.4)
	TILE_SIZE    = 48
	TILE_BORDER  = 12
	DOT_SIZE     = 32
	LABEL_W      = 600
	LABEL_H      = 40
)

func HexToF32(u uint32, id int) GameColor {
	b := float64(0xff&u) / 255
	g := float64(0xff&(u>>8)) / 255
	r := float64(0xff&(u>>16)) / 255
	return GameColor{r, g, b, id}
}

type GameColor struct {
	r  float64
	g  float64
	b  float64
	id int
}

var COLOR_NONE = HexToF32(0x000000, 0)
var COLOR_STONE = HexToF32(0x444444, 7)

var COLORS = []GameColor{
	HexToF32(0xfa3636, 1),
	HexToF32(0xedbc1e, 2),
	HexToF32(0x0abd38, 3),
	HexToF32(0x34fbf6, 4),
	HexToF32(0x321ecc, 5),
	HexToF32(0xcb18dd, 6),
}

func PlayerColor(id model.PlayerId) GameColor {
	if id < 1 {
		return COLOR_STONE
	}
	return COLORS[int(id-1)%len(COLORS)]
}

// dot centres relative to the cell centre, in cell units
var DOT_OFFSETS = [][][2]float64{
	{},
	{{0, 0}},
	{{-.18, 0}, {.18, 0}},
	{{0, -.17}, {-.18, .13}, {.18, .13}},
}

type GameState int

const (
	IDLE GameState = iota + 1
	GAME_OVER
	DISCONNECTED
)

func (s GameState) Name() string {
	switch s {
	case IDLE:
		return "IDLE"
	case GAME_OVER:
		return "GAME_OVER"
	case DISCONNECTED:
		return "DISCONNECTED"
	default:
		return fmt.Sprintf("N/A(%d)", s)
	}
}

type Game struct {
	State   GameState
	View    *viewmodel.View
	Layout  viewmodel.Layout
	Conn    *Conn
	Tweens  *anim.Runner
	Pops    map[engine.Pos]float32
	Audio   audio.Player
	strokes map[*viewmodel.Stroke]struct{}

	frame     *Nine
	tile      *Nine
	dot       *ebiten.Image
	font      font.Face
	label     *ebiten.Image
	labelText string
}

func NewGame(conn *Conn, view *viewmodel.View, player audio.Player) (*Game, error) {
	if player == nil {
		player = audio.Silent{}
	}
	tt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}
	tileImage, err := ebiten.NewImageFromImage(roundedTile(TILE_SIZE, TILE_BORDER), ebiten.FilterLinear)
	if err != nil {
		return nil, err
	}
	dot, err := ebiten.NewImageFromImage(disc(DOT_SIZE), ebiten.FilterLinear)
	if err != nil {
		return nil, err
	}
	frame := NewNine(tileImage, TILE_BORDER, .5)
	frame.SetColor(COLOR_NONE, 1)
	return &Game{
		State:   IDLE,
		View:    view,
		Layout:  viewmodel.NewLayout(view.Side),
		Conn:    conn,
		Tweens:  anim.NewRunner(),
		Pops:    make(map[engine.Pos]float32),
		Audio:   player,
		strokes: map[*viewmodel.Stroke]struct{}{},
		frame:   frame,
		tile:    NewNine(tileImage, TILE_BORDER, .25),
		dot:     dot,
		font: truetype.NewFace(tt, &truetype.Options{
			Size:       20,
			DPI:        72,
			SubPixelsX: 100,
			Hinting:    font.HintingFull,
		}),
	}, nil
}

// drain applies every frame that arrived since the previous update.
func (g *Game) drain() {
	for {
		select {
		case m := <-g.Conn.Incoming:
			g.apply(m)
		case err, ok := <-g.Conn.Lost:
			if ok && g.State == IDLE {
				log.Warnf("connection lost: %v", err)
				g.State = DISCONNECTED
			}
			g.Conn.Lost = nil
		default:
			return
		}
	}
}

func (g *Game) apply(m model.ServerMessage) {
	for _, c := range g.View.Apply(m) {
		if c.Dots != 0 {
			g.pop(engine.Pos{X: c.Col, Y: c.Row})
		}
	}
	if len(m.Particles) > 0 {
		g.Audio.Explode(len(m.Particles))
	}
	if g.View.Over {
		g.State = GAME_OVER
	}
}

func (g *Game) pop(pos engine.Pos) {
	g.Tweens.Pop(POP_DURATION, func(v float32) {
		g.Pops[pos] = v
	}).AddOnFinish(func() {
		delete(g.Pops, pos)
	})
}

func (g *Game) updateStroke(stroke *viewmodel.Stroke) {
	stroke.Update(g.Layout.Cell / 2)
	px, py, ok := stroke.Tap()
	if !ok || g.State != IDLE {
		return
	}
	x, y, ok := g.Layout.CellAt(px, py)
	if !ok {
		return
	}
	log.Debugf("placing at %d,%d", x, y)
	if err := g.Conn.Send(x, y); err != nil {
		log.Warnf("send: %v", err)
		g.State = DISCONNECTED
	}
}

func (g *Game) update(screen *ebiten.Image) error {
	g.drain()
	g.View.Advance()
	g.Tweens.Update(FRAME_DT)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.strokes[viewmodel.NewStroke(&MouseStrokeSource{})] = struct{}{}
	}
	for _, id := range inpututil.JustPressedTouchIDs() {
		g.strokes[viewmodel.NewStroke(&TouchStrokeSource{id})] = struct{}{}
	}
	for s := range g.strokes {
		g.updateStroke(s)
		if s.IsReleased() {
			delete(g.strokes, s)
		}
	}

	if ebiten.IsDrawingSkipped() {
		return nil
	}
	g.draw(screen)
	return nil
}

func (g *Game) draw(screen *ebiten.Image) {
	if err := screen.Fill(color.RGBA{70, 70, 70, 255}); err != nil {
		log.Printf("%v", err)
	}

	bx, by, side := g.Layout.BoardRect()
	g.frame.SetRect(bx-6, by-6, side+12, side+12)
	g.frame.Draw(screen)

	for y := 0; y < g.View.Side; y++ {
		for x := 0; x < g.View.Side; x++ {
			c, _ := g.View.Cell(x, y)
			g.drawCell(screen, c)
		}
	}
	for _, p := range g.View.Particles {
		cx, cy := g.Layout.Center(p.X, p.Y)
		g.drawDot(screen, cx, cy, float64(g.Layout.Cell)*.18, PlayerColor(p.Owner), 1)
	}

	g.drawLabel(screen)
	ebitenutil.DebugPrintAt(screen, g.State.Name(), 0, 0)
}

func (g *Game) drawCell(screen *ebiten.Image, c model.CellInfo) {
	px, py := g.Layout.CellOrigin(c.Col, c.Row)
	if c.Dots == 0 {
		g.tile.SetColor(COLOR_STONE, 1)
	} else {
		g.tile.SetColor(PlayerColor(c.Owner), .35)
	}
	g.tile.SetRect(px+3, py+3, g.Layout.Cell-6, g.Layout.Cell-6)
	g.tile.Draw(screen)

	if int(c.Dots) >= len(DOT_OFFSETS) {
		return
	}
	scale := float64(1)
	if v, ok := g.Pops[engine.Pos{X: c.Col, Y: c.Row}]; ok {
		scale = float64(v)
	}
	cx, cy := g.Layout.Center(float32(c.Col), float32(c.Row))
	cell := float64(g.Layout.Cell)
	for _, off := range DOT_OFFSETS[c.Dots] {
		g.drawDot(screen, cx+off[0]*cell*scale, cy+off[1]*cell*scale, cell*.26*scale, PlayerColor(c.Owner), 1)
	}
}

func (g *Game) drawDot(screen *ebiten.Image, cx, cy, size float64, c GameColor, alpha float64) {
	w, _ := g.dot.Size()
	s := size / float64(w)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(cx-size/2, cy-size/2)
	op.ColorM.Scale(c.r, c.g, c.b, alpha)
	_ = screen.DrawImage(g.dot, op)
}

func (g *Game) status() string {
	switch {
	case g.State == DISCONNECTED:
		return "connection lost"
	case g.View.Over && g.View.Winner == g.View.PlayerKey:
		return "you win"
	case g.View.Over:
		return fmt.Sprintf("player %d wins", g.View.Winner)
	case g.View.Notice != "":
		return fmt.Sprintf("player %d  %s", g.View.PlayerKey, g.View.Notice)
	default:
		return fmt.Sprintf("player %d", g.View.PlayerKey)
	}
}

func (g *Game) drawLabel(screen *ebiten.Image) {
	if s := g.status(); g.label == nil || s != g.labelText {
		g.label = g.prepareTextImage(s)
		g.labelText = s
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(g.Layout.Margin), float64(g.Layout.Margin))
	c := PlayerColor(g.View.PlayerKey)
	op.ColorM.Scale(c.r, c.g, c.b, 1)
	_ = screen.DrawImage(g.label, op)
}

func (g *Game) prepareTextImage(s string) *ebiten.Image {
	image, _ := ebiten.NewImage(LABEL_W, LABEL_H, ebiten.FilterLinear)
	text.Draw(image, s, g.font, 0, 28, color.White)
	return image
}

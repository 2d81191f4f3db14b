package viewmodel

import (
	"fmt"

	"github.com/zucenko/chainreaction/model"
)

// View is a client side mirror of one game, fed by server messages.
type View struct {
	Side      int
	Step      float32
	PlayerKey model.PlayerId
	Players   []model.PlayerId
	Cells     []model.CellInfo
	Particles []*model.Particle
	Winner    model.PlayerId
	Over      bool
	Notice    string
}

func (v *View) Ready() bool {
	return v.Side > 0
}

// Apply folds one server message into the view and returns the cells whose
// dots or owner changed.
func (v *View) Apply(m model.ServerMessage) []model.CellInfo {
	for _, setup := range m.Setup {
		v.Side = setup.Side
		v.Step = setup.Step
		v.PlayerKey = setup.PlayerKey
		v.Players = setup.Players
		v.Cells = make([]model.CellInfo, setup.Side*setup.Side)
		for i := range v.Cells {
			v.Cells[i] = model.CellInfo{Col: i % setup.Side, Row: i / setup.Side}
		}
		v.Particles = nil
		v.Over = false
		v.Notice = ""
	}
	if !v.Ready() {
		return nil
	}

	changed := make([]model.CellInfo, 0)
	for _, info := range m.Cells {
		if info.Col < 0 || info.Col >= v.Side || info.Row < 0 || info.Row >= v.Side {
			continue
		}
		i := info.Col + info.Row*v.Side
		if v.Cells[i] != info {
			changed = append(changed, info)
		}
		v.Cells[i] = info
	}
	for _, pi := range m.Particles {
		v.Particles = append(v.Particles, pi.Spawn(v.Step))
	}
	for _, r := range m.Rejected {
		v.Notice = fmt.Sprintf("(%d,%d): %s", r.Col, r.Row, r.Reason)
	}
	for _, w := range m.Winner {
		v.Winner = w
		v.Over = true
	}
	return changed
}

// Advance moves every particle one frame and drops the ones that arrived.
func (v *View) Advance() int {
	remaining := v.Particles[:0]
	arrived := 0
	for _, p := range v.Particles {
		if p.Advance() {
			arrived++
		} else {
			remaining = append(remaining, p)
		}
	}
	v.Particles = remaining
	return arrived
}

func (v *View) Cell(x, y int) (model.CellInfo, bool) {
	if !v.Ready() || x < 0 || x >= v.Side || y < 0 || y >= v.Side {
		return model.CellInfo{}, false
	}
	return v.Cells[x+y*v.Side], true
}

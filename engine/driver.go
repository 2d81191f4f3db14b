package engine

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/chainreaction/model"
)

var (
	ErrBusy       = errors.New("particles in flight")
	ErrNotSettled = errors.New("board did not settle")
)

type Pos struct {
	X, Y int
}

// Report lists what one placement or one tick changed.
type Report struct {
	Touched []Pos
	Spawned []*model.Particle
	Landed  []*model.Particle
}

func (r Report) Empty() bool {
	return len(r.Touched) == 0 && len(r.Spawned) == 0 && len(r.Landed) == 0
}

// Driver runs chain reactions on a board. Particles spawned by an explosion
// wait in a worklist and are advanced once per Tick; a particle landing on
// its destination places for its owner there, which may spawn the next
// generation.
type Driver struct {
	board    *model.Board
	inFlight []*model.Particle
	ticks    int
	log      *log.Entry
}

func NewDriver(board *model.Board) *Driver {
	return &Driver{
		board:    board,
		inFlight: make([]*model.Particle, 0),
		log:      log.WithField("component", "driver"),
	}
}

func (d *Driver) Board() *model.Board {
	return d.board
}

func (d *Driver) Settled() bool {
	return len(d.inFlight) == 0
}

func (d *Driver) InFlight() []*model.Particle {
	return d.inFlight
}

// Place is an external placement. It is refused while a cascade is running.
func (d *Driver) Place(owner model.PlayerId, x, y int) (Report, error) {
	if !d.Settled() {
		return Report{}, fmt.Errorf("place (%d,%d): %w", x, y, ErrBusy)
	}
	report := Report{}
	if err := d.put(owner, x, y, &report); err != nil {
		return Report{}, err
	}
	d.log.WithFields(log.Fields{
		"player":  owner,
		"x":       x,
		"y":       y,
		"spawned": len(report.Spawned),
	}).Debug("placed")
	return report, nil
}

// Tick advances every particle in flight once. Particles whose Advance first
// reports completion are removed and land on their destination in worklist order.
func (d *Driver) Tick() Report {
	report := Report{}
	if d.Settled() {
		return report
	}
	d.ticks++
	remaining := make([]*model.Particle, 0, len(d.inFlight))
	landed := make([]*model.Particle, 0)
	for _, p := range d.inFlight {
		if p.Advance() {
			landed = append(landed, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	d.inFlight = remaining
	for _, p := range landed {
		x, y := p.Destination()
		if err := d.put(p.Owner, x, y, &report); err != nil {
			ox, oy := p.Origin()
			d.log.Errorf("landing of %s particle from (%d,%d) failed: %v", p.Direction.Name(), ox, oy, err)
			continue
		}
		report.Landed = append(report.Landed, p)
	}
	if len(landed) > 0 {
		d.log.WithFields(log.Fields{
			"tick":     d.ticks,
			"landed":   len(landed),
			"spawned":  len(report.Spawned),
			"inFlight": len(d.inFlight),
		}).Debug("tick")
	}
	return report
}

// Settle ticks until no particle is in flight, for headless play.
func (d *Driver) Settle(maxTicks int) (int, error) {
	ticks := 0
	for !d.Settled() {
		if ticks >= maxTicks {
			return ticks, fmt.Errorf("%w after %d ticks, %d in flight", ErrNotSettled, ticks, len(d.inFlight))
		}
		d.Tick()
		ticks++
	}
	return ticks, nil
}

// Winner reports the board winner once the board has settled.
func (d *Driver) Winner() (model.PlayerId, bool) {
	if !d.Settled() {
		return 0, false
	}
	return d.board.Winner()
}

func (d *Driver) put(owner model.PlayerId, x, y int, report *Report) error {
	spawned, err := d.board.Put(owner, x, y)
	if err != nil {
		return err
	}
	report.Touched = append(report.Touched, Pos{X: x, Y: y})
	if len(spawned) > 0 {
		d.inFlight = append(d.inFlight, spawned...)
		report.Spawned = append(report.Spawned, spawned...)
	}
	return nil
}

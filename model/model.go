package model

import (
	"errors"
	"fmt"
)

const (
	DEFAULT_SIDE = 5
	DEFAULT_STEP = float32(0.02)
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidSide     = errors.New("invalid board side")
	ErrInvalidStep     = errors.New("invalid particle step")
)

type PlayerId int32

// Dots is the fill level of an occupied cell. The zero value marks an empty cell.
type Dots int

const (
	ONE Dots = iota + 1
	TWO
	THREE
)

// Promote returns the level after one more marker. overflow is set when the
// cell was already at THREE and has to explode.
func (d Dots) Promote() (next Dots, overflow bool) {
	switch d {
	case ONE:
		return TWO, false
	case TWO:
		return THREE, false
	case THREE:
		return 0, true
	default:
		panic(fmt.Sprintf("promote of invalid dots %d", d))
	}
}

func (d Dots) Name() string {
	switch d {
	case 0:
		return "NONE"
	case ONE:
		return "ONE"
	case TWO:
		return "TWO"
	case THREE:
		return "THREE"
	default:
		return fmt.Sprintf("N/A(%d)", int(d))
	}
}

type StaticCell struct {
	Owner PlayerId
	Value Dots
}

func (c StaticCell) Empty() bool {
	return c.Value == 0
}

type Direction int

const (
	UP Direction = iota
	RIGHT
	DOWN
	LEFT
)

var DIRECTIONS = [4]Direction{UP, RIGHT, DOWN, LEFT}

// Offset is the unit step of the direction in board coordinates, y grows downwards.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case UP:
		return 0, -1
	case RIGHT:
		return 1, 0
	case DOWN:
		return 0, 1
	case LEFT:
		return -1, 0
	default:
		panic(fmt.Sprintf("offset of invalid direction %d", d))
	}
}

func (d Direction) Name() string {
	switch d {
	case UP:
		return "UP"
	case RIGHT:
		return "RIGHT"
	case DOWN:
		return "DOWN"
	case LEFT:
		return "LEFT"
	default:
		return fmt.Sprintf("N/A(%d)", int(d))
	}
}

// EmptyRule decides what a placement on an empty position does.
type EmptyRule int

const (
	// EMPTY_IGNORE leaves empty positions untouched, placement only promotes.
	EMPTY_IGNORE EmptyRule = iota
	// EMPTY_CLAIM creates a cell with ONE dot owned by the placing player.
	EMPTY_CLAIM
)

func (r EmptyRule) Name() string {
	switch r {
	case EMPTY_IGNORE:
		return "ignore"
	case EMPTY_CLAIM:
		return "claim"
	default:
		return fmt.Sprintf("n/a:%d", int(r))
	}
}

func ParseEmptyRule(s string) (EmptyRule, error) {
	switch s {
	case "ignore":
		return EMPTY_IGNORE, nil
	case "claim":
		return EMPTY_CLAIM, nil
	}
	return 0, fmt.Errorf("unknown empty rule %q", s)
}

type Board struct {
	side      int
	step      float32
	emptyRule EmptyRule
	cells     []StaticCell
}

type Option func(b *Board) error

func WithStep(step float32) Option {
	return func(b *Board) error {
		if step <= 0 || step > 1 {
			return fmt.Errorf("%w: %v", ErrInvalidStep, step)
		}
		b.step = step
		return nil
	}
}

func WithEmptyRule(rule EmptyRule) Option {
	return func(b *Board) error {
		b.emptyRule = rule
		return nil
	}
}

// Particle is one explosion fragment travelling from its origin cell towards
// a neighbour. Position is derived from the number of advances taken.
type Particle struct {
	Owner     PlayerId
	X, Y      float32
	Direction Direction

	originX, originY int
	steps            int
	stepsToComplete  int
	step             float32
}

package viewmodel

import "math"

// StrokeSource represents a input device to provide strokes.
type StrokeSource interface {
	Position() (int, int)
	IsJustReleased() bool
}

// Stroke tracks one press from the moment it starts until release.
type Stroke struct {
	source StrokeSource

	initX int
	initY int

	currentX int
	currentY int

	released bool
	// moved too far to count as a tap
	dragged bool
}

func NewStroke(source StrokeSource) *Stroke {
	cx, cy := source.Position()
	return &Stroke{
		source:   source,
		initX:    cx,
		initY:    cy,
		currentX: cx,
		currentY: cy,
	}
}

// Update polls the source; tolerance is how far the pointer may wander
// before the stroke stops being a tap.
func (s *Stroke) Update(tolerance int) {
	if s.released {
		return
	}
	if s.source.IsJustReleased() {
		s.released = true
		return
	}
	s.currentX, s.currentY = s.source.Position()
	dx, dy := s.PositionDiff()
	if math.Abs(float64(dx)) > float64(tolerance) || math.Abs(float64(dy)) > float64(tolerance) {
		s.dragged = true
	}
}

func (s *Stroke) IsReleased() bool {
	return s.released
}

// Tap reports a released stroke that stayed in place, and where it started.
func (s *Stroke) Tap() (x, y int, ok bool) {
	if !s.released || s.dragged {
		return 0, 0, false
	}
	return s.initX, s.initY, true
}

func (s *Stroke) Position() (int, int) {
	return s.currentX, s.currentY
}

func (s *Stroke) PositionDiff() (int, int) {
	return s.currentX - s.initX, s.currentY - s.initY
}

package anim

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Action is what happens while a tween runs and after it finishes.
type Action struct {
	nexts    []func(r *Runner)
	onChange func(float32)
	onFinish []func()
}

func (a *Action) AddOnFinish(f func()) *Action {
	if a.onFinish == nil {
		a.onFinish = make([]func(), 0)
	}
	a.onFinish = append(a.onFinish, f)
	return a
}

// Next queues t to start once this action's tween finishes.
func (a *Action) Next(t *gween.Tween, onChange func(float32)) *Action {
	action := &Action{onChange: onChange}
	if a.nexts == nil {
		a.nexts = make([]func(r *Runner), 0)
	}
	a.nexts = append(a.nexts,
		func(r *Runner) {
			r.tweens[t] = action
		})
	return action
}

type Runner struct {
	tweens map[*gween.Tween]*Action
}

func NewRunner() *Runner {
	return &Runner{tweens: make(map[*gween.Tween]*Action)}
}

func (r *Runner) Add(t *gween.Tween, onChange func(float32)) *Action {
	action := &Action{onChange: onChange}
	r.tweens[t] = action
	return action
}

// Fade runs a linear tween from 1 to 0 over duration.
func (r *Runner) Fade(duration float32, onChange func(float32)) *Action {
	return r.Add(gween.New(1, 0, duration, ease.Linear), onChange)
}

// Pop runs a bounce from 1.4 back to 1 over duration.
func (r *Runner) Pop(duration float32, onChange func(float32)) *Action {
	return r.Add(gween.New(1.4, 1, duration, ease.OutBounce), onChange)
}

func (r *Runner) Len() int {
	return len(r.tweens)
}

// Update advances every running tween by dt.
func (r *Runner) Update(dt float32) {
	finished := make([]*Action, 0)
	for t, a := range r.tweens {
		curr, done := t.Update(dt)
		if a.onChange != nil {
			a.onChange(curr)
		}
		if done {
			finished = append(finished, a)
			delete(r.tweens, t)
		}
	}
	for _, a := range finished {
		for _, onFinish := range a.onFinish {
			onFinish()
		}
		for _, next := range a.nexts {
			next(r)
		}
	}
}

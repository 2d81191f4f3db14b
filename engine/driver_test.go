package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/chainreaction/model"
)

func layoutDriver(t *testing.T, layout string, opts ...model.Option) *Driver {
	b, err := model.ReadBoard(strings.NewReader(layout), opts...)
	require.NoError(t, err)
	return NewDriver(b)
}

func TestPlaceWithoutExplosion(t *testing.T) {
	b, err := model.NewBoard(5, model.WithEmptyRule(model.EMPTY_CLAIM))
	require.NoError(t, err)
	d := NewDriver(b)

	report, err := d.Place(1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []Pos{{X: 2, Y: 2}}, report.Touched)
	assert.Empty(t, report.Spawned)
	assert.True(t, d.Settled())

	winner, ok := d.Winner()
	assert.True(t, ok)
	assert.Equal(t, model.PlayerId(1), winner)
}

func TestExplosionLandsAfterParticleCompletes(t *testing.T) {
	d := layoutDriver(t, `.. .. .. .. ..
.. .. .. .. ..
.. .. 13 .. ..
.. .. .. .. ..
.. .. .. .. ..
`, model.WithEmptyRule(model.EMPTY_CLAIM))

	report, err := d.Place(1, 2, 2)
	require.NoError(t, err)
	assert.Len(t, report.Spawned, 4)
	assert.Len(t, d.InFlight(), 4)

	_, ok := d.Winner()
	assert.False(t, ok, "no winner while particles fly")

	for i := 0; i < 50; i++ {
		r := d.Tick()
		require.Empty(t, r.Landed, "tick %d", i+1)
	}
	r := d.Tick()
	assert.Len(t, r.Landed, 4)
	assert.ElementsMatch(t, []Pos{{2, 1}, {3, 2}, {2, 3}, {1, 2}}, r.Touched)
	assert.True(t, d.Settled())

	assert.Equal(t, `.. .. .. .. ..
.. .. 11 .. ..
.. 11 .. 11 ..
.. .. 11 .. ..
.. .. .. .. ..
`, d.Board().String())
}

func TestPlaceRefusedWhileBusy(t *testing.T) {
	d := layoutDriver(t, "13 ..\n.. ..\n", model.WithEmptyRule(model.EMPTY_CLAIM))
	_, err := d.Place(2, 0, 0)
	require.NoError(t, err)

	_, err = d.Place(1, 1, 1)
	assert.True(t, errors.Is(err, ErrBusy))
	c, _ := d.Board().Get(1, 1)
	assert.True(t, c.Empty())
}

func TestCascade(t *testing.T) {
	d := layoutDriver(t, `.. 13 ..
.. 13 ..
.. .. ..
`, model.WithEmptyRule(model.EMPTY_CLAIM), model.WithStep(1))

	report, err := d.Place(2, 1, 1)
	require.NoError(t, err)
	require.Len(t, report.Spawned, 4)

	assert.True(t, d.Tick().Empty())
	second := d.Tick()
	assert.Len(t, second.Landed, 4)
	assert.Len(t, second.Spawned, 3)
	for _, p := range second.Spawned {
		assert.Equal(t, model.PlayerId(2), p.Owner)
	}

	ticks, err := d.Settle(100)
	require.NoError(t, err)
	assert.Equal(t, 2, ticks)

	assert.Equal(t, `21 .. 21
21 21 21
.. 21 ..
`, d.Board().String())
	winner, ok := d.Winner()
	assert.True(t, ok)
	assert.Equal(t, model.PlayerId(2), winner)
}

func TestSettleBudget(t *testing.T) {
	d := layoutDriver(t, "13 ..\n.. ..\n", model.WithEmptyRule(model.EMPTY_CLAIM))
	_, err := d.Place(1, 0, 0)
	require.NoError(t, err)

	ticks, err := d.Settle(10)
	assert.True(t, errors.Is(err, ErrNotSettled))
	assert.Equal(t, 10, ticks)

	ticks, err = d.Settle(1000)
	require.NoError(t, err)
	assert.Equal(t, 41, ticks)
}

func TestParticlesVanishOnEmptyWithIgnoreRule(t *testing.T) {
	d := layoutDriver(t, "13 ..\n.. ..\n", model.WithStep(0.5))
	_, err := d.Place(1, 0, 0)
	require.NoError(t, err)

	_, err = d.Settle(10)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Board().Occupied())
	_, ok := d.Winner()
	assert.False(t, ok)
}

func TestTickOnSettledBoard(t *testing.T) {
	b, err := model.NewBoard(3)
	require.NoError(t, err)
	d := NewDriver(b)
	assert.True(t, d.Tick().Empty())
}

func TestPlaceOutOfRange(t *testing.T) {
	b, err := model.NewBoard(3)
	require.NoError(t, err)
	_, err = NewDriver(b).Place(1, 3, 0)
	assert.True(t, errors.Is(err, model.ErrIndexOutOfRange))
}

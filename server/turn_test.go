package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/chainreaction/engine"
	"github.com/zucenko/chainreaction/model"
	"github.com/zucenko/chainreaction/publish"
)

func playingSession(t *testing.T, layout string, players int) (*GameSession, *publish.Recorder) {
	board, err := model.ReadBoard(strings.NewReader(layout),
		model.WithEmptyRule(model.EMPTY_CLAIM), model.WithStep(1))
	require.NoError(t, err)
	keys := make([]model.PlayerId, 0, players)
	for i := 1; i <= players; i++ {
		keys = append(keys, model.PlayerId(i))
	}
	recorder := &publish.Recorder{}
	return &GameSession{
		Id:         4,
		State:      GS_PLAY,
		Driver:     engine.NewDriver(board),
		PlayerKeys: keys,
		Moved:      make(map[model.PlayerId]bool),
		Publisher:  recorder,
		done:       make(chan struct{}),
	}, recorder
}

func place(gs *GameSession, player model.PlayerId, col, row int) (*model.ServerMessage, *model.ServerMessage) {
	return gs.Place(PlayerEvent{Player: player, GameEvent: GameEvent{Col: col, Row: row}})
}

func TestPlaceBroadcastsCell(t *testing.T) {
	gs, recorder := playingSession(t, ".. ..\n.. ..\n", 2)

	toPlayer, toAll := place(gs, 1, 1, 0)
	assert.Nil(t, toPlayer)
	require.NotNil(t, toAll)
	assert.Equal(t, []model.CellInfo{{Col: 1, Row: 0, Owner: 1, Dots: model.ONE}}, toAll.Cells)
	assert.Empty(t, toAll.Particles)
	assert.Empty(t, toAll.Winner, "second player has not placed yet")
	assert.Equal(t, GS_PLAY, gs.State)

	assert.Equal(t, []publish.Event{
		{Type: publish.EVENT_PLACED, Session: 4, Player: 1, Col: 1, Row: 0},
	}, recorder.Events())
}

func TestPlaceRejections(t *testing.T) {
	gs, _ := playingSession(t, "13 ..\n.. ..\n", 2)

	toPlayer, toAll := place(gs, 1, 2, 0)
	assert.Nil(t, toAll)
	require.NotNil(t, toPlayer)
	assert.Equal(t, []model.Rejection{{Col: 2, Row: 0, Reason: REASON_OUT_OF_BOARD}}, toPlayer.Rejected)

	_, toAll = place(gs, 1, 0, 0)
	require.NotNil(t, toAll)
	assert.Len(t, toAll.Particles, 2)

	toPlayer, toAll = place(gs, 2, 1, 1)
	assert.Nil(t, toAll)
	assert.Equal(t, REASON_BUSY, toPlayer.Rejected[0].Reason)

	gs.State = GS_WAIT
	toPlayer, _ = place(gs, 2, 1, 1)
	assert.Equal(t, REASON_NOT_RUNNING, toPlayer.Rejected[0].Reason)
}

func TestTickLandsAndEndsGame(t *testing.T) {
	gs, recorder := playingSession(t, "13 ..\n.. 21\n", 2)
	gs.Moved[2] = true

	_, toAll := place(gs, 1, 0, 0)
	require.NotNil(t, toAll)
	assert.Equal(t, []model.CellInfo{{Col: 0, Row: 0}}, toAll.Cells)
	assert.ElementsMatch(t, []model.ParticleInfo{
		{Owner: 1, Col: 0, Row: 0, Direction: model.RIGHT},
		{Owner: 1, Col: 0, Row: 0, Direction: model.DOWN},
	}, toAll.Particles)
	assert.Empty(t, toAll.Winner, "player 2 still owns (1,1)")

	assert.Nil(t, gs.Tick(), "particles still travelling")
	landed := gs.Tick()
	require.NotNil(t, landed)
	assert.ElementsMatch(t, []model.CellInfo{
		{Col: 1, Row: 0, Owner: 1, Dots: model.ONE},
		{Col: 0, Row: 1, Owner: 1, Dots: model.ONE},
	}, landed.Cells)
	assert.Empty(t, landed.Winner)
	assert.Equal(t, GS_PLAY, gs.State)

	_, toAll = place(gs, 1, 1, 1)
	require.NotNil(t, toAll)
	assert.Equal(t, []model.PlayerId{1}, toAll.Winner)
	assert.Equal(t, GS_OVER, gs.State)
	assert.Nil(t, gs.Tick())

	events := recorder.Events()
	require.Len(t, events, 4)
	assert.Equal(t, publish.Event{Type: publish.EVENT_EXPLODED, Session: 4, Player: 1, Col: 0, Row: 0, Particles: 2}, events[1])
	assert.Equal(t, publish.Event{Type: publish.EVENT_WON, Session: 4, Player: 1}, events[3])

	gs.updateStatus()
	status := gs.Status()
	assert.Equal(t, "GS_OVER", status.State)
	require.NotNil(t, status.Winner)
	assert.Equal(t, model.PlayerId(1), *status.Winner)
	assert.Equal(t, 3, status.Occupied)
}

func TestCascadeMessageDeduplicatesCells(t *testing.T) {
	gs, _ := playingSession(t, `.. 13 ..
.. 13 ..
.. .. ..
`, 2)
	_, toAll := place(gs, 2, 1, 1)
	require.Len(t, toAll.Particles, 4)

	gs.Tick()
	second := gs.Tick()
	require.NotNil(t, second)
	assert.Len(t, second.Cells, 4)
	assert.Len(t, second.Particles, 3)

	gs.Tick()
	third := gs.Tick()
	require.NotNil(t, third)
	assert.Len(t, third.Cells, 3)
	assert.True(t, gs.Driver.Settled())
}

func TestFullBufferFailsSession(t *testing.T) {
	gs, _ := playingSession(t, ".. ..\n.. ..\n", 2)
	slow := &PlayerSession{Id: 1, State: PS_PLAY, GameSession: gs, MessagesToSend: make(chan model.ServerMessage, 1)}
	other := &PlayerSession{Id: 2, State: PS_PLAY, GameSession: gs, MessagesToSend: make(chan model.ServerMessage, 4)}
	gs.PlayerSessions = []*PlayerSession{slow, other}

	_, toAll := place(gs, 2, 0, 0)
	gs.broadcast(*toAll)
	assert.Equal(t, GS_PLAY, gs.State)

	_, toAll = place(gs, 2, 1, 0)
	gs.broadcast(*toAll)
	assert.Equal(t, GS_ERR, gs.State)
	assert.Equal(t, PS_ERR, slow.State)
	assert.Equal(t, PS_ERR_SEC, other.State)
	assert.Len(t, slow.MessagesToSend, 1)
	assert.Len(t, other.MessagesToSend, 1, "no frames after the session failed")

	gs.broadcast(model.ServerMessage{})
	assert.Len(t, other.MessagesToSend, 1)
}

func TestResponseCodeToHttp(t *testing.T) {
	assert.Equal(t, HTTP_SUCCESS, GAME_READY.ToHttp())
	assert.Equal(t, HTTP_NOT_FOUND, GAME_NOT_FOUND.ToHttp())
	assert.Equal(t, HTTP_BAD_REQUEST, GAME_INVALIDE.ToHttp())
	assert.Equal(t, "GS_WAIT", GS_WAIT.Name())
	assert.Equal(t, "n/a:9", GameSessionState(9).Name())
}

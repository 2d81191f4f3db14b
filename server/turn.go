package server

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/chainreaction/engine"
	"github.com/zucenko/chainreaction/model"
	"github.com/zucenko/chainreaction/publish"
)

// Place applies a placement event. Refusals go back to the placing player
// only, accepted placements are broadcast.
func (gs *GameSession) Place(pe PlayerEvent) (
	messageToPlayer *model.ServerMessage,
	messageToAll *model.ServerMessage) {
	col, row := pe.GameEvent.Col, pe.GameEvent.Row
	if gs.State != GS_PLAY {
		return reject(col, row, REASON_NOT_RUNNING), nil
	}
	report, err := gs.Driver.Place(pe.Player, col, row)
	switch {
	case errors.Is(err, engine.ErrBusy):
		return reject(col, row, REASON_BUSY), nil
	case errors.Is(err, model.ErrIndexOutOfRange):
		return reject(col, row, REASON_OUT_OF_BOARD), nil
	case err != nil:
		log.Errorf("GameSession %d place: %v", gs.Id, err)
		return reject(col, row, err.Error()), nil
	}
	gs.Moved[pe.Player] = true
	gs.publish(publish.Event{Type: publish.EVENT_PLACED, Player: pe.Player, Col: col, Row: row})
	gs.publishExplosions(report)

	messageToAll = gs.reportMessage(report)
	gs.checkOver(messageToAll)
	return nil, messageToAll
}

// Tick advances the particles in flight; nil when nothing landed.
func (gs *GameSession) Tick() *model.ServerMessage {
	if gs.State != GS_PLAY || gs.Driver.Settled() {
		return nil
	}
	report := gs.Driver.Tick()
	if report.Empty() {
		return nil
	}
	gs.publishExplosions(report)
	m := gs.reportMessage(report)
	gs.checkOver(m)
	return m
}

// checkOver ends the game once the board settled with a single owner and
// every player has placed at least once.
func (gs *GameSession) checkOver(m *model.ServerMessage) {
	if len(gs.Moved) < len(gs.PlayerKeys) {
		return
	}
	winner, ok := gs.Driver.Winner()
	if !ok {
		return
	}
	log.Infof("GameSession %d won by player %d", gs.Id, winner)
	m.Winner = []model.PlayerId{winner}
	gs.State = GS_OVER
	gs.publish(publish.Event{Type: publish.EVENT_WON, Player: winner})
}

func (gs *GameSession) reportMessage(report engine.Report) *model.ServerMessage {
	m := &model.ServerMessage{}
	board := gs.Driver.Board()
	seen := make(map[engine.Pos]bool)
	for _, pos := range report.Touched {
		if seen[pos] {
			continue
		}
		seen[pos] = true
		info, err := model.CellInfoAt(board, pos.X, pos.Y)
		if err != nil {
			log.Errorf("GameSession %d touched %v: %v", gs.Id, pos, err)
			continue
		}
		m.Cells = append(m.Cells, info)
	}
	for _, p := range report.Spawned {
		m.Particles = append(m.Particles, model.ParticleInfoOf(p))
	}
	return m
}

func (gs *GameSession) publishExplosions(report engine.Report) {
	batches := make(map[engine.Pos]int)
	order := make([]engine.Pos, 0)
	owners := make(map[engine.Pos]model.PlayerId)
	for _, p := range report.Spawned {
		x, y := p.Origin()
		pos := engine.Pos{X: x, Y: y}
		if _, ok := batches[pos]; !ok {
			order = append(order, pos)
		}
		batches[pos]++
		owners[pos] = p.Owner
	}
	for _, pos := range order {
		gs.publish(publish.Event{
			Type:      publish.EVENT_EXPLODED,
			Player:    owners[pos],
			Col:       pos.X,
			Row:       pos.Y,
			Particles: batches[pos],
		})
	}
}

func (gs *GameSession) publish(e publish.Event) {
	e.Session = gs.Id
	if err := gs.Publisher.Publish(e); err != nil {
		log.Warnf("GameSession %d publish %s: %v", gs.Id, e.Type, err)
	}
}

func reject(col, row int, reason string) *model.ServerMessage {
	return &model.ServerMessage{Rejected: []model.Rejection{{Col: col, Row: row, Reason: reason}}}
}

func (gs *GameSession) updateStatus() {
	players := make([]model.PlayerId, 0, len(gs.PlayerSessions))
	for _, ps := range gs.PlayerSessions {
		players = append(players, ps.Id)
	}
	status := SessionStatus{
		Id:       gs.Id,
		State:    gs.State.Name(),
		Players:  players,
		InFlight: len(gs.Driver.InFlight()),
		Occupied: gs.Driver.Board().Occupied(),
	}
	if gs.State == GS_OVER {
		if winner, ok := gs.Driver.Winner(); ok {
			status.Winner = &winner
		}
	}
	gs.mu.Lock()
	gs.status = status
	gs.mu.Unlock()
}

func (gs *GameSession) Status() SessionStatus {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.status
}

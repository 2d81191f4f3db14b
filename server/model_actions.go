package server

import (
	"encoding/gob"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/chainreaction/config"
	"github.com/zucenko/chainreaction/engine"
	"github.com/zucenko/chainreaction/model"
	"github.com/zucenko/chainreaction/publish"
)

const MESSAGES_BUFFER = 64

func NewGameServer(cfg *config.Config, publisher publish.Publisher) *GameServer {
	if publisher == nil {
		publisher = publish.Nop{}
	}
	return &GameServer{
		Config:         cfg,
		Publisher:      publisher,
		GameSessions:   make([]*GameSession, 0),
		GameRequests:   make(chan GameRequest),
		StatusRequests: make(chan StatusRequest),
		Releases:       make(chan *GameSession),
		Upgrader:       &websocket.Upgrader{},
	}
}

func (s *GameServer) HandleHttpCall() http.HandlerFunc {
	timeout := 200 * time.Millisecond
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("HandleHttpCall - Conection received")
		if !websocket.IsWebSocketUpgrade(r) {
			log.Warnf("HandleHttpCall not a websocket request from %s", r.RemoteAddr)
			w.WriteHeader(HTTP_BAD_REQUEST)
			return
		}

		gcas := make(chan GameContextAwaiting, 1)
		select {
		case s.GameRequests <- GameRequest{GameContextAwaiting: gcas}:
			log.Debug("HandleHttpCall -> GameServer.GameRequests")
		case <-time.After(timeout):
			log.Warn("GameRequests TIMEOUTED")
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}

		// find/create GameSession
		var gca GameContextAwaiting
		select {
		case gca = <-gcas:
			log.Debugf("HandleHttpCall GameContextAwaiting <- code:%d", gca.ResponseCode)
			switch gca.ResponseCode {
			case GAME_NOT_FOUND:
				fallthrough
			case GAME_INVALIDE:
				w.WriteHeader(gca.ResponseCode.ToHttp())
				return
			case GAME_READY:
			default:
				log.Errorf("gca.ResponseCode not expected:%v", gca.ResponseCode)
				w.WriteHeader(HTTP_SERVER_ERR)
				return
			}
		case <-time.After(timeout):
			log.Warnf("HandleHttpCall GameContextAwaiting <- TIMEOUTED")
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}

		con, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied to the client
			log.Warnf("HandleHttpCall websocket upgrade err %v", err)
			s.release(gca.GameSession)
			return
		}
		defer con.Close()

		// closed by the write loop once the last message went out
		gameOver := make(chan struct{})
		select {
		case gca.GameSession.PlayerConnectRequests <- PlayerConnectRequest{
			Con:      con,
			GameOver: gameOver}:
		case <-gca.GameSession.done:
			log.Warnf("HandleHttpCall session %d ended before join", gca.GameSession.Id)
			s.release(gca.GameSession)
			return
		case <-time.After(timeout):
			log.Warnf("HandleHttpCall PlayerConnectRequests TIMEOUTED")
			s.release(gca.GameSession)
			return
		}

		log.Debug("HandleHttpCall wait for gameover")
		<-gameOver
	}
}

func (s *GameServer) Loop() {
	log.Printf("GameServer.Loop starting")
	for {
		select {
		case gameReq := <-s.GameRequests:
			gs := s.joinable()
			if gs == nil {
				var err error
				gs, err = s.newSession()
				if err != nil {
					log.Errorf("GameServer.Loop cannot create session: %v", err)
					gameReq.GameContextAwaiting <- GameContextAwaiting{ResponseCode: GAME_INVALIDE}
					continue
				}
				go gs.Loop()
				s.GameSessions = append(s.GameSessions, gs)
			}
			gs.reserved++
			gameReq.GameContextAwaiting <- GameContextAwaiting{
				ResponseCode: GAME_READY,
				GameSession:  gs,
			}
		case statusReq := <-s.StatusRequests:
			statuses := make([]SessionStatus, 0, len(s.GameSessions))
			for _, gs := range s.GameSessions {
				statuses = append(statuses, gs.Status())
			}
			statusReq.Reply <- statuses
		case gs := <-s.Releases:
			if gs.reserved > 0 {
				gs.reserved--
			}
			log.Debugf("GameServer.Loop seat released in session %d, %d reserved", gs.Id, gs.reserved)
		}
	}
}

// release gives back a seat reserved for a connection that never joined.
func (s *GameServer) release(gs *GameSession) {
	select {
	case s.Releases <- gs:
	case <-time.After(200 * time.Millisecond):
		log.Warnf("GameServer.Releases TIMEOUTED for session %d", gs.Id)
	}
}

func (s *GameServer) joinable() *GameSession {
	for _, gs := range s.GameSessions {
		if gs.reserved < len(gs.PlayerKeys) {
			select {
			case <-gs.done:
				continue
			default:
				return gs
			}
		}
	}
	return nil
}

func (s *GameServer) newSession() (*GameSession, error) {
	board, err := s.Config.NewBoard()
	if err != nil {
		return nil, err
	}
	s.nextId++
	keys := make([]model.PlayerId, 0, s.Config.Players)
	for i := 1; i <= s.Config.Players; i++ {
		keys = append(keys, model.PlayerId(i))
	}
	log.Infof("create GameSession %d", s.nextId)
	gs := &GameSession{
		Id:                    s.nextId,
		State:                 GS_NEW,
		Driver:                engine.NewDriver(board),
		PlayerKeys:            keys,
		PlayerSessions:        make([]*PlayerSession, 0),
		Moved:                 make(map[model.PlayerId]bool),
		TickInterval:          s.Config.TickInterval,
		Publisher:             s.Publisher,
		Errors:                make(chan model.PlayerId),
		Events:                make(chan PlayerEvent, MESSAGES_BUFFER),
		PlayerConnectRequests: make(chan PlayerConnectRequest),
		done:                  make(chan struct{}),
	}
	gs.updateStatus()
	return gs, nil
}

func (gs *GameSession) Loop() {
	log.Infof("GameSession.Loop %d start", gs.Id)
	ticker := time.NewTicker(gs.TickInterval)
	defer ticker.Stop()
	for gs.State != GS_OVER && gs.State != GS_ERR {
		select {
		case pcr := <-gs.PlayerConnectRequests:
			if len(gs.PlayerSessions) >= len(gs.PlayerKeys) {
				log.Warnf("GameSession.Loop %d full, dropping connection", gs.Id)
				close(pcr.GameOver)
				continue
			}
			gs.addPlayer(pcr.Con, pcr.GameOver)
			if len(gs.PlayerSessions) < len(gs.PlayerKeys) {
				gs.State = GS_WAIT
			} else {
				gs.State = GS_PLAY
				for _, ps := range gs.PlayerSessions {
					ps.State = PS_PLAY
					gs.send(ps, ps.MakeGameSetupMessage())
				}
			}
		case errPlayer := <-gs.Errors:
			gs.fail(errPlayer)
		case pe := <-gs.Events:
			toPlayer, toAll := gs.Place(pe)
			for _, ps := range gs.PlayerSessions {
				if ps.Id == pe.Player && toPlayer != nil {
					gs.send(ps, *toPlayer)
				}
				if toAll != nil {
					gs.send(ps, *toAll)
				}
			}
		case <-ticker.C:
			if toAll := gs.Tick(); toAll != nil {
				gs.broadcast(*toAll)
			}
		}
		gs.updateStatus()
	}
	gs.finish()
}

// finish releases every connection; write loops drain what is queued and
// close their GameOver channel.
func (gs *GameSession) finish() {
	log.Infof("GameSession.Loop %d ended in %s", gs.Id, gs.State.Name())
	close(gs.done)
	for _, ps := range gs.PlayerSessions {
		if ps.State == PS_PLAY {
			ps.State = PS_OVER
		}
		close(ps.MessagesToSend)
	}
	gs.updateStatus()
}

// fail ends the session because one of its players can no longer follow it.
func (gs *GameSession) fail(errPlayer model.PlayerId) {
	if gs.State == GS_ERR {
		return
	}
	log.Warnf("killing GameSession %d, player %d failed", gs.Id, errPlayer)
	gs.State = GS_ERR
	for _, ps := range gs.PlayerSessions {
		if ps.Id == errPlayer {
			ps.State = PS_ERR
		} else {
			ps.State = PS_ERR_SEC
		}
	}
}

// send never blocks the session. Frames are deltas of the board, so a player
// whose buffer is full has lost the game state and fails the session.
func (gs *GameSession) send(ps *PlayerSession, m model.ServerMessage) {
	if gs.State == GS_ERR {
		return
	}
	select {
	case ps.MessagesToSend <- m:
	default:
		log.Warnf("GameSession %d player %d not reading, buffer full", gs.Id, ps.Id)
		gs.fail(ps.Id)
	}
}

func (gs *GameSession) broadcast(m model.ServerMessage) {
	for _, ps := range gs.PlayerSessions {
		gs.send(ps, m)
	}
}

func (gs *GameSession) addPlayer(
	conn *websocket.Conn,
	gameOver chan struct{},
) {
	playerId := gs.PlayerKeys[len(gs.PlayerSessions)]
	log.Printf("GameSession.addPlayer %d joins session %d", playerId, gs.Id)
	ps := &PlayerSession{
		State:          PS_NEW,
		Id:             playerId,
		GameSession:    gs,
		Conn:           conn,
		GameOver:       gameOver,
		MessagesToSend: make(chan model.ServerMessage, MESSAGES_BUFFER),
	}
	conn.SetPingHandler(
		func(message string) error {
			err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second))
			ps.DebugLastPing = time.Now()
			ps.DebugPings++
			if err == websocket.ErrCloseSent {
				return nil
			} else if e, ok := err.(net.Error); ok && e.Timeout() {
				return nil
			}
			return err
		})
	// start processing input from the player
	go ps.LoopChannelRead()
	// start sending from server
	go ps.LoopChannelWrite()
	gs.PlayerSessions = append(gs.PlayerSessions, ps)
}

func (ps *PlayerSession) reportError() {
	select {
	case ps.GameSession.Errors <- ps.Id:
	case <-ps.GameSession.done:
	}
}

func (ps *PlayerSession) LoopChannelRead() {
	log.Debugf("LoopChannelRead %d STARTED", ps.Id)
	for {
		_, r, err := ps.Conn.NextReader()
		if err != nil {
			select {
			case <-ps.GameSession.done:
				log.Debugf("LoopChannelRead %d closed after session end", ps.Id)
			default:
				log.Warnf("LoopChannelRead %d err reading message from Conn %v", ps.Id, err)
				ps.reportError()
			}
			break
		}
		cm := &model.ClientMessage{}
		if err := gob.NewDecoder(r).Decode(cm); err != nil {
			log.Warnf("LoopChannelRead %d cant decode: %v", ps.Id, err)
			ps.reportError()
			break
		}
		log.Debugf("LoopChannelRead %d received %+v", ps.Id, *cm)
		ps.DebugLastMessage = time.Now()
		ps.DebugInMessages++

		select {
		case ps.GameSession.Events <- PlayerEvent{
			Player:    ps.Id,
			GameEvent: GameEvent{Col: cm.Col, Row: cm.Row},
		}:
		case <-ps.GameSession.done:
			return
		default:
			log.Warnf("Dropping placement of player %d, GameSession.Events FULL", ps.Id)
		}
	}
	log.Debugf("LoopChannelRead %d ENDED", ps.Id)
}

func (ps *PlayerSession) MakeGameSetupMessage() model.ServerMessage {
	board := ps.GameSession.Driver.Board()
	return model.ServerMessage{
		Setup: []model.Setup{{
			Side:      board.Side(),
			Step:      board.Step(),
			PlayerKey: ps.Id,
			Players:   ps.GameSession.PlayerKeys,
		}},
		Cells: model.Snapshot(board),
	}
}

// LoopChannelWrite only consumes, so the session never blocks on a dead
// connection. It ends when the session closes MessagesToSend.
func (ps *PlayerSession) LoopChannelWrite() {
	log.Debugf("PlayerSession.LoopChannelWrite %d STARTED", ps.Id)
	failed := false
	for mes := range ps.MessagesToSend {
		if failed {
			continue
		}
		if err := ps.write(mes); err != nil {
			log.Warnf("PlayerSession.LoopChannelWrite %d: %v", ps.Id, err)
			failed = true
			ps.reportError()
			continue
		}
		ps.DebugOutMessages++
	}
	if !failed {
		_ = ps.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"),
			time.Now().Add(time.Second))
	}
	close(ps.GameOver)
	log.Debugf("LoopChannelWrite %d ENDED", ps.Id)
}

func (ps *PlayerSession) write(mes model.ServerMessage) error {
	w, err := ps.Conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(mes); err != nil {
		return err
	}
	return w.Close()
}

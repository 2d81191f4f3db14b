package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zucenko/chainreaction/config"
	"github.com/zucenko/chainreaction/engine"
	"github.com/zucenko/chainreaction/model"
	"github.com/zucenko/chainreaction/publish"
)

type GameServer struct {
	Config         *config.Config
	Publisher      publish.Publisher
	GameSessions   []*GameSession
	GameRequests   chan GameRequest
	StatusRequests chan StatusRequest
	Releases       chan *GameSession
	Upgrader       *websocket.Upgrader
	nextId         int
}

type GameSessionState int

const (
	GS_NEW GameSessionState = iota
	GS_WAIT
	GS_PLAY
	GS_ERR
	GS_OVER
)

type GameSession struct {
	Id                    int
	State                 GameSessionState
	Driver                *engine.Driver
	PlayerKeys            []model.PlayerId
	PlayerSessions        []*PlayerSession
	Moved                 map[model.PlayerId]bool
	TickInterval          time.Duration
	Publisher             publish.Publisher
	Errors                chan model.PlayerId
	Events                chan PlayerEvent
	PlayerConnectRequests chan PlayerConnectRequest

	// reserved is owned by GameServer.Loop
	reserved int
	done     chan struct{}
	mu       sync.Mutex
	status   SessionStatus
}

type PlayerSessionState int

const (
	PS_NEW PlayerSessionState = iota + 1
	PS_PLAY
	PS_OVER
	PS_ERR
	PS_ERR_SEC
)

type PlayerSession struct {
	State       PlayerSessionState
	Id          model.PlayerId
	GameSession *GameSession
	Conn        *websocket.Conn
	GameOver    chan struct{}

	MessagesToSend chan model.ServerMessage

	DebugInMessages  int
	DebugOutMessages int
	DebugLastMessage time.Time
	DebugLastPing    time.Time
	DebugPings       int
}

// SessionStatus is the public view of a session served by the status routes.
type SessionStatus struct {
	Id       int              `json:"id"`
	State    string           `json:"state"`
	Players  []model.PlayerId `json:"players"`
	InFlight int              `json:"inFlight"`
	Occupied int              `json:"occupied"`
	Winner   *model.PlayerId  `json:"winner,omitempty"`
}

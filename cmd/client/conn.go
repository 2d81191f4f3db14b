package main

import (
	"encoding/gob"
	"fmt"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/chainreaction/model"
)

const INCOMING_BUFFER = 64

// Conn is the player's websocket to the game server.
type Conn struct {
	ws       *websocket.Conn
	Incoming chan model.ServerMessage
	// receives the read error once, then closes
	Lost chan error
}

func Dial(addr string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Conn{
		ws:       ws,
		Incoming: make(chan model.ServerMessage, INCOMING_BUFFER),
		Lost:     make(chan error, 1),
	}, nil
}

// Receive blocks for the next frame.
func (c *Conn) Receive() (model.ServerMessage, error) {
	m := model.ServerMessage{}
	_, r, err := c.ws.NextReader()
	if err != nil {
		return m, err
	}
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return m, fmt.Errorf("decode: %w", err)
	}
	return m, nil
}

func (c *Conn) LoopRead() {
	log.Debug("Conn.LoopRead STARTED")
	for {
		m, err := c.Receive()
		if err != nil {
			log.Warnf("Conn.LoopRead: %v", err)
			c.Lost <- err
			close(c.Lost)
			return
		}
		c.Incoming <- m
	}
}

func (c *Conn) Send(col, row int) error {
	w, err := c.ws.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(model.ClientMessage{Col: col, Row: row}); err != nil {
		return err
	}
	return w.Close()
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

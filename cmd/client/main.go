package main

import (
	"flag"

	"github.com/hajimehoshi/ebiten"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/chainreaction/audio"
	"github.com/zucenko/chainreaction/config"
	"github.com/zucenko/chainreaction/viewmodel"
)

var addr = flag.String("addr", "ws://localhost:8080/play", "game server websocket url")

func main() {
	flag.Parse()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.Apply()

	conn, err := Dial(*addr)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()
	log.Infof("connected to %s, waiting for opponents", *addr)

	// the window size depends on the board, so wait for the setup frame
	view := &viewmodel.View{}
	for !view.Ready() {
		m, err := conn.Receive()
		if err != nil {
			log.Fatalf("waiting for setup: %v", err)
		}
		view.Apply(m)
	}
	log.Infof("playing as %d on a %dx%d board", view.PlayerKey, view.Side, view.Side)
	go conn.LoopRead()

	var player audio.Player = audio.Silent{}
	if cfg.Audio {
		speaker, err := audio.NewSpeaker()
		if err != nil {
			log.Warnf("audio disabled: %v", err)
		} else {
			defer speaker.Close()
			player = speaker
		}
	}

	game, err := NewGame(conn, view, player)
	if err != nil {
		log.Fatal(err)
	}
	w, h := game.Layout.Size()
	if err := ebiten.Run(game.update, w, h, 1, "Chain Reaction"); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/chainreaction/audio"
	"github.com/zucenko/chainreaction/config"
	"github.com/zucenko/chainreaction/engine"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.Apply()
	// the terminal belongs to the board, logs go to a file
	logFile, err := os.OpenFile("chainreaction-tui.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	board, err := cfg.NewBoard()
	if err != nil {
		log.Fatalf("board: %v", err)
	}

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

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("screen init: %v", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	game := NewGame(engine.NewDriver(board), cfg.Players, player)
	run(screen, game, cfg.TickInterval)
}

func run(screen tcell.Screen, game *Game, interval time.Duration) {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case ev := <-events:
			if _, ok := ev.(*tcell.EventResize); ok {
				screen.Sync()
			} else if game.Handle(ev) {
				return
			}
		case <-ticker.C:
			game.Update()
		}
		screen.Clear()
		game.Draw(screen)
		screen.Show()
	}
}

package main

import (
	"net/http"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/chainreaction/config"
	"github.com/zucenko/chainreaction/publish"
	"github.com/zucenko/chainreaction/server"
)

type Server struct {
	router     *way.Router
	GameServer *server.GameServer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.Apply()

	var publisher publish.Publisher = publish.Nop{}
	if cfg.MQTTBroker != "" {
		mqttPublisher, err := publish.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClient, cfg.MQTTTopic)
		if err != nil {
			log.Fatalf("mqtt: %v", err)
		}
		publisher = mqttPublisher
	}

	Server := Server{
		GameServer: server.NewGameServer(cfg, publisher),
	}
	go Server.GameServer.Loop()
	Server.routes()
	log.Infof("Listening on port %s, board %dx%d, %d players, empty rule %s",
		cfg.Port, cfg.Side, cfg.Side, cfg.Players, cfg.EmptyRule.Name())
	err = serve(func() error {
		return http.ListenAndServe(":"+cfg.Port, Server.router)
	}, publisher)
	log.Fatalln(err)
}

// serve runs listen and closes the publisher once it returns.
func serve(listen func() error, publisher publish.Publisher) error {
	defer publisher.Close()
	return listen()
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/chainreaction/model"
)

// env var constants
const (
	PORT              = "PORT"
	BOARD_SIDE        = "BOARD_SIDE"
	PARTICLE_STEP     = "PARTICLE_STEP"
	TICK_INTERVAL     = "TICK_INTERVAL"
	EMPTY_RULE        = "EMPTY_RULE"
	PLAYERS           = "PLAYERS"
	BOARD_FILE        = "BOARD_FILE"
	LOG_LEVEL         = "LOG_LEVEL"
	MQTT_BROKER       = "MQTT_BROKER_ADDRESS"
	MQTT_CLIENT_NAME  = "MQTT_CLIENT_NAME"
	MQTT_TOPIC        = "MQTT_TOPIC"
	AUDIO             = "AUDIO"
	DEFAULT_PORT      = "8080"
	DEFAULT_TICK      = 16 * time.Millisecond
	DEFAULT_PLAYERS   = 2
	DEFAULT_MQTT_NAME = "chainreaction"
)

type Config struct {
	Port         string
	Side         int
	Step         float32
	TickInterval time.Duration
	EmptyRule    model.EmptyRule
	Players      int
	BoardFile    string
	LogLevel     log.Level
	MQTTBroker   string
	MQTTClient   string
	MQTTTopic    string
	Audio        bool
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}
	return LoadFrom(os.Getenv)
}

func LoadFrom(getenv func(string) string) (*Config, error) {
	c := &Config{
		Port:       stringOr(getenv(PORT), DEFAULT_PORT),
		BoardFile:  getenv(BOARD_FILE),
		MQTTBroker: getenv(MQTT_BROKER),
		MQTTClient: stringOr(getenv(MQTT_CLIENT_NAME), DEFAULT_MQTT_NAME),
		MQTTTopic:  stringOr(getenv(MQTT_TOPIC), DEFAULT_MQTT_NAME),
	}
	var err error
	if c.Side, err = intOr(getenv, BOARD_SIDE, model.DEFAULT_SIDE); err != nil {
		return nil, err
	}
	if c.Side < 2 {
		return nil, fmt.Errorf("%s: %w: %d", BOARD_SIDE, model.ErrInvalidSide, c.Side)
	}
	if c.Players, err = intOr(getenv, PLAYERS, DEFAULT_PLAYERS); err != nil {
		return nil, err
	}
	if c.Players < 1 || c.Players > 9 {
		return nil, fmt.Errorf("%s must be between 1 and 9, got %d", PLAYERS, c.Players)
	}

	c.Step = model.DEFAULT_STEP
	if s := getenv(PARTICLE_STEP); s != "" {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", PARTICLE_STEP, err)
		}
		if f <= 0 || f > 1 {
			return nil, fmt.Errorf("%s: %w: %v", PARTICLE_STEP, model.ErrInvalidStep, f)
		}
		c.Step = float32(f)
	}

	c.TickInterval = DEFAULT_TICK
	if s := getenv(TICK_INTERVAL); s != "" {
		if c.TickInterval, err = time.ParseDuration(s); err != nil {
			return nil, fmt.Errorf("%s: %w", TICK_INTERVAL, err)
		}
		if c.TickInterval <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %v", TICK_INTERVAL, c.TickInterval)
		}
	}

	c.EmptyRule = model.EMPTY_CLAIM
	if s := getenv(EMPTY_RULE); s != "" {
		if c.EmptyRule, err = model.ParseEmptyRule(s); err != nil {
			return nil, fmt.Errorf("%s: %w", EMPTY_RULE, err)
		}
	}

	c.LogLevel = log.InfoLevel
	if s := getenv(LOG_LEVEL); s != "" {
		if c.LogLevel, err = log.ParseLevel(s); err != nil {
			return nil, fmt.Errorf("%s: %w", LOG_LEVEL, err)
		}
	}

	if s := getenv(AUDIO); s != "" {
		if c.Audio, err = strconv.ParseBool(s); err != nil {
			return nil, fmt.Errorf("%s: %w", AUDIO, err)
		}
	}
	return c, nil
}

// BoardOptions are the model options this configuration implies.
func (c *Config) BoardOptions() []model.Option {
	return []model.Option{model.WithStep(c.Step), model.WithEmptyRule(c.EmptyRule)}
}

// NewBoard builds the starting board, from BOARD_FILE when set.
func (c *Config) NewBoard() (*model.Board, error) {
	if c.BoardFile == "" {
		return model.NewBoard(c.Side, c.BoardOptions()...)
	}
	file, err := os.Open(c.BoardFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	b, err := model.ReadBoard(file, c.BoardOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", BOARD_FILE, c.BoardFile, err)
	}
	return b, nil
}

func (c *Config) Apply() {
	log.SetLevel(c.LogLevel)
	log.Debugf("config: %+v", *c)
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func intOr(getenv func(string) string, key string, def int) (int, error) {
	s := getenv(key)
	if s == "" {
		return def, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

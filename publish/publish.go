package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/zucenko/chainreaction/model"
)

const (
	EVENT_PLACED   = "placed"
	EVENT_EXPLODED = "exploded"
	EVENT_WON      = "won"
)

type Event struct {
	Type      string         `json:"type"`
	Session   int            `json:"session"`
	Player    model.PlayerId `json:"player"`
	Col       int            `json:"col"`
	Row       int            `json:"row"`
	Particles int            `json:"particles,omitempty"`
}

func (e Event) Topic(prefix string) string {
	return fmt.Sprintf("%s/%d/%s", prefix, e.Session, e.Type)
}

func (e Event) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher hands game events to whoever follows the games.
type Publisher interface {
	Publish(e Event) error
	Close()
}

type Nop struct{}

func (Nop) Publish(Event) error { return nil }
func (Nop) Close()              {}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() {}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]Event, len(r.events))
	copy(events, r.events)
	return events
}

var ErrConnectTimeout = errors.New("mqtt connect timed out")

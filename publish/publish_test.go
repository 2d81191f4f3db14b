package publish

import (
	"encoding/json"
	"sync"
	"testing"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	mqtt.Token
	err error
}

func (t *fakeToken) Wait() bool   { return true }
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	mqtt.Client
	mu           sync.Mutex
	connected    bool
	published    []published
	disconnected bool
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return &fakeToken{}
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
}

func TestEventTopicAndPayload(t *testing.T) {
	e := Event{Type: EVENT_EXPLODED, Session: 2, Player: 1, Col: 3, Row: 4, Particles: 4}
	assert.Equal(t, "games/2/exploded", e.Topic("games"))

	payload, err := e.Payload()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"exploded","session":2,"player":1,"col":3,"row":4,"particles":4}`, string(payload))
}

func TestMQTTPublisherPublishes(t *testing.T) {
	client := &fakeClient{connected: true}
	p := newMQTTPublisher(client, "cr")

	require.NoError(t, p.Publish(Event{Type: EVENT_PLACED, Session: 3, Player: 2, Col: 1, Row: 1}))
	require.NoError(t, p.Publish(Event{Type: EVENT_WON, Session: 3, Player: 2}))
	p.Close()

	assert.True(t, client.disconnected)
	require.Len(t, client.published, 2)
	topics := []string{client.published[0].topic, client.published[1].topic}
	assert.Equal(t, []string{"cr/3/placed", "cr/3/won"}, topics)
	for _, m := range client.published {
		assert.Equal(t, byte(QOS), m.qos)
		var e Event
		require.NoError(t, json.Unmarshal(m.payload, &e))
		assert.Equal(t, 3, e.Session)
	}
}

func TestMQTTPublisherQueuesUntilConnected(t *testing.T) {
	client := &fakeClient{}
	p := newMQTTPublisher(client, "cr")

	require.NoError(t, p.Publish(Event{Type: EVENT_PLACED, Session: 1}))
	assert.Empty(t, client.published)
	assert.Len(t, p.toPublish, 1)

	client.mu.Lock()
	client.connected = true
	client.mu.Unlock()
	p.onConnectHandler(client)
	p.Close()

	require.Len(t, client.published, 1)
	assert.Equal(t, "cr/1/placed", client.published[0].topic)
	assert.Empty(t, p.toPublish)
}

func TestMQTTPublisherKeepsEventOrder(t *testing.T) {
	client := &fakeClient{}
	p := newMQTTPublisher(client, "cr")

	require.NoError(t, p.Publish(Event{Type: EVENT_PLACED, Session: 5, Col: 0}))
	client.mu.Lock()
	client.connected = true
	client.mu.Unlock()
	p.onConnectHandler(client)

	want := []string{"cr/5/placed"}
	for i := 0; i < 50; i++ {
		require.NoError(t, p.Publish(Event{Type: EVENT_EXPLODED, Session: 5, Col: i}))
		want = append(want, "cr/5/exploded")
	}
	require.NoError(t, p.Publish(Event{Type: EVENT_WON, Session: 5}))
	want = append(want, "cr/5/won")
	p.Close()

	topics := make([]string, 0, len(client.published))
	cols := make([]int, 0, len(client.published))
	for _, m := range client.published {
		topics = append(topics, m.topic)
		var e Event
		require.NoError(t, json.Unmarshal(m.payload, &e))
		if e.Type == EVENT_EXPLODED {
			cols = append(cols, e.Col)
		}
	}
	assert.Equal(t, want, topics)
	for i, col := range cols {
		assert.Equal(t, i, col)
	}

	require.NoError(t, p.Publish(Event{Type: EVENT_PLACED, Session: 5}))
	assert.Len(t, client.published, len(want), "nothing is sent after Close")
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	var p Publisher = r
	require.NoError(t, p.Publish(Event{Type: EVENT_PLACED}))
	require.NoError(t, p.Publish(Event{Type: EVENT_WON}))
	events := r.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EVENT_WON, events[1].Type)

	var _ Publisher = Nop{}
}

package publish

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Quality-of-Service (at least once) for MQTT messages
const QOS = 1

const CONNECT_TIMEOUT = 5 * time.Second

type message struct {
	topic   string
	payload []byte
}

const TOKENS_BUFFER = 256

type MQTTPublisher struct {
	client mqtt.Client
	prefix string

	mu        sync.Mutex
	toPublish []message
	closed    bool
	// acknowledgements are awaited off the caller's goroutine, in publish order
	tokens  chan sentToken
	waiting chan struct{}
}

type sentToken struct {
	topic string
	token mqtt.Token
}

// NewMQTTPublisher connects to the broker. Events published before the
// connection is up are queued and sent from the connect handler.
func NewMQTTPublisher(broker, clientName, prefix string) (*MQTTPublisher, error) {
	p := newMQTTPublisher(nil, prefix)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientName)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(p.connectionLostHandler)
	opts.SetOnConnectHandler(p.onConnectHandler)

	log.Infof("Connecting to MQTT Broker at %s as %s", broker, clientName)
	p.client = mqtt.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(CONNECT_TIMEOUT) {
		p.abandon()
		return nil, ErrConnectTimeout
	}
	if err := token.Error(); err != nil {
		p.abandon()
		return nil, err
	}
	return p, nil
}

func newMQTTPublisher(client mqtt.Client, prefix string) *MQTTPublisher {
	p := &MQTTPublisher{
		client:  client,
		prefix:  prefix,
		tokens:  make(chan sentToken, TOKENS_BUFFER),
		waiting: make(chan struct{}),
	}
	go p.loopTokens()
	return p
}

func (p *MQTTPublisher) Publish(e Event) error {
	payload, err := e.Payload()
	if err != nil {
		return err
	}
	p.publish(message{topic: e.Topic(p.prefix), payload: payload})
	return nil
}

func (p *MQTTPublisher) publish(m message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.publishLocked(m)
}

// publishLocked hands the message to the client on the caller's goroutine,
// paho keeps the order of what it was given.
func (p *MQTTPublisher) publishLocked(m message) {
	if p.closed {
		log.Warnf("Publisher closed, dropping message to %s", m.topic)
		return
	}
	if !p.client.IsConnected() {
		p.toPublish = append(p.toPublish, m)
		return
	}
	token := p.client.Publish(m.topic, QOS, false, m.payload)
	select {
	case p.tokens <- sentToken{topic: m.topic, token: token}:
	default:
		log.Warnf("Not waiting for acknowledgement of %s, too many pending", m.topic)
	}
}

func (p *MQTTPublisher) loopTokens() {
	defer close(p.waiting)
	for t := range p.tokens {
		if t.token.Wait() && t.token.Error() != nil {
			log.Errorf("Failed to publish message to %s: %v", t.topic, t.token.Error())
		}
	}
}

// Close waits for pending acknowledgements and disconnects.
func (p *MQTTPublisher) Close() {
	p.abandon()
	<-p.waiting
	p.client.Disconnect(250)
}

// abandon stops accepting messages and lets loopTokens finish.
func (p *MQTTPublisher) abandon() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.tokens)
}

func (p *MQTTPublisher) connectionLostHandler(c mqtt.Client, err error) {
	log.Warnf("Connection to MQTT Broker lost: %v", err)
}

func (p *MQTTPublisher) onConnectHandler(c mqtt.Client) {
	log.Info("Connected to MQTT Broker.")
	p.mu.Lock()
	defer p.mu.Unlock()
	queued := p.toPublish
	p.toPublish = nil
	for _, m := range queued {
		p.publishLocked(m)
		log.Debugf("Published queued message to %s", m.topic)
	}
}

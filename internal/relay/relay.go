// Package relay publishes slideshow navigation to an MQTT broker so other
// devices in the room can follow along.
package relay

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ayusman/presenter/internal/presentation"
)

const (
	// DefaultTopic is the topic prefix when none is configured.
	DefaultTopic = "presenter"
	// DefaultClientID is the MQTT client id when none is configured.
	DefaultClientID = "gesture-presenter"

	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// Config configures the MQTT connection.
type Config struct {
	Broker   string
	ClientID string
	Topic    string
}

// Message is the JSON payload published for each change.
type Message struct {
	Kind      string    `json:"kind"`
	Source    string    `json:"source,omitempty"`
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	Moved     bool      `json:"moved"`
	Timestamp time.Time `json:"timestamp"`
}

// Relay publishes session changes to `<topic>/<kind>` at QoS 0.
type Relay struct {
	client mqtt.Client
	topic  string
}

// Connect dials the broker and returns a Relay.
func Connect(cfg Config) (*Relay, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker not configured")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	log.Printf("Relay connected to MQTT broker at %s", cfg.Broker)

	return newRelay(client, cfg.Topic), nil
}

func newRelay(client mqtt.Client, topic string) *Relay {
	topic = strings.TrimSuffix(topic, "/")
	if topic == "" {
		topic = DefaultTopic
	}
	return &Relay{client: client, topic: topic}
}

// Topic returns the topic a change kind is published to.
func (r *Relay) Topic(kind presentation.ChangeKind) string {
	return r.topic + "/" + string(kind)
}

// HandleChange is a presentation.Listener. Only navigation, start and end
// are relayed; pointer and load changes are too chatty for the room.
func (r *Relay) HandleChange(c presentation.Change) {
	if !relayed(c.Kind) {
		return
	}

	payload, err := json.Marshal(messageFor(c))
	if err != nil {
		log.Printf("Relay: failed to encode %s: %v", c.Kind, err)
		return
	}

	token := r.client.Publish(r.Topic(c.Kind), 0, false, payload)
	go func() {
		if token.WaitTimeout(publishTimeout) && token.Error() != nil {
			log.Printf("Relay: publish %s failed: %v", c.Kind, token.Error())
		}
	}()
}

// Close disconnects from the broker.
func (r *Relay) Close() {
	r.client.Disconnect(250)
}

func messageFor(c presentation.Change) Message {
	return Message{
		Kind:      string(c.Kind),
		Source:    c.Source,
		Index:     c.State.Index,
		Total:     len(c.State.Slides),
		Moved:     c.Moved,
		Timestamp: c.Time,
	}
}

func relayed(kind presentation.ChangeKind) bool {
	switch kind {
	case presentation.ChangeNext, presentation.ChangePrevious, presentation.ChangeGoTo,
		presentation.ChangeStart, presentation.ChangeEnd:
		return true
	}
	return false
}

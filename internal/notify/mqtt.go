package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"prgenfuel/internal/config"
)

// publishClient is the subset of mqtt.Client used here.
type publishClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes summaries to a broker topic with QoS 1.
type MQTT struct {
	client publishClient
	topic  string
}

// New returns an MQTT publisher when cfg is enabled and Nop otherwise.
func New(cfg config.MQTTConfig) (Publisher, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}
	return NewMQTT(cfg)
}

// NewMQTT connects to cfg.Broker.
func NewMQTT(cfg config.MQTTConfig) (*MQTT, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("MQTT topic is required when enabled")
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "prgenfuel"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID(clientID)
	opts.SetConnectTimeout(10 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}
	return &MQTT{client: client, topic: cfg.Topic}, nil
}

// Publish sends s and waits for the broker acknowledgement or ctx.
func (m *MQTT) Publish(ctx context.Context, s Summary) error {
	b, err := Payload(s)
	if err != nil {
		return err
	}
	token := m.client.Publish(m.topic, 1, false, b)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("notify: publish to %s: %w", m.topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("notify: publish to %s: %w", m.topic, err)
	}
	log.Printf("notify: topic=%s run=%s status=%s", m.topic, s.RunID, s.Status)
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	if m.client != nil {
		m.client.Disconnect(250)
	}
}

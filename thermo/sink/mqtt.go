package sink

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/alepar/thermodisplay/thermo"
)

type MQTTConfig struct {
	Broker      string        `yaml:"broker"`
	ClientID    string        `yaml:"client_id"`
	TopicPrefix string        `yaml:"topic_prefix"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Connect dials the broker once; paho reconnects on its own afterwards.
func Connect(cfg MQTTConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrapf(token.Error(), "failed to connect to %s", cfg.Broker)
	}
	return client, nil
}

type MQTT struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// NewMQTT publishes retained readings to <prefix>/<quantity>.
func NewMQTT(client mqtt.Client, cfg MQTTConfig, q thermo.Quantity) *MQTT {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	return &MQTT{
		client:  client,
		topic:   fmt.Sprintf("%s/%s", cfg.TopicPrefix, q),
		timeout: timeout,
	}
}

func (m *MQTT) Topic() string {
	return m.topic
}

// Publish waits at most the configured timeout so a slow broker never
// stalls the tick loop for long.
func (m *MQTT) Publish(value float64) {
	payload := fmt.Sprintf("%.2f", value)
	token := m.client.Publish(m.topic, 0, true, payload)
	if !token.WaitTimeout(m.timeout) {
		log.Warnf("mqtt publish to %s timed out", m.topic)
		return
	}
	if err := token.Error(); err != nil {
		log.Errorf("failed to publish to %s: %s", m.topic, err)
	}
}

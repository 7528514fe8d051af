package mqtt

import (
	"fmt"
	"time"

	"machinewise/internal/logger"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Handler processes one inbound message. Errors are logged, not fatal.
type Handler func(topic string, payload []byte) error

type Config struct {
	Broker   string // e.g. tcp://broker.hivemq.com:1883
	ClientID string
}

const (
	connectTimeout   = 30 * time.Second
	disconnectWaitMs = 250
)

// Client wraps the paho MQTT client with reconnect and connectivity logging.
type Client struct {
	client paho.Client
	log    *logger.Logger
}

func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(connectTimeout)

	// Broker disconnects are connectivity state, not errors; paho retries.
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warnw("mqtt_connection_lost", "err", err)
	})
	opts.SetOnConnectHandler(func(_ paho.Client) {
		log.Infow("mqtt_connected", "broker", cfg.Broker)
	})

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", cfg.Broker, token.Error())
	}

	return &Client{client: client, log: log}, nil
}

// Subscribe registers handler for topic (wildcards allowed).
func (c *Client) Subscribe(topic string, qos byte, handler Handler) error {
	token := c.client.Subscribe(topic, qos, func(_ paho.Client, msg paho.Message) {
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.log.Errorw("mqtt_message_failed", "topic", msg.Topic(), "err", err)
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}
	return nil
}

func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

func (c *Client) Disconnect() {
	c.client.Disconnect(disconnectWaitMs)
}

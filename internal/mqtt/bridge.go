// internal/mqtt/bridge.go
package mqtt

import (
	"context"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	cfg "github.com/tamzrod/modbus-pointbridge/internal/config"
	"github.com/tamzrod/modbus-pointbridge/internal/point"
	"github.com/tamzrod/modbus-pointbridge/internal/status"
	"github.com/tamzrod/modbus-pointbridge/internal/writer"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	setTimeout     = 5 * time.Second
	disconnectMs   = 250
)

// publisher is the part of paho.Client the bridge publishes through.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Bridge publishes point values and session status to a broker and turns
// <prefix>/<point>/set messages into writes.
type Bridge struct {
	client paho.Client
	pub    publisher
	prefix string
	qos    byte
	set    writer.Setter
	log    logrus.FieldLogger
}

// New builds a bridge. Nothing is connected until Connect.
func New(c cfg.MQTTConfig, log logrus.FieldLogger) *Bridge {
	b := &Bridge{
		prefix: c.TopicPrefix,
		qos:    c.QoS,
		log:    log.WithField("broker", c.Broker),
	}

	opts := paho.NewClientOptions().
		AddBroker(c.Broker).
		SetClientID(c.ClientID).
		SetUsername(c.Username).
		SetPassword(c.Password).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false).
		SetOnConnectHandler(b.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			b.log.WithError(err).Warn("mqtt connection lost")
		})

	b.client = paho.NewClient(opts)
	b.pub = b.client
	return b
}

// Connect starts the broker connection and routes set requests to set.
// With connect-retry enabled the client keeps trying in the background,
// so a timeout is only logged.
func (b *Bridge) Connect(set writer.Setter) error {
	b.set = set
	tok := b.client.Connect()
	if !tok.WaitTimeout(connectTimeout) {
		b.log.Warn("mqtt connect still pending")
		return nil
	}
	return tok.Error()
}

// Close disconnects from the broker.
func (b *Bridge) Close() {
	if b.client != nil {
		b.client.Disconnect(disconnectMs)
	}
}

// PointChanged publishes v retained on <prefix>/<name>.
// Called from the session loop; never waits on the broker.
func (b *Bridge) PointChanged(name string, v point.Value) {
	payload, err := encodeValue(v)
	if err != nil {
		b.log.WithField("point", name).WithError(err).Error("encode value")
		return
	}
	b.publish(pointTopic(b.prefix, name), payload)
}

// StatusChanged publishes the session snapshot retained on <prefix>/$status.
func (b *Bridge) StatusChanged(s status.Snapshot) {
	payload, err := status.Encode(s)
	if err != nil {
		b.log.WithError(err).Error("encode status")
		return
	}
	b.publish(statusTopic(b.prefix), payload)
}

func (b *Bridge) publish(topic string, payload []byte) {
	tok := b.pub.Publish(topic, b.qos, true, payload)
	go func() {
		if !tok.WaitTimeout(publishTimeout) {
			b.log.WithField("topic", topic).Warn("mqtt publish timed out")
			return
		}
		if err := tok.Error(); err != nil {
			b.log.WithField("topic", topic).WithError(err).Warn("mqtt publish failed")
		}
	}()
}

// subscriptions are dropped by the broker on reconnect without a
// persistent session, so they are renewed on every connect
func (b *Bridge) onConnect(c paho.Client) {
	b.log.Info("mqtt connected")

	filter := setFilter(b.prefix)
	tok := c.Subscribe(filter, b.qos, b.handleSet)
	go func() {
		if tok.Wait() && tok.Error() != nil {
			b.log.WithField("topic", filter).WithError(tok.Error()).Error("mqtt subscribe failed")
		}
	}()
}

func (b *Bridge) handleSet(_ paho.Client, m paho.Message) {
	name, ok := parseSetTopic(b.prefix, m.Topic())
	if !ok {
		return
	}
	l := b.log.WithField("point", name)

	v, err := decodeValue(m.Payload())
	if err != nil {
		l.WithError(err).Warn("rejected set request")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), setTimeout)
	defer cancel()

	if err := b.set.Set(ctx, name, v); err != nil {
		l.WithError(err).Warn("set failed")
	}
}

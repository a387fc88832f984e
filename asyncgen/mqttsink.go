package asyncgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MqttSink publishes readings as JSON to an MQTT broker. The first "+" in the
// topic pattern is replaced by the run id.
type MqttSink struct {
	client       mqtt.Client
	brokerURL    string
	topicPattern string
	qos          byte
	logger       zerolog.Logger
}

// NewMqttSink creates a new MQTT sink.
func NewMqttSink(brokerURL, topicPattern string, qos byte, logger zerolog.Logger) *MqttSink {
	return &MqttSink{
		brokerURL:    brokerURL,
		topicPattern: topicPattern,
		qos:          qos,
		logger:       logger.With().Str("component", "MqttSink").Logger(),
	}
}

// Connect establishes a connection to the MQTT broker.
func (s *MqttSink) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.brokerURL).
		SetClientID(fmt.Sprintf("asyncgen-%s", uuid.New().String())).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(client mqtt.Client, err error) {
			s.logger.Error().Err(err).Msg("MQTT Connection lost")
		}).
		SetOnConnectHandler(func(client mqtt.Client) {
			s.logger.Info().Str("broker", s.brokerURL).Msg("Connected to MQTT broker")
		})

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.WaitTimeout(10*time.Second) && token.Error() != nil {
		s.logger.Error().Err(token.Error()).Msg("Failed to connect to MQTT broker")
		return token.Error()
	}

	if !s.client.IsConnected() {
		err := fmt.Errorf("failed to connect to %s", s.brokerURL)
		s.logger.Error().Err(err).Msg("MQTT connection check failed")
		return err
	}
	return nil
}

// Disconnect closes the connection to the MQTT broker.
func (s *MqttSink) Disconnect() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
		s.logger.Info().Msg("MQTT client disconnected")
	}
}

// Topic returns the topic a reading of the given run is published to.
func (s *MqttSink) Topic(run string) string {
	return strings.Replace(s.topicPattern, "+", run, 1)
}

// Publish sends the reading and waits up to two seconds for the broker to
// acknowledge it.
func (s *MqttSink) Publish(ctx context.Context, reading Reading) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	payload, err := json.Marshal(reading)
	if err != nil {
		return false, fmt.Errorf("failed to encode reading %d of run %s: %w", reading.Position, reading.Run, err)
	}

	topic := s.Topic(reading.Run)
	token := s.client.Publish(topic, s.qos, false, payload)

	// The ack wait is bounded on its own; tying it to ctx would drop the last
	// reading of a run whose context ends right after it was produced.
	if token.WaitTimeout(2 * time.Second) {
		if token.Error() != nil {
			err := fmt.Errorf("mqtt publish error for run %s: %w", reading.Run, token.Error())
			s.logger.Warn().Err(err).Msg("Publish failed")
			return false, err
		}
		s.logger.Debug().Str("run", reading.Run).Str("topic", topic).Msg("Reading published")
		return true, nil
	}

	err = fmt.Errorf("timed out waiting for publish confirmation for run %s", reading.Run)
	s.logger.Error().Err(err).Str("run", reading.Run).Msg("Publish timeout")
	return false, err
}

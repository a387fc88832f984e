// Package config loads the YAML configuration shared by the commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/illmade-knight/go-async/asyncgen"
	"github.com/illmade-knight/go-async/githuborg"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	SinkStdout = "stdout"
	SinkMemory = "memory"
	SinkMQTT   = "mqtt"
	SinkRedis  = "redis"
	SinkPubsub = "pubsub"
)

var ErrUnknownSink = errors.New("unknown sink kind")

type MQTTConfig struct {
	BrokerURL    string `yaml:"broker_url"`
	TopicPattern string `yaml:"topic_pattern"`
	QoS          byte   `yaml:"qos"`
}

type RedisConfig struct {
	Addr   string        `yaml:"addr"`
	Prefix string        `yaml:"prefix"`
	TTL    time.Duration `yaml:"ttl"`
}

type PubsubConfig struct {
	ProjectID string `yaml:"project_id"`
	TopicID   string `yaml:"topic_id"`
}

// SinkConfig selects where a run's readings go. Only the section matching
// Kind is read.
type SinkConfig struct {
	Kind   string       `yaml:"kind"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	Redis  RedisConfig  `yaml:"redis"`
	Pubsub PubsubConfig `yaml:"pubsub"`
}

type GithubConfig struct {
	Org     string      `yaml:"org"`
	BaseURL string      `yaml:"base_url"`
	License string      `yaml:"license"`
	Cache   RedisConfig `yaml:"cache"`
}

type Config struct {
	Generator   asyncgen.Config `yaml:"generator"`
	Invocations int             `yaml:"invocations"`
	Sink        SinkConfig      `yaml:"sink"`
	Github      GithubConfig    `yaml:"github"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Generator:   asyncgen.DefaultConfig(),
		Invocations: 1,
		Sink: SinkConfig{
			Kind: SinkStdout,
			MQTT: MQTTConfig{
				TopicPattern: "readings/+/values",
				QoS:          1,
			},
			Redis: RedisConfig{
				Prefix: "readings",
				TTL:    24 * time.Hour,
			},
		},
		Github: GithubConfig{
			BaseURL: githuborg.DefaultBaseURL,
			Cache: RedisConfig{
				Prefix: "githuborg",
				TTL:    10 * time.Minute,
			},
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Generator.Validate(); err != nil {
		return err
	}
	if c.Invocations <= 0 {
		return fmt.Errorf("invocations must be positive, got %d", c.Invocations)
	}
	return c.Sink.Validate()
}

func (s SinkConfig) Validate() error {
	switch s.Kind {
	case SinkStdout, SinkMemory:
		return nil
	case SinkMQTT:
		if s.MQTT.BrokerURL == "" {
			return errors.New("mqtt sink requires broker_url")
		}
		if s.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", s.MQTT.QoS)
		}
	case SinkRedis:
		if s.Redis.Addr == "" {
			return errors.New("redis sink requires addr")
		}
	case SinkPubsub:
		if s.Pubsub.ProjectID == "" || s.Pubsub.TopicID == "" {
			return errors.New("pubsub sink requires project_id and topic_id")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSink, s.Kind)
	}
	return nil
}

// Build creates the configured sink. Stdout is handled by the caller and
// yields a nil sink.
func (s SinkConfig) Build(logger zerolog.Logger) (asyncgen.Sink, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	switch s.Kind {
	case SinkMemory:
		return asyncgen.NewRecorder(), nil
	case SinkMQTT:
		return asyncgen.NewMqttSink(s.MQTT.BrokerURL, s.MQTT.TopicPattern, s.MQTT.QoS, logger), nil
	case SinkRedis:
		return asyncgen.NewRedisSink(s.Redis.Addr, s.Redis.Prefix, s.Redis.TTL, logger), nil
	case SinkPubsub:
		return asyncgen.NewPubsubSink(s.Pubsub.ProjectID, s.Pubsub.TopicID, logger), nil
	}
	return nil, nil
}

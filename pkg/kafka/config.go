package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// SASL mechanisms understood by Config.
const (
	MechanismPlain       = "PLAIN"
	MechanismScramSHA256 = "SCRAM-SHA-256"
	MechanismScramSHA512 = "SCRAM-SHA-512"
)

const dialTimeout = 10 * time.Second

// Config holds broker addresses and connection security.
type Config struct {
	Brokers       []string
	ConsumerGroup string

	// StartFromEarliest makes a new consumer group read the topic from the
	// first offset instead of only new messages.
	StartFromEarliest bool

	TLS bool

	// SASLMechanism enables SASL when set: PLAIN, SCRAM-SHA-256 or
	// SCRAM-SHA-512.
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

// Validate checks that brokers are present and the SASL settings can build a
// mechanism.
func (cfg Config) Validate() error {
	if len(cfg.Brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}
	_, err := cfg.mechanism()
	return err
}

func (cfg Config) secured() bool {
	return cfg.TLS || cfg.SASLMechanism != ""
}

func (cfg Config) tlsConfig() *tls.Config {
	if !cfg.TLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

func (cfg Config) mechanism() (sasl.Mechanism, error) {
	switch cfg.SASLMechanism {
	case "":
		return nil, nil
	case MechanismPlain:
		return plain.Mechanism{Username: cfg.SASLUsername, Password: cfg.SASLPassword}, nil
	case MechanismScramSHA256, MechanismScramSHA512:
		algo := scram.SHA256
		if cfg.SASLMechanism == MechanismScramSHA512 {
			algo = scram.SHA512
		}
		m, err := scram.Mechanism(algo, cfg.SASLUsername, cfg.SASLPassword)
		if err != nil {
			return nil, fmt.Errorf("kafka: build %s mechanism: %w", cfg.SASLMechanism, err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("kafka: unsupported SASL mechanism %q", cfg.SASLMechanism)
	}
}

// dialer is used by readers. It returns nil for plain connections so kafka-go
// keeps its default dialer.
func (cfg Config) dialer() (*kafkago.Dialer, error) {
	if !cfg.secured() {
		return nil, nil
	}
	m, err := cfg.mechanism()
	if err != nil {
		return nil, err
	}
	return &kafkago.Dialer{Timeout: dialTimeout, DualStack: true, TLS: cfg.tlsConfig(), SASLMechanism: m}, nil
}

// transport is used by writers. It returns nil for plain connections.
func (cfg Config) transport() (*kafkago.Transport, error) {
	if !cfg.secured() {
		return nil, nil
	}
	m, err := cfg.mechanism()
	if err != nil {
		return nil, err
	}
	return &kafkago.Transport{DialTimeout: dialTimeout, TLS: cfg.tlsConfig(), SASL: m}, nil
}

// Ping dials the brokers in order and succeeds on the first that answers.
func Ping(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d, err := cfg.dialer()
	if err != nil {
		return err
	}
	if d == nil {
		d = &kafkago.Dialer{Timeout: dialTimeout, DualStack: true}
	}

	var errs []error
	for _, broker := range cfg.Brokers {
		conn, err := d.DialContext(ctx, "tcp", broker)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return conn.Close()
	}
	return fmt.Errorf("kafka: no broker reachable: %w", errors.Join(errs...))
}

// Package events publishes security events (registrations, sign-ins, token
// reuse, revocations) to a broker. Delivery is best effort: callers log a
// failed Publish and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

// Event types.
const (
	TypeAccountRegistered = "account.registered"
	TypeSignedIn          = "session.signed_in"
	TypeReuseDetected     = "session.reuse_detected"
	TypeSessionsRevoked   = "sessions.revoked"
)

// Drivers accepted by New.
const (
	DriverLog      = ""
	DriverKafka    = "kafka"
	DriverRabbitMQ = "rabbitmq"
)

type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id,omitempty"`
	Username   string    `json:"username,omitempty"`
	Revoked    int64     `json:"revoked,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Settings selects and configures a publisher.
type Settings struct {
	Driver       string
	KafkaBrokers []string
	KafkaTopic   string
	RabbitURL    string
	RabbitQueue  string
}

// New builds the publisher named by s.Driver.
func New(s Settings, logger logging.Logger) (Publisher, error) {
	switch s.Driver {
	case DriverLog:
		return NewLogPublisher(logger), nil
	case DriverKafka:
		return NewKafkaPublisher(s.KafkaBrokers, s.KafkaTopic), nil
	case DriverRabbitMQ:
		return DialRabbit(s.RabbitURL, s.RabbitQueue)
	default:
		return nil, fmt.Errorf("unknown events driver %q", s.Driver)
	}
}

func encode(e Event) ([]byte, error) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return b, nil
}

// LogPublisher writes events to the application log.
type LogPublisher struct {
	logger logging.Logger
}

func NewLogPublisher(logger logging.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.Info(ctx, "security event", "type", e.Type, "user_id", e.UserID, "username", e.Username, "revoked", e.Revoked)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

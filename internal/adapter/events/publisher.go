package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
	"github.com/simaogato/seflow-backend/internal/domain"
)

const (
	StreamName     = "SEFLOW_EVENTS"
	StreamSubjects = "seflow.splits.>"
	subjectPrefix  = "seflow.splits.submitted"
)

// SplitSubmittedEvent is the payload published for every executed split
type SplitSubmittedEvent struct {
	ID          string            `json:"id"`
	Address     string            `json:"address"`
	TotalAmount string            `json:"total_amount"`
	Allocation  domain.Allocation `json:"allocation"`
	Savings     string            `json:"savings_amount"`
	DeFi        string            `json:"defi_amount"`
	Spending    string            `json:"spending_amount"`
	Reward      string            `json:"reward"`
	LockedUntil *time.Time        `json:"locked_until,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewSplitSubmittedEvent builds the event payload for tx
func NewSplitSubmittedEvent(tx *domain.SplitTransaction) SplitSubmittedEvent {
	return SplitSubmittedEvent{
		ID:          tx.ID.String(),
		Address:     tx.Address,
		TotalAmount: tx.Request.TotalAmount.String(),
		Allocation:  tx.Request.Allocation,
		Savings:     tx.Amounts.Savings.String(),
		DeFi:        tx.Amounts.DeFi.String(),
		Spending:    tx.Amounts.Spending.String(),
		Reward:      tx.Reward.String(),
		LockedUntil: tx.LockedUntil,
		Timestamp:   tx.CreatedAt,
	}
}

// Subject returns seflow.splits.submitted.{address}
func Subject(address string) string {
	return fmt.Sprintf("%s.%s", subjectPrefix, address)
}

// streamPublisher is the part of jetstream.JetStream the publisher needs
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSPublisher publishes split events to JetStream.
// The split ID is the message ID so redelivered publishes are deduplicated.
type NATSPublisher struct {
	js     streamPublisher
	logger zerolog.Logger
}

// NewNATSPublisher creates a publisher on an existing JetStream context
func NewNATSPublisher(js streamPublisher, logger zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{js: js, logger: logger}
}

// PublishSplitSubmitted implements domain.EventPublisher
func (p *NATSPublisher) PublishSplitSubmitted(ctx context.Context, tx *domain.SplitTransaction) error {
	data, err := json.Marshal(NewSplitSubmittedEvent(tx))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := Subject(tx.Address)
	ack, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(tx.ID.String()))
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.logger.Debug().Str("subject", subject).Uint64("seq", ack.Sequence).Msg("split event published")
	return nil
}

// EnsureStream creates the split events stream.
func EnsureStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{StreamSubjects},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 2 * time.Minute,
		Replicas:   1,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", StreamName, err)
	}
	return nil
}

// Connect dials NATS, ensures the stream and returns a ready publisher.
// The returned close function drains the connection.
func Connect(ctx context.Context, url string, logger zerolog.Logger) (*NATSPublisher, func(), error) {
	nc, err := nats.Connect(url,
		nats.Name("seflow-backend"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create jetstream: %w", err)
	}

	if err := EnsureStream(ctx, js); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info().Str("stream", StreamName).Msg("ensured split events stream")

	closeFn := func() {
		if err := nc.Drain(); err != nil {
			logger.Warn().Err(err).Msg("nats drain failed")
		}
	}
	return NewNATSPublisher(js, logger), closeFn, nil
}

// NopPublisher discards events; used when NATS is not configured
type NopPublisher struct{}

func (NopPublisher) PublishSplitSubmitted(context.Context, *domain.SplitTransaction) error {
	return nil
}

package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"hydration/internal/platform/config"
)

// NATSSink publishes events on core NATS subjects.
type NATSSink struct {
	nc *nats.Conn
}

// ConnectNATS dials NATS. It returns nil, nil when no URL is configured.
func ConnectNATS(cfg config.NATSConfig) (*NATSSink, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSSink{nc: nc}, nil
}

// Publish marshals e and publishes it with a dedup header.
func (s *NATSSink) Publish(ctx context.Context, subject string, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := nats.NewMsg(subject)
	msg.Data = body
	msg.Header.Set(nats.MsgIdHdr, e.ID)
	if err := s.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close drains pending publishes and closes the connection.
func (s *NATSSink) Close() error {
	if s == nil || s.nc == nil {
		return nil
	}
	return s.nc.Drain()
}

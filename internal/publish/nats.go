package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const flushTimeout = 5 * time.Second

// NATSSink publishes the document to a NATS subject
type NATSSink struct {
	nc      *nats.Conn
	subject string
}

// NewNATSSink connects to NATS and creates a new NATSSink instance
func NewNATSSink(url, subject string) (*NATSSink, error) {
	nc, err := nats.Connect(url, nats.Name("pages-collector"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSSink{
		nc:      nc,
		subject: subject,
	}, nil
}

func (s *NATSSink) Name() string {
	return "nats " + s.subject
}

// Write publishes data and waits for the server to acknowledge it
func (s *NATSSink) Write(_ context.Context, data []byte) error {
	if err := s.nc.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish to NATS: %w", err)
	}
	if err := s.nc.FlushTimeout(flushTimeout); err != nil {
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}
	return nil
}

// Close cleanly shuts down the NATS connection
func (s *NATSSink) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}

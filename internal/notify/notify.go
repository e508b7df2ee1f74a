// Package notify announces finished builds on a NATS JetStream subject.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

const (
	publishTimeout = 5 * time.Second
	setupTimeout   = 10 * time.Second
)

// BuildEvent is the message published after every build.
type BuildEvent struct {
	BuildID     string    `json:"build_id"`
	Site        string    `json:"site"`
	Version     int       `json:"version"`
	Outcome     string    `json:"outcome"`
	Pages       int       `json:"pages"`
	Failures    int       `json:"section_failures"`
	BrokenLinks int       `json:"broken_links"`
	Output      string    `json:"output"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
}

// Publisher sends build events somewhere.
type Publisher interface {
	Publish(ctx context.Context, ev *BuildEvent) error
	Close() error
}

// Noop discards events; used when no NATS URL is configured.
type Noop struct{}

func (Noop) Publish(context.Context, *BuildEvent) error { return nil }
func (Noop) Close() error                               { return nil }

// NATSPublisher publishes events to a JetStream stream.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// StreamName derives the stream capturing subject: upper-cased, with the
// characters streams may not contain replaced.
func StreamName(subject string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "*", "ALL", ">", "REST", " ", "_").Replace(subject))
}

// Connect dials url and makes sure a stream exists for subject.
func Connect(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("sitebuilder"))
	if err != nil {
		return nil, errors.NetworkError("connect to NATS").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryNetwork, "create JetStream context").Build()
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()
	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName(subject),
		Description: "sitebuilder build events",
		Subjects:    []string{subject},
		MaxMsgs:     1000,
	}); err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryNetwork, "create build event stream").
			WithContext("subject", subject).
			Build()
	}

	slog.Info("NATS build notifications enabled", "url", url, "subject", subject)
	return &NATSPublisher{conn: conn, js: js, subject: subject}, nil
}

// Publish sends ev and waits for the stream's acknowledgement.
func (p *NATSPublisher) Publish(ctx context.Context, ev *BuildEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal build event").Build()
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "publish build event").
			WithContext("subject", p.subject).
			Build()
	}
	slog.Debug("Published build event", "build_id", ev.BuildID, "subject", p.subject)
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

// New returns a NATS publisher when url is set and Noop otherwise.
func New(url, subject string) (Publisher, error) {
	if url == "" {
		return Noop{}, nil
	}
	p, err := Connect(url, subject)
	if err != nil {
		return nil, err
	}
	return p, nil
}

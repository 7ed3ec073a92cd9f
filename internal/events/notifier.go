// Package events broadcasts publish-complete notifications over NATS so
// downstream consumers (cache invalidators, deploy dashboards) can react
// without polling the manifest.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is used when configuration leaves the subject empty.
const DefaultSubject = "assetpipe.publish"

// PublishEvent is the payload emitted after each successful cycle.
type PublishEvent struct {
	CycleID     string            `json:"cycle_id"`
	Commit      string            `json:"commit,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Uploaded    int               `json:"uploaded"`
	CacheHits   int               `json:"cache_hits"`
	ManifestSum string            `json:"manifest_sum,omitempty"`
	URLs        map[string]string `json:"urls,omitempty"`
}

// Notifier publishes cycle events to a NATS subject.
type Notifier struct {
	conn    *nats.Conn
	subject string
}

// NewNotifier connects to the NATS server. An empty subject falls back to
// DefaultSubject.
func NewNotifier(url, subject string) (*Notifier, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(url,
		nats.Name("assetpipe"),
		nats.MaxReconnects(3),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	slog.Info("Event notifier connected",
		slog.String("url", url),
		slog.String("subject", subject))

	return &Notifier{conn: conn, subject: subject}, nil
}

// Publish emits one publish-complete event. The event timestamp is stamped
// here so callers only fill in cycle data.
func (n *Notifier) Publish(event PublishEvent) error {
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal publish event: %w", err)
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.Debug("Published cycle event",
		slog.String("cycle_id", event.CycleID),
		slog.Int("uploaded", event.Uploaded))
	return nil
}

// Close flushes pending messages and drops the connection.
func (n *Notifier) Close() {
	if n.conn == nil {
		return
	}
	_ = n.conn.Flush()
	n.conn.Close()
}

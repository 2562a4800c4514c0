package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresPublisher broadcasts events with pg_notify so every server
// process listening on the channel receives them.
type PostgresPublisher struct {
	db      *sqlx.DB
	channel string
}

func NewPostgresPublisher(db *sqlx.DB, channel string) *PostgresPublisher {
	return &PostgresPublisher{db: db, channel: channel}
}

func (p *PostgresPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, p.channel, string(payload))
	if err != nil {
		return fmt.Errorf("failed to notify: %w", err)
	}
	return nil
}

// Listener feeds notifications from a Postgres channel into a hub.
type Listener struct {
	listener *pq.Listener
	channel  string
	hub      *Hub
}

func NewListener(dsn, channel string, hub *Hub) *Listener {
	report := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			slog.Warn("realtime listener event", "event", ev, "error", err)
		}
	}
	return &Listener{
		listener: pq.NewListener(dsn, 10*time.Second, time.Minute, report),
		channel:  channel,
		hub:      hub,
	}
}

// Run listens until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	err := l.listener.Listen(l.channel)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.channel, err)
	}
	defer l.listener.Close()

	slog.Info("realtime listener started", "channel", l.channel)

	for {
		select {
		case <-ctx.Done():
			return nil

		case n := <-l.listener.Notify:
			// nil after a reconnect; events in the gap are lost
			if n == nil {
				continue
			}
			var ev Event
			err := json.Unmarshal([]byte(n.Extra), &ev)
			if err != nil {
				slog.Warn("realtime listener dropped malformed event", "error", err)
				continue
			}
			l.hub.Deliver(ev)

		case <-time.After(90 * time.Second):
			go l.listener.Ping()
		}
	}
}

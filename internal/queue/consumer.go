package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// EventLogFile is the name of the append-only file the consumer writes.
const EventLogFile = "events.log"

// Consumer reads the events queue and appends one line per event to
// <LogDir>/events.log.
type Consumer struct {
	URL    string
	Queue  string
	LogDir string
	Log    zerolog.Logger
}

// Run connects to the broker and consumes until ctx is cancelled. Dial and
// channel failures are retried with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn().Err(err).Dur("retry_in", backoff).Msg("dial broker failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn().Err(err).Msg("consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn().Err(err).Msg("set qos failed")
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := AppendEvent(c.LogDir, d.Body); err != nil {
				c.Log.Error().Err(err).Msg("handle message failed")
				// reject without requeue so a bad message cannot loop
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// AppendEvent decodes one message body and appends its log line to
// dir/events.log, creating the directory when needed.
func AppendEvent(dir string, body []byte) error {
	line, err := FormatEvent(body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, EventLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write event log: %w", err)
	}
	return nil
}

type rawEvent struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// FormatEvent renders a message body as a single human-readable line.
func FormatEvent(body []byte) (string, error) {
	var ev rawEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return "", fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return "", errors.New("event without type")
	}
	ts := ev.OccurredAt.UTC().Format(time.RFC3339)

	switch ev.Type {
	case TypeUserCreated:
		var d UserCreated
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", ev.Type, err)
		}
		return fmt.Sprintf("[%s] User created | user_id=%d | email=%q | role=%s", ts, d.UserID, d.Email, d.Role), nil
	case TypeSessionCreated:
		var d SessionCreated
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", ev.Type, err)
		}
		return fmt.Sprintf("[%s] Session created | session_id=%d | user_id=%d | expires_at=%s",
			ts, d.SessionID, d.UserID, d.ExpiresAt.UTC().Format(time.RFC3339)), nil
	case TypeWaitlistSubmitted:
		var d WaitlistSubmitted
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", ev.Type, err)
		}
		return fmt.Sprintf("[%s] Waitlist submitted | name=%q | email=%q | role=%s | experience=%s | features=[%s]",
			ts, d.Name, d.Email, d.CurrentRole, d.ExperienceLevel, strings.Join(d.PreferredFeatures, ",")), nil
	default:
		return fmt.Sprintf("[%s] %s | data=%s", ts, ev.Type, string(ev.Data)), nil
	}
}

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

// EventLogFile is the file, under the consumer's log directory, that site
// events are appended to.
const EventLogFile = "site-events.log"

// Consumer drains the site event queue into a human-readable log file.
type Consumer struct {
	URL    string
	Queue  string
	LogDir string
	Log    zerolog.Logger
}

// Run connects to the broker, declares the queue and consumes until ctx is
// cancelled. Lost connections are retried with exponential backoff capped
// at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn().Err(err).Dur("retry_in", backoff).Msg("event consumer: dial failed")
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
		c.Log.Warn().Err(err).Msg("event consumer: loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn().Err(err).Msg("event consumer: set QoS failed")
	}
	if _, err := declare(ch, c.Queue); err != nil {
		return err
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
			if err := c.Handle(d.Body); err != nil {
				c.Log.Error().Err(err).Msg("event consumer: handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message body and appends its line to the event log.
func (c *Consumer) Handle(body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line, err := FormatLine(ev)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.LogDir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.LogDir, EventLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single log line.
func FormatLine(ev Event) (string, error) {
	prefix := fmt.Sprintf("[%s] %s", ev.OccurredAt, ev.Type)
	if ev.Actor != "" {
		prefix += " | by=" + ev.Actor
	}

	switch ev.Type {
	case TypeMaterialCreated, TypeMaterialNonConformity:
		var m MaterialEvent
		if err := json.Unmarshal(ev.Data, &m); err != nil {
			return "", fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		line := fmt.Sprintf("%s | material_id=%d | ddt=%q | batch=%q | non_conformity=%t",
			prefix, m.MaterialID, m.DDTNumber, m.BatchNumber, m.NonConformity)
		if m.Source != "" {
			line += " | source=" + m.Source
		}
		if m.Notes != "" {
			line += fmt.Sprintf(" | notes=%q", m.Notes)
		}
		return line, nil
	case TypeDocumentUploaded, TypeDocumentDeleted:
		var d DocumentEvent
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			return "", fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		return fmt.Sprintf("%s | document_id=%d | path=%q | type=%s | material_id=%s | log_id=%s",
			prefix, d.DocumentID, d.FilePath, d.FileType, optID(d.MaterialID), optID(d.LogID)), nil
	case TypeOverdueDigest:
		var g DigestEvent
		if err := json.Unmarshal(ev.Data, &g); err != nil {
			return "", fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		return fmt.Sprintf("%s | overall=%.2f%% | overdue=%d [%s]",
			prefix, g.OverallProgressPercent, g.OverdueMilestones, strings.Join(g.Overdue, ",")), nil
	default:
		return "", fmt.Errorf("unknown event type %q", ev.Type)
	}
}

func optID(id *uint64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprint(*id)
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

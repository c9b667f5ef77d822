package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/pv-site-manager/internal/queue"
)

// emitter publishes events best-effort and logs what could not be sent.
type emitter struct {
	pub EventPublisher
	log zerolog.Logger
}

func (e emitter) emit(ctx context.Context, typ, actor string, at time.Time, data any) {
	if e.pub == nil {
		return
	}
	ev, err := queue.NewEvent(typ, actor, at, data)
	if err == nil {
		err = e.pub.Publish(ctx, ev)
	}
	if err != nil {
		e.log.Warn().Err(err).Str("event", typ).Msg("publish site event failed")
	}
}

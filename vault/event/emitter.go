package event

import (
	"context"
	"time"

	"github.com/openclaim/vault/internal/platform/id"
)

// Sink persists emitted audit events.
type Sink interface {
	AppendAuditEvent(ctx context.Context, evt Event) error
}

// Emitter records vault audit events.
type Emitter struct {
	sink  Sink
	clock func() time.Time
	idgen func() (string, error)
}

// NewEmitter creates a new audit event emitter.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink, clock: time.Now, idgen: id.NewID}
}

// WithClock overrides the emitter clock. Intended for tests.
func (e *Emitter) WithClock(clock func() time.Time) *Emitter {
	if clock != nil {
		e.clock = clock
	}
	return e
}

// Emit records an audit event. It is a no-op when the sink is nil.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if e == nil || e.sink == nil {
		return nil
	}
	if evt.ID == "" {
		generated, err := e.idgen()
		if err != nil {
			return err
		}
		evt.ID = generated
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.clock().UTC()
	}
	return e.sink.AppendAuditEvent(ctx, evt)
}

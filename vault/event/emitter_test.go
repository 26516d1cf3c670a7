package event

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
)

type captureSink struct {
	events []Event
	err    error
}

func (s *captureSink) AppendAuditEvent(_ context.Context, evt Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, evt)
	return nil
}

func TestEmitAssignsIDAndTimestamp(t *testing.T) {
	sink := &captureSink{}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	emitter := NewEmitter(sink).WithClock(func() time.Time { return fixed })

	err := emitter.Emit(context.Background(), Event{
		Type:    TypeIssuance,
		AssetID: "gold",
		Actor:   "issuer-1",
		Holder:  "alice",
		Value:   uint256.NewInt(10000),
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	got := sink.events[0]
	if got.ID == "" {
		t.Fatal("expected generated event id")
	}
	if !got.Timestamp.Equal(fixed) {
		t.Fatalf("expected clock timestamp, got %v", got.Timestamp)
	}
}

func TestEmitPreservesExplicitTimestamp(t *testing.T) {
	sink := &captureSink{}
	emitter := NewEmitter(sink)

	explicit := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := emitter.Emit(context.Background(), Event{Type: TypeRedemption, Timestamp: explicit}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !sink.events[0].Timestamp.Equal(explicit) {
		t.Fatalf("expected explicit timestamp preserved, got %v", sink.events[0].Timestamp)
	}
}

func TestEmitNilSafe(t *testing.T) {
	var emitter *Emitter
	if err := emitter.Emit(context.Background(), Event{Type: TypeIssuance}); err != nil {
		t.Fatalf("expected nil emitter to be a no-op, got %v", err)
	}

	empty := NewEmitter(nil)
	if err := empty.Emit(context.Background(), Event{Type: TypeIssuance}); err != nil {
		t.Fatalf("expected nil sink to be a no-op, got %v", err)
	}
}

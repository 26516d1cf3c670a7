package event

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/holiman/uint256"
)

func TestJSONLRoundTrip(t *testing.T) {
	events := []Event{
		{
			ID:        "evt-1",
			Seq:       1,
			Type:      TypeIssuance,
			AssetID:   "gold",
			Actor:     "issuer-1",
			Holder:    "alice",
			Value:     uint256.NewInt(10000),
			ReceiptID: "r1",
			Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:        "evt-2",
			Seq:       2,
			Type:      TypeRedemption,
			AssetID:   "gold",
			Actor:     "issuer-1",
			Holder:    "alice",
			Value:     uint256.NewInt(10000),
			ReceiptID: "r1",
			Timestamp: time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	if err := WriteJSONL(&buf, events); err != nil {
		t.Fatalf("write jsonl: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}

	decoded, err := ReadJSONL(&buf)
	if err != nil {
		t.Fatalf("read jsonl: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 events, got %d", len(decoded))
	}
	for i := range events {
		if decoded[i].ID != events[i].ID || decoded[i].Type != events[i].Type || decoded[i].Seq != events[i].Seq {
			t.Fatalf("event %d header mismatch: %+v", i, decoded[i])
		}
		if !decoded[i].Value.Eq(events[i].Value) {
			t.Fatalf("event %d value mismatch: %s", i, decoded[i].Value.Dec())
		}
		if !decoded[i].Timestamp.Equal(events[i].Timestamp) {
			t.Fatalf("event %d timestamp mismatch: %v", i, decoded[i].Timestamp)
		}
	}
}

func TestReadJSONLRejectsMalformedLine(t *testing.T) {
	if _, err := ReadJSONL(strings.NewReader("not-json\n")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestWriteJSONLNilValue(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, []Event{{ID: "evt-1", Type: TypeIssuance, Timestamp: time.Now()}}); err != nil {
		t.Fatalf("write jsonl: %v", err)
	}
	decoded, err := ReadJSONL(&buf)
	if err != nil {
		t.Fatalf("read jsonl: %v", err)
	}
	if !decoded[0].Value.IsZero() {
		t.Fatalf("expected zero value, got %s", decoded[0].Value.Dec())
	}
}

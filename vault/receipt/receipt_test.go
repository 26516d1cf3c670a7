package receipt

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestCloneDoesNotShareAmounts(t *testing.T) {
	original := Receipt{
		ID:            "r1",
		AssetID:       "gold",
		Owner:         "alice",
		RecordedValue: uint256.NewInt(10000),
		NetValue:      uint256.NewInt(9750),
		FeeAmount:     uint256.NewInt(250),
	}

	cloned := original.Clone()
	cloned.RecordedValue.SetUint64(1)

	if !original.RecordedValue.Eq(uint256.NewInt(10000)) {
		t.Fatalf("clone mutated original recorded value: %s", original.RecordedValue.Dec())
	}
	if !cloned.NetValue.Eq(original.NetValue) {
		t.Fatal("expected equal net values after clone")
	}
}

func TestCloneHandlesNilAmounts(t *testing.T) {
	cloned := Receipt{ID: "r1"}.Clone()
	if cloned.RecordedValue != nil || cloned.NetValue != nil || cloned.FeeAmount != nil {
		t.Fatal("expected nil amounts to stay nil")
	}
}

package order

import (
	"encoding/json"
	"testing"
)

func TestOrderWireFormat(t *testing.T) {
	o := Order{
		Price:     65012.3456,
		Amount:    1.5,
		PairID:    "btcusdt",
		AccountID: 42,
		Side:      SideSell,
	}

	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal order: %v", err)
	}

	want := `{"price":65012.3456,"amount":1.5,"pair_id":"btcusdt","account_id":42,"type":1}`
	if string(data) != want {
		t.Fatalf("unexpected wire encoding:\n got  %s\n want %s", data, want)
	}
}

func TestSideString(t *testing.T) {
	if got := SideBuy.String(); got != "BUY" {
		t.Errorf("SideBuy.String() = %q, want BUY", got)
	}
	if got := SideSell.String(); got != "SELL" {
		t.Errorf("SideSell.String() = %q, want SELL", got)
	}
}

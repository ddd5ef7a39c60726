package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampUnmarshalHeterogeneous(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Timestamp
	}{
		{"millis", `1735689600000`, Timestamp(1735689600000)},
		{"seconds", `1735689600`, Timestamp(1735689600000)},
		{"rfc3339", `"2025-01-01T00:00:00Z"`, Timestamp(1735689600000)},
		{"numeric string", `"1735689600000"`, Timestamp(1735689600000)},
		{"null", `null`, Timestamp(0)},
		{"garbage string", `"not a time"`, Timestamp(0)},
	}
	for _, tc := range cases {
		var got Timestamp
		if err := json.Unmarshal([]byte(tc.raw), &got); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestTimestampAfterStrict(t *testing.T) {
	a := Timestamp(1000)
	b := Timestamp(2000)
	if !b.After(a) {
		t.Fatalf("2000 must be after 1000")
	}
	if a.After(a) {
		t.Fatalf("After must be strict")
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	now := NewTimestamp(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	raw, err := json.Marshal(now)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Timestamp
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != now {
		t.Fatalf("round trip lost value: %d != %d", back, now)
	}
}

func TestMoneyJSON(t *testing.T) {
	raw, err := json.Marshal(NewMoney(12.345))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"12.35"` {
		t.Fatalf("marshal = %s, want \"12.35\"", raw)
	}

	var fromString Money
	if err := json.Unmarshal([]byte(`"99.90"`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	var fromNumber Money
	if err := json.Unmarshal([]byte(`99.9`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if !fromString.Equals(fromNumber) {
		t.Fatalf("string/number mismatch: %s != %s", fromString, fromNumber)
	}
}

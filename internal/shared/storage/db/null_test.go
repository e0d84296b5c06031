package db

import (
	"database/sql"
	"testing"
	"time"
)

func TestNullTimeRoundTrip(t *testing.T) {
	if NullTime(nil).Valid {
		t.Fatalf("nil should be invalid")
	}
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	got := TimePtr(NullTime(&now))
	if got == nil || !got.Equal(now) {
		t.Fatalf("unexpected %v", got)
	}
	if TimePtr(sql.NullTime{}) != nil {
		t.Fatalf("expected nil")
	}
}

func TestJSONBAndScanJSON(t *testing.T) {
	v, err := JSONB(nil)
	if err != nil || v != nil {
		t.Fatalf("nil should map to NULL, got %v %v", v, err)
	}
	v, err = JSONB(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]int
	ok, err := ScanJSON(v.([]byte), &out)
	if err != nil || !ok || out["a"] != 1 {
		t.Fatalf("scan: ok=%v err=%v out=%v", ok, err, out)
	}
	ok, err = ScanJSON(nil, &out)
	if ok || err != nil {
		t.Fatalf("empty column should report absent")
	}
}

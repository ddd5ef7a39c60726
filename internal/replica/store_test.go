package replica

import (
	"testing"
)

type sampleEntity struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	store, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func TestGetMissingKeyReturnsNil(t *testing.T) {
	store := newTestStore(t)
	raw, err := store.Get("missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if raw != nil {
		t.Fatalf("raw = %v, want nil", raw)
	}
}

func TestSetOverwritesSnapshot(t *testing.T) {
	store := newTestStore(t)
	if err := store.Set("orders", []byte(`[1]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set("orders", []byte(`[1,2]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	raw, err := store.Get("orders")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(raw) != `[1,2]` {
		t.Fatalf("raw = %s, want [1,2]", raw)
	}
}

func TestListRoundTrip(t *testing.T) {
	store := newTestStore(t)

	empty, err := GetList[sampleEntity](store, "entities")
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("empty = %d, want 0", len(empty))
	}

	list := []sampleEntity{{ID: "a", Value: 1}, {ID: "b", Value: 2}}
	if err := SetList(store, "entities", list); err != nil {
		t.Fatalf("set list: %v", err)
	}
	got, err := GetList[sampleEntity](store, "entities")
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].Value != 2 {
		t.Fatalf("got = %+v", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("oracle", "dsn"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

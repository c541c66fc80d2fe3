package artifact

import (
	"context"
	"errors"
	"testing"

	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestFSStorePutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir(), testLogger(t))
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}

	key := Key("CAT_01", "20240115093000")
	if key != "CAT_01/20240115093000/model.json" {
		t.Fatalf("unexpected artifact key %q", key)
	}

	payload := []byte(`{"slope":1.5}`)
	if err := store.Put(ctx, key, payload); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("Get: got %q, want %q", got, payload)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: expected ErrNotFound, got %v", err)
	}
}

func TestFSStoreMissingKeyIsNotFound(t *testing.T) {
	store, err := NewFSStore(t.TempDir(), testLogger(t))
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	if _, err := store.Get(context.Background(), Key("CAT_99", "nope")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFSStoreDeleteMissingIsNoop(t *testing.T) {
	store, err := NewFSStore(t.TempDir(), testLogger(t))
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	if err := store.Delete(context.Background(), Key("CAT_01", "missing")); err != nil {
		t.Fatalf("Delete of missing artifact should be a no-op, got %v", err)
	}
}

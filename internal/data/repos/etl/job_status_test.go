package etl

import (
	"context"
	"testing"

	"github.com/demandcast/forecast-backend/internal/data/repos/testutil"
	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
)

func TestJobStatusRepo_UpsertIdempotent(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	dbc := dbctx.WithTx(context.Background(), tx)
	repo := NewJobStatusRepo(gdb, testutil.Logger(t))

	if err := repo.Upsert(dbc, "sales_2024_01.csv", domain.ETLStatusFailed); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(dbc, "sales_2024_01.csv", domain.ETLStatusSuccess); err != nil {
		t.Fatalf("upsert again: %v", err)
	}

	got, err := repo.Get(dbc, "sales_2024_01.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Status != domain.ETLStatusSuccess {
		t.Fatalf("expected single SUCCESS row, got %+v", got)
	}

	var count int64
	if err := tx.Model(&domain.ETLJobStatus{}).
		Where("file_name = ?", "sales_2024_01.csv").
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one ledger row, got %d", count)
	}
}

func TestJobStatusRepo_GetMissing(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	dbc := dbctx.WithTx(context.Background(), tx)
	repo := NewJobStatusRepo(gdb, testutil.Logger(t))

	got, err := repo.Get(dbc, "never_seen.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown file, got %+v", got)
	}
}

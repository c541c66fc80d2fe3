package services

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/pkg/errs"
)

func TestRegistryService_CommitKeepsOneLatest(t *testing.T) {
	e := newEnv(t)
	ctx := ctxb()
	emptyJSON := datatypes.JSON([]byte("{}"))

	model := fitDailyModel(t, utcDay(2024, 1, 10), 30)

	v1, err := e.registrySvc.CommitVersion(ctx, "CAT_01", model,
		time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC), emptyJSON, emptyJSON)
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	v2, err := e.registrySvc.CommitVersion(ctx, "CAT_01", model,
		time.Date(2024, 1, 12, 8, 0, 0, 0, time.UTC), emptyJSON, emptyJSON)
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}

	latest, err := e.registrySvc.GetLatest(ctx, "CAT_01")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest.ID != v2.ID {
		t.Fatalf("expected version %d latest, got %d", v2.ID, latest.ID)
	}

	var latestCount int64
	if err := e.gdb.Model(&domain.ModelVersion{}).
		Where("category_id = ? AND is_latest = ?", "CAT_01", true).
		Count(&latestCount).Error; err != nil {
		t.Fatalf("count latest: %v", err)
	}
	if latestCount != 1 {
		t.Fatalf("expected exactly one latest row, got %d", latestCount)
	}

	// Retired versions keep their rows and artifacts for the audit trail.
	if _, err := e.store.Get(ctx, v1.ModelPath); err != nil {
		t.Fatalf("expected retired artifact retained: %v", err)
	}
	all, err := e.registrySvc.ListVersions(ctx, "CAT_01")
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 versions retained, got %d", len(all))
	}
}

func TestRegistryService_GetLatestUnknownCategory(t *testing.T) {
	e := newEnv(t)

	_, err := e.registrySvc.GetLatest(ctxb(), "CAT_NONE")
	if !errs.IsModelNotFound(err) {
		t.Fatalf("expected ModelNotFoundError, got %v", err)
	}
}

func TestRegistryService_LoadArtifact(t *testing.T) {
	e := newEnv(t)
	ctx := ctxb()
	emptyJSON := datatypes.JSON([]byte("{}"))

	model := fitDailyModel(t, utcDay(2024, 1, 10), 30)
	committed, err := e.registrySvc.CommitVersion(ctx, "CAT_01", model,
		time.Now().UTC(), emptyJSON, emptyJSON)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	loaded, err := e.registrySvc.LoadArtifact(ctx, committed)
	if err != nil {
		t.Fatalf("load artifact: %v", err)
	}
	if loaded == nil {
		t.Fatalf("expected a usable model")
	}

	// Missing blob.
	missing := &domain.ModelVersion{ModelPath: "CAT_01/00000000000000/model.json"}
	_, err = e.registrySvc.LoadArtifact(ctx, missing)
	if !errs.IsModelLoad(err) {
		t.Fatalf("expected ModelLoadError for missing artifact, got %v", err)
	}

	// Corrupt blob.
	if err := e.store.Put(ctx, committed.ModelPath, []byte("{not json")); err != nil {
		t.Fatalf("overwrite artifact: %v", err)
	}
	_, err = e.registrySvc.LoadArtifact(ctx, committed)
	if !errs.IsModelLoad(err) {
		t.Fatalf("expected ModelLoadError for corrupt artifact, got %v", err)
	}
}

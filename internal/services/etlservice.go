package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/demandcast/forecast-backend/internal/data/repos/etl"
	"github.com/demandcast/forecast-backend/internal/data/repos/sales"
	"github.com/demandcast/forecast-backend/internal/domain"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// ETLResult summarizes one batch ingestion run.
type ETLResult struct {
	Processed     []string          `json:"processed"`
	SkippedAsDone []string          `json:"skipped_as_done"`
	Failed        []CategoryOutcome `json:"failed"`
}

// ETLService loads raw sales CSV files into hourly per-category aggregates.
// Every file is guarded by the ingestion ledger: a file already recorded as
// SUCCESS is never processed twice, so re-running a batch is safe.
type ETLService interface {
	// ProcessFile ingests one CSV file. Returns (false, nil) when the ledger
	// says the file is already done.
	ProcessFile(ctx context.Context, path string) (bool, error)
	// RunBatch ingests every .csv file in the drop directory, isolating
	// per-file failures.
	RunBatch(ctx context.Context, dir string) (*ETLResult, error)
	// ListLedger returns the most recent ingestion ledger entries.
	ListLedger(ctx context.Context, limit int) ([]*domain.ETLJobStatus, error)
}

type etlService struct {
	db        *gorm.DB
	ledger    etl.JobStatusRepo
	salesRepo sales.HourlySalesRepo
	log       *logger.Logger
}

func NewETLService(
	db *gorm.DB,
	ledger etl.JobStatusRepo,
	salesRepo sales.HourlySalesRepo,
	baseLog *logger.Logger,
) ETLService {
	return &etlService{
		db:        db,
		ledger:    ledger,
		salesRepo: salesRepo,
		log:       baseLog.With("service", "ETLService"),
	}
}

func (s *etlService) ProcessFile(ctx context.Context, path string) (bool, error) {
	fileName := filepath.Base(path)

	record, err := s.ledger.Get(dbctx.New(ctx), fileName)
	if err != nil {
		return false, fmt.Errorf("read ingestion ledger: %w", err)
	}
	if record != nil && record.Status == domain.ETLStatusSuccess {
		s.log.Info("file already ingested, skipping", "file", fileName)
		return false, nil
	}

	rows, err := s.loadAndAggregate(path)
	if err == nil {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dbc := dbctx.WithTx(ctx, tx)
			if err := s.salesRepo.InsertBatch(dbc, rows); err != nil {
				return err
			}
			return s.ledger.Upsert(dbc, fileName, domain.ETLStatusSuccess)
		})
	}
	if err != nil {
		// Record the failure outside the aborted transaction so the ledger
		// row survives.
		if markErr := s.ledger.Upsert(dbctx.New(ctx), fileName, domain.ETLStatusFailed); markErr != nil {
			s.log.Error("failed to record FAILED ledger entry", "file", fileName, "error", markErr)
		}
		return false, fmt.Errorf("ingest %s: %w", fileName, err)
	}

	s.log.Info("ingested sales file", "file", fileName, "hourly_rows", len(rows))
	return true, nil
}

func (s *etlService) RunBatch(ctx context.Context, dir string) (*ETLResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read drop directory: %w", err)
	}

	result := &ETLResult{
		Processed:     []string{},
		SkippedAsDone: []string{},
		Failed:        []CategoryOutcome{},
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		processed, err := s.ProcessFile(ctx, path)
		if err != nil {
			result.Failed = append(result.Failed, CategoryOutcome{
				CategoryID: entry.Name(),
				Reason:     err.Error(),
			})
			continue
		}
		if processed {
			result.Processed = append(result.Processed, entry.Name())
		} else {
			result.SkippedAsDone = append(result.SkippedAsDone, entry.Name())
		}
	}
	return result, nil
}

func (s *etlService) ListLedger(ctx context.Context, limit int) ([]*domain.ETLJobStatus, error) {
	return s.ledger.ListRecent(dbctx.New(ctx), limit)
}

// loadAndAggregate parses a raw transactions CSV and buckets it into hourly
// per-category totals.
//
// Expected header: transaction_id,product_id,category_id,timestamp,quantity,price_per_unit
func (s *etlService) loadAndAggregate(path string) ([]*domain.HourlySales, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"category_id", "timestamp", "quantity", "price_per_unit"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	type bucket struct {
		sales    float64
		quantity float64
	}
	type bucketKey struct {
		hour     time.Time
		category string
	}
	buckets := map[bucketKey]*bucket{}

	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := parseTimestamp(rec[col["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(rec[col["quantity"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad quantity: %w", line, err)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[col["price_per_unit"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad price_per_unit: %w", line, err)
		}

		key := bucketKey{hour: ts.Truncate(time.Hour), category: strings.TrimSpace(rec[col["category_id"]])}
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.sales += qty * price
		b.quantity += qty
	}

	rows := make([]*domain.HourlySales, 0, len(buckets))
	for key, b := range buckets {
		rows = append(rows, &domain.HourlySales{
			Time:          key.hour,
			CategoryID:    key.category,
			TotalSales:    b.sales,
			TotalQuantity: b.quantity,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Time.Equal(rows[j].Time) {
			return rows[i].CategoryID < rows[j].CategoryID
		}
		return rows[i].Time.Before(rows[j].Time)
	})
	return rows, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", raw)
}

package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/demandcast/forecast-backend/internal/domain"
)

func dailySeries(start time.Time, days int, f func(i int) float64) Series {
	s := make(Series, 0, days)
	for i := 0; i < days; i++ {
		s = append(s, Point{DS: start.AddDate(0, 0, i), Y: f(i)})
	}
	return s
}

func TestFitRecoversLinearTrend(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := dailySeries(start, 60, func(i int) float64 { return 100 + 2*float64(i) })

	model, err := NewEngine().Fit(series, nil)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	dates := model.FutureRange(5, domain.GranularityDaily)
	if len(dates) != 5 {
		t.Fatalf("FutureRange: expected 5 dates, got %d", len(dates))
	}
	if !dates[0].Equal(start.AddDate(0, 0, 60)) {
		t.Fatalf("FutureRange: first date %v, want %v", dates[0], start.AddDate(0, 0, 60))
	}

	preds, err := model.Predict(dates, nil)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	for i, p := range preds {
		want := 100 + 2*float64(60+i)
		if math.Abs(p.YHat-want) > 1.0 {
			t.Fatalf("prediction %d: got %.2f, want ~%.2f", i, p.YHat, want)
		}
		if p.YHatLower > p.YHat || p.YHatUpper < p.YHat {
			t.Fatalf("prediction %d: bounds do not bracket point estimate", i)
		}
	}
}

func TestFitRejectsTooFewPoints(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := NewEngine().Fit(dailySeries(start, 1, func(int) float64 { return 1 }), nil); err == nil {
		t.Fatal("expected error for a single observation")
	}
}

func TestPredictRejectsEmptyRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	model, err := NewEngine().Fit(dailySeries(start, 10, func(i int) float64 { return float64(i) }), nil)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if _, err := model.Predict(nil, nil); err == nil {
		t.Fatal("expected error for empty date range")
	}
}

func TestEventUpliftAppliesOnEventDays(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	promoDay := start.AddDate(0, 0, 30)
	series := dailySeries(start, 60, func(i int) float64 {
		if i == 30 {
			return 300 // promotion spike
		}
		return 100
	})
	events := []Event{{Name: "winter_sale", Date: promoDay}}

	model, err := NewEngine().Fit(series, events)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	futurePromo := start.AddDate(0, 0, 70)
	withEvent, err := model.Predict([]time.Time{futurePromo}, []Event{{Name: "winter_sale", Date: futurePromo}})
	if err != nil {
		t.Fatalf("Predict with event: %v", err)
	}
	without, err := model.Predict([]time.Time{futurePromo}, nil)
	if err != nil {
		t.Fatalf("Predict without event: %v", err)
	}
	if withEvent[0].YHat <= without[0].YHat {
		t.Fatalf("event day prediction %.2f should exceed plain prediction %.2f", withEvent[0].YHat, without[0].YHat)
	}
}

func TestModelRoundTripsThroughArtifact(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	model, err := NewEngine().Fit(dailySeries(start, 30, func(i int) float64 { return 50 + float64(i) }), nil)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	raw, err := model.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	restored, err := UnmarshalModel(raw)
	if err != nil {
		t.Fatalf("UnmarshalModel: %v", err)
	}

	dates := model.FutureRange(3, domain.GranularityDaily)
	want, err := model.Predict(dates, nil)
	if err != nil {
		t.Fatalf("Predict original: %v", err)
	}
	got, err := restored.Predict(dates, nil)
	if err != nil {
		t.Fatalf("Predict restored: %v", err)
	}
	for i := range want {
		if math.Abs(want[i].YHat-got[i].YHat) > 1e-9 {
			t.Fatalf("restored model diverges at %d: %.6f vs %.6f", i, want[i].YHat, got[i].YHat)
		}
	}
}

func TestUnmarshalModelRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalModel([]byte("not json")); err == nil {
		t.Fatal("expected error for corrupt artifact")
	}
}

func TestFutureRangeMonthlyAndYearlySteps(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	model, err := NewEngine().Fit(dailySeries(start, 10, func(i int) float64 { return float64(i) }), nil)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	lastDay := start.AddDate(0, 0, 9)

	monthly := model.FutureRange(2, domain.GranularityMonthly)
	if !monthly[0].Equal(lastDay.AddDate(0, 1, 0)) || !monthly[1].Equal(lastDay.AddDate(0, 2, 0)) {
		t.Fatalf("monthly range wrong: %v", monthly)
	}
	yearly := model.FutureRange(2, domain.GranularityYearly)
	if !yearly[0].Equal(lastDay.AddDate(1, 0, 0)) || !yearly[1].Equal(lastDay.AddDate(2, 0, 0)) {
		t.Fatalf("yearly range wrong: %v", yearly)
	}
}

package forecast

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/demandcast/forecast-backend/internal/domain"
)

// Engine fits seasonalTrendModel instances: an additive decomposition of
// linear trend, day-of-week seasonality and per-event uplift, with residual
// based uncertainty intervals. It is deterministic for a given series.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// seasonalTrendModel is the serialized artifact format. All fields are
// exported so the fitted state round-trips through JSON.
type seasonalTrendModel struct {
	Origin      time.Time          `json:"origin"`
	LastDS      time.Time          `json:"last_ds"`
	Intercept   float64            `json:"intercept"`
	Slope       float64            `json:"slope"`
	Weekday     [7]float64         `json:"weekday"`
	EventUplift map[string]float64 `json:"event_uplift"`
	ResidualStd float64            `json:"residual_std"`
}

// interval width multiplier for an ~80% band, matching the reference
// engine's default uncertainty level.
const intervalZ = 1.28

func (e *Engine) Fit(series Series, events []Event) (Model, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("fit: need at least 2 observations, got %d", len(series))
	}

	sorted := make(Series, len(series))
	copy(sorted, series)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DS.Before(sorted[j].DS) })

	m := &seasonalTrendModel{
		Origin:      sorted[0].DS.UTC(),
		LastDS:      sorted[len(sorted)-1].DS.UTC(),
		EventUplift: map[string]float64{},
	}

	// Least-squares trend over fractional days since origin.
	n := float64(len(sorted))
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range sorted {
		x := p.DS.Sub(m.Origin).Hours() / 24
		sumX += x
		sumY += p.Y
		sumXY += x * p.Y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom != 0 {
		m.Slope = (n*sumXY - sumX*sumY) / denom
	}
	m.Intercept = (sumY - m.Slope*sumX) / n

	// Day-of-week offsets from trend residuals.
	var wdSum [7]float64
	var wdCount [7]int
	for _, p := range sorted {
		r := p.Y - m.trendAt(p.DS)
		wd := int(p.DS.UTC().Weekday())
		wdSum[wd] += r
		wdCount[wd]++
	}
	for wd := range m.Weekday {
		if wdCount[wd] > 0 {
			m.Weekday[wd] = wdSum[wd] / float64(wdCount[wd])
		}
	}

	// Per-event mean uplift of what trend and seasonality leave over.
	eventDays := eventsByDay(events)
	upliftSum := map[string]float64{}
	upliftCount := map[string]int{}
	for _, p := range sorted {
		names, ok := eventDays[DateKey(p.DS)]
		if !ok {
			continue
		}
		r := p.Y - m.trendAt(p.DS) - m.Weekday[int(p.DS.UTC().Weekday())]
		for _, name := range names {
			upliftSum[name] += r
			upliftCount[name]++
		}
	}
	for name, total := range upliftSum {
		m.EventUplift[name] = total / float64(upliftCount[name])
	}

	// Residual spread drives the uncertainty interval.
	var sq float64
	for _, p := range sorted {
		r := p.Y - m.pointEstimate(p.DS, eventDays)
		sq += r * r
	}
	m.ResidualStd = math.Sqrt(sq / n)

	return m, nil
}

func (m *seasonalTrendModel) trendAt(t time.Time) float64 {
	return m.Intercept + m.Slope*(t.Sub(m.Origin).Hours()/24)
}

func (m *seasonalTrendModel) pointEstimate(t time.Time, eventDays map[string][]string) float64 {
	y := m.trendAt(t) + m.Weekday[int(t.UTC().Weekday())]
	for _, name := range eventDays[DateKey(t)] {
		y += m.EventUplift[name]
	}
	return y
}

func (m *seasonalTrendModel) Predict(dates []time.Time, events []Event) ([]Prediction, error) {
	if len(dates) == 0 {
		return nil, fmt.Errorf("predict: empty date range")
	}
	eventDays := eventsByDay(events)
	width := intervalZ * m.ResidualStd
	out := make([]Prediction, 0, len(dates))
	for _, d := range dates {
		y := m.pointEstimate(d, eventDays)
		out = append(out, Prediction{
			DS:        d,
			YHat:      y,
			YHatLower: y - width,
			YHatUpper: y + width,
		})
	}
	return out, nil
}

func (m *seasonalTrendModel) FutureRange(periods int, g domain.Granularity) []time.Time {
	anchor := time.Date(
		m.LastDS.Year(), m.LastDS.Month(), m.LastDS.Day(),
		0, 0, 0, 0, time.UTC,
	)
	return g.RangeAfter(anchor, periods)
}

func (m *seasonalTrendModel) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalModel restores a model from its artifact bytes.
func UnmarshalModel(data []byte) (Model, error) {
	var m seasonalTrendModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if m.EventUplift == nil {
		m.EventUplift = map[string]float64{}
	}
	return &m, nil
}

func eventsByDay(events []Event) map[string][]string {
	if len(events) == 0 {
		return map[string][]string{}
	}
	byDay := make(map[string][]string, len(events))
	for _, ev := range events {
		key := DateKey(ev.Date)
		byDay[key] = append(byDay[key], ev.Name)
	}
	return byDay
}

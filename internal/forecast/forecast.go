package forecast

import (
	"time"

	"github.com/demandcast/forecast-backend/internal/domain"
)

// Point is one observation of the series being forecast.
type Point struct {
	DS time.Time `json:"ds"`
	Y  float64   `json:"y"`
}

// Series is an ordered set of observations.
type Series []Point

// Event is an exogenous regressor: a named per-day occurrence such as a
// promotion or holiday.
type Event struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// Prediction is one forecast point with its uncertainty interval.
type Prediction struct {
	DS        time.Time `json:"ds"`
	YHat      float64   `json:"yhat"`
	YHatLower float64   `json:"yhat_lower"`
	YHatUpper float64   `json:"yhat_upper"`
}

// Model is a fitted forecasting model. The control plane treats it as an
// opaque capability; only this package knows what is inside.
type Model interface {
	// Predict evaluates the model at the given dates, applying any events
	// that fall on them.
	Predict(dates []time.Time, events []Event) ([]Prediction, error)
	// FutureRange returns periods future dates past the end of the
	// training data, stepping at the given cadence.
	FutureRange(periods int, g domain.Granularity) []time.Time
	// Marshal serializes the fitted model into its artifact form.
	Marshal() ([]byte, error)
}

// Forecaster fits a model to a series.
type Forecaster interface {
	Fit(series Series, events []Event) (Model, error)
}

// DateKey normalizes a timestamp to a calendar-day bucket in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

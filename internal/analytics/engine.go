package analytics

import (
	"context"
	"time"

	"github.com/guuisouza/smartlocker-backend-api/internal/store"
)

// Engine builds the usage dashboard. It is stateless: every Dashboard call
// reads the movement history fresh and derives all facets from that one
// snapshot, never mutating anything.
type Engine struct {
	store store.Store
	loc   *time.Location
}

// NewEngine creates an analytics engine. loc sets the local calendar day
// boundary used by the forecast and last-week facets.
func NewEngine(s store.Store, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{store: s, loc: loc}
}

// Dashboard fetches the movement history once and computes every facet
// relative to now.
func (e *Engine) Dashboard(ctx context.Context, now time.Time) (*Report, error) {
	recs, err := e.store.MovementRecords(ctx)
	if err != nil {
		return nil, err
	}
	return BuildReport(recs, now, e.loc), nil
}

// BuildReport computes all facets over an already-fetched history snapshot.
// The facets are independent pure functions; one degenerate input (empty
// history, too few samples) only zeroes its own facet.
func BuildReport(recs []store.MovementRecord, now time.Time, loc *time.Location) *Report {
	return &Report{
		WithdrawalsByCourse:    WithdrawalsByCourse(recs),
		MostFrequentDiscipline: MostFrequentDiscipline(recs),
		AverageUsageMinutes:    AverageUsageMinutes(recs),
		MedianUsageMinutes:     MedianUsageMinutes(recs),
		WithdrawalsByPeriod:    WithdrawalsByPeriod(recs),
		TopAverageUsage:        TopAverageUsage(recs),
		UsageStdDeviation:      UsageStdDeviation(recs),
		NormalDistribution:     NormalDistribution(recs),
		UsageSkewness:          UsageSkewness(recs),
		WithdrawalForecast:     WithdrawalForecast(recs, now, loc),
		LastWeekWithdrawals:    LastWeekWithdrawals(recs, now, loc),
		OutstandingNotebooks:   OutstandingNotebooks(recs),
	}
}

package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/guuisouza/smartlocker-backend-api/internal/model"
	"github.com/guuisouza/smartlocker-backend-api/internal/store"
)

// distributionStepMinutes is the sampling step of the normal model curve.
const distributionStepMinutes = 5.0

// topUsageSize is how many devices the usage ranking keeps.
const topUsageSize = 5

const (
	skewInsufficient = "insufficient data to estimate skewness (fewer than 3 completed loans)"
	skewRight        = "right-skewed: a few loans run much longer than the typical usage time"
	skewLeft         = "left-skewed: a few loans run much shorter than the typical usage time"
	skewSymmetric    = "approximately symmetric around the average usage time"
)

// closedDurations extracts the usage times, in fractional minutes, of every
// completed movement.
func closedDurations(recs []store.MovementRecord) []float64 {
	durations := make([]float64, 0, len(recs))
	for _, r := range recs {
		if r.Returned() {
			durations = append(durations, r.UsageMinutes())
		}
	}
	return durations
}

// WithdrawalsByCourse counts all movements per course short name. Movements
// whose schedule has no course are excluded. Output is sorted by course name
// so the report shape is stable.
func WithdrawalsByCourse(recs []store.MovementRecord) []CourseCount {
	counts := make(map[string]int)
	for _, r := range recs {
		if r.CourseID == nil {
			continue
		}
		counts[r.CourseName]++
	}

	out := make([]CourseCount, 0, len(counts))
	for course, n := range counts {
		out = append(out, CourseCount{Course: course, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Course < out[j].Course })
	return out
}

// WithdrawalsByPeriod counts all movements per course period (e.g. morning
// vs night classes). Movements without a course are excluded.
func WithdrawalsByPeriod(recs []store.MovementRecord) []PeriodCount {
	counts := make(map[string]int)
	for _, r := range recs {
		if r.CourseID == nil {
			continue
		}
		counts[r.CoursePeriod]++
	}

	out := make([]PeriodCount, 0, len(counts))
	for period, n := range counts {
		out = append(out, PeriodCount{Period: period, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// MostFrequentDiscipline finds the schedule with the most movements and
// reports its discipline, weekday and count. Ties resolve to the schedule
// encountered first. Nil when there is no history.
func MostFrequentDiscipline(recs []store.MovementRecord) *DisciplineCount {
	counts := make(map[int64]int)
	for _, r := range recs {
		counts[r.ScheduleID]++
	}

	var best *DisciplineCount
	seen := make(map[int64]bool)
	for _, r := range recs {
		if seen[r.ScheduleID] {
			continue
		}
		seen[r.ScheduleID] = true
		if best == nil || counts[r.ScheduleID] > best.Count {
			best = &DisciplineCount{
				Discipline: r.Discipline,
				DayOfWeek:  r.DayOfWeek,
				Count:      counts[r.ScheduleID],
			}
		}
	}
	return best
}

// AverageUsageMinutes is the mean usage time of completed movements, or 0
// when none have completed.
func AverageUsageMinutes(recs []store.MovementRecord) float64 {
	return mean(closedDurations(recs))
}

// MedianUsageMinutes is the median usage time of completed movements, or 0
// when none have completed.
func MedianUsageMinutes(recs []store.MovementRecord) float64 {
	return median(closedDurations(recs))
}

// TopAverageUsage ranks devices by mean usage time of their completed
// movements, longest first, keeping the top five. Averages are rounded to
// two decimal places; ties order by device name.
func TopAverageUsage(recs []store.MovementRecord) []DeviceUsage {
	type acc struct {
		name  string
		total float64
		n     int
	}
	byNotebook := make(map[int64]*acc)
	for _, r := range recs {
		if !r.Returned() {
			continue
		}
		a, ok := byNotebook[r.NotebookID]
		if !ok {
			a = &acc{name: r.DeviceName}
			byNotebook[r.NotebookID] = a
		}
		a.total += r.UsageMinutes()
		a.n++
	}

	out := make([]DeviceUsage, 0, len(byNotebook))
	for _, a := range byNotebook {
		out = append(out, DeviceUsage{
			DeviceName:     a.name,
			AverageMinutes: roundTo(a.total/float64(a.n), 2),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageMinutes != out[j].AverageMinutes {
			return out[i].AverageMinutes > out[j].AverageMinutes
		}
		return out[i].DeviceName < out[j].DeviceName
	})
	if len(out) > topUsageSize {
		out = out[:topUsageSize]
	}
	return out
}

// UsageStdDeviation is the sample standard deviation of completed usage
// times, rounded to one decimal place.
func UsageStdDeviation(recs []store.MovementRecord) float64 {
	return roundTo(sampleStdDev(closedDurations(recs)), 1)
}

// NormalDistribution fits a normal model to the completed usage times and
// samples it every five minutes from 0 up to ceil(mean + 4 sigma). Each
// point carries the Gaussian density at that minute and the standard normal
// cumulative value of its z-score. Empty when there are no completed
// movements or the durations have no dispersion.
func NormalDistribution(recs []store.MovementRecord) []DistributionPoint {
	durations := closedDurations(recs)
	points := []DistributionPoint{}
	if len(durations) == 0 {
		return points
	}

	mu := mean(durations)
	sigma := sampleStdDev(durations)
	if sigma == 0 {
		return points
	}

	xMax := math.Ceil(mu + 4*sigma)
	for x := 0.0; x <= xMax; x += distributionStepMinutes {
		points = append(points, DistributionPoint{
			Minutes:    x,
			Density:    roundTo(normalPDF(x, mu, sigma), 6),
			Cumulative: roundTo(stdNormalCDF((x-mu)/sigma), 6),
		})
	}
	return points
}

// UsageSkewness computes the sample skewness of completed usage times and
// classifies the shape of the distribution. With fewer than three samples
// the value is nil and the interpretation says why.
func UsageSkewness(recs []store.MovementRecord) SkewnessSummary {
	durations := closedDurations(recs)
	if len(durations) < 3 {
		return SkewnessSummary{Interpretation: skewInsufficient}
	}

	value, ok := sampleSkewness(durations)
	if !ok {
		// Equal durations: no dispersion, trivially symmetric.
		zero := 0.0
		return SkewnessSummary{Value: &zero, Interpretation: skewSymmetric}
	}

	interpretation := skewSymmetric
	switch {
	case value > 0.5:
		interpretation = skewRight
	case value < -0.5:
		interpretation = skewLeft
	}
	return SkewnessSummary{Value: &value, Interpretation: interpretation}
}

// WithdrawalForecast predicts withdrawals for the next seven non-Sunday
// calendar days. Historical input is every completed movement checked out
// Monday through Saturday; each weekday's average is total scans over
// distinct calendar days observed, and a least-squares line over
// (weekday index, average) extrapolates forward. Estimates floor at zero.
// Fewer than two weekdays with data is not enough to fit a line, so the
// forecast comes back empty.
func WithdrawalForecast(recs []store.MovementRecord, now time.Time, loc *time.Location) []ForecastEntry {
	type weekdayStat struct {
		total int
		days  map[string]struct{}
	}
	stats := make(map[time.Weekday]*weekdayStat)
	for _, r := range recs {
		if !r.Returned() {
			continue
		}
		local := r.CheckoutAt.In(loc)
		wd := local.Weekday()
		if wd == time.Sunday {
			continue
		}
		s, ok := stats[wd]
		if !ok {
			s = &weekdayStat{days: make(map[string]struct{})}
			stats[wd] = s
		}
		s.total++
		s.days[local.Format("2006-01-02")] = struct{}{}
	}

	entries := []ForecastEntry{}
	if len(stats) < 2 {
		return entries
	}

	var xs, ys []float64
	for wd := time.Monday; wd <= time.Saturday; wd++ {
		s, ok := stats[wd]
		if !ok {
			continue
		}
		xs = append(xs, float64(wd))
		ys = append(ys, float64(s.total)/float64(len(s.days)))
	}
	slope, intercept := linearRegression(xs, ys)

	day := now.In(loc)
	for len(entries) < 7 {
		day = day.AddDate(0, 0, 1)
		if day.Weekday() == time.Sunday {
			continue
		}
		estimate := intercept + slope*float64(day.Weekday())
		if estimate < 0 {
			estimate = 0
		}
		entries = append(entries, ForecastEntry{
			Date:              day.Format("2006-01-02"),
			EstimatedQuantity: int(math.Round(estimate)),
		})
	}
	return entries
}

// LastWeekWithdrawals counts checkouts per weekday over the ISO week before
// the current one. The result always has seven entries, Sunday first,
// zero-filled for weekdays without withdrawals.
func LastWeekWithdrawals(recs []store.MovementRecord, now time.Time, loc *time.Location) []DailyCount {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	// ISO weeks run Monday to Sunday.
	currentMonday := midnight.AddDate(0, 0, -((int(midnight.Weekday()) + 6) % 7))
	previousMonday := currentMonday.AddDate(0, 0, -7)

	var counts [7]int
	for _, r := range recs {
		t := r.CheckoutAt.In(loc)
		if !t.Before(previousMonday) && t.Before(currentMonday) {
			counts[int(t.Weekday())]++
		}
	}

	out := make([]DailyCount, 0, len(model.WeekdayLabels))
	for i, label := range model.WeekdayLabels {
		out = append(out, DailyCount{DayOfWeek: label, Count: counts[i]})
	}
	return out
}

// OutstandingNotebooks lists the movements still waiting for a return,
// most recent checkout first.
func OutstandingNotebooks(recs []store.MovementRecord) []OutstandingLoan {
	out := []OutstandingLoan{}
	for _, r := range recs {
		if r.Returned() {
			continue
		}
		out = append(out, OutstandingLoan{
			DeviceName: r.DeviceName,
			Discipline: r.Discipline,
			CheckoutAt: r.CheckoutAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CheckoutAt.After(out[j].CheckoutAt) })
	return out
}

package analytics

import "time"

// Report is the fixed-shape dashboard payload. Every facet has a defined
// zero value so an empty history still renders a complete report.
type Report struct {
	WithdrawalsByCourse    []CourseCount       `json:"withdrawals_by_course"`
	MostFrequentDiscipline *DisciplineCount    `json:"most_frequent_discipline"`
	AverageUsageMinutes    float64             `json:"average_usage_minutes"`
	MedianUsageMinutes     float64             `json:"median_usage_minutes"`
	WithdrawalsByPeriod    []PeriodCount       `json:"withdrawals_by_period"`
	TopAverageUsage        []DeviceUsage       `json:"top_average_usage"`
	UsageStdDeviation      float64             `json:"usage_std_deviation"`
	NormalDistribution     []DistributionPoint `json:"normal_distribution"`
	UsageSkewness          SkewnessSummary     `json:"usage_skewness"`
	WithdrawalForecast     []ForecastEntry     `json:"withdrawal_forecast"`
	LastWeekWithdrawals    []DailyCount        `json:"last_week_withdrawals"`
	OutstandingNotebooks   []OutstandingLoan   `json:"outstanding_notebooks"`
}

// CourseCount is the number of withdrawals attributed to one course.
type CourseCount struct {
	Course string `json:"course"`
	Count  int    `json:"count"`
}

// PeriodCount is the number of withdrawals attributed to one course period.
type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// DisciplineCount identifies the schedule with the most withdrawals.
type DisciplineCount struct {
	Discipline string `json:"discipline"`
	DayOfWeek  string `json:"day_of_week"`
	Count      int    `json:"count"`
}

// DeviceUsage is one entry of the top-usage ranking.
type DeviceUsage struct {
	DeviceName     string  `json:"device_name"`
	AverageMinutes float64 `json:"average_minutes"`
}

// DistributionPoint is one sampled point of the fitted normal model.
type DistributionPoint struct {
	Minutes    float64 `json:"minutes"`
	Density    float64 `json:"density"`
	Cumulative float64 `json:"cumulative"`
}

// SkewnessSummary carries the sample skewness and its plain-language
// reading. Value is nil when there are too few completed loans to estimate.
type SkewnessSummary struct {
	Value          *float64 `json:"value"`
	Interpretation string   `json:"interpretation"`
}

// ForecastEntry is the estimated withdrawal count for one upcoming day.
type ForecastEntry struct {
	Date              string `json:"date"`
	EstimatedQuantity int    `json:"estimated_quantity"`
}

// DailyCount is the withdrawal count for one weekday of the last week.
type DailyCount struct {
	DayOfWeek string `json:"day_of_week"`
	Count     int    `json:"count"`
}

// OutstandingLoan is a notebook that has been checked out and not returned.
type OutstandingLoan struct {
	DeviceName string    `json:"device_name"`
	Discipline string    `json:"discipline"`
	CheckoutAt time.Time `json:"checkout_datetime"`
}

package aggregate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/riskledger/riskledger/internal/model"
)

// BlankFormat is the frequency key used for rows with an empty payment format.
const BlankFormat = "(blank)"

// DefaultTopN is the number of banks kept per side when none is given.
const DefaultTopN = 5

// Aggregates holds running statistics over scored transactions. Per-bank
// volumes are kept exactly per key; ranking happens in Finalize.
// Aggregates is not safe for concurrent use.
type Aggregates struct {
	volume    decimal.Decimal
	count     int64
	min       decimal.Decimal
	max       decimal.Decimal
	formats   map[string]int64
	fromBanks map[string]decimal.Decimal
	toBanks   map[string]decimal.Decimal
	anomalies int64
	levels    map[model.RiskLevel]int64
}

// New creates empty aggregates.
func New() *Aggregates {
	return &Aggregates{
		formats:   make(map[string]int64),
		fromBanks: make(map[string]decimal.Decimal),
		toBanks:   make(map[string]decimal.Decimal),
		levels:    make(map[model.RiskLevel]int64),
	}
}

// Update folds a batch of transactions into the running totals.
func (a *Aggregates) Update(txns []model.Transaction) {
	for _, t := range txns {
		a.add(t)
	}
}

func (a *Aggregates) add(t model.Transaction) {
	if a.count == 0 || t.Amount.LessThan(a.min) {
		a.min = t.Amount
	}
	if a.count == 0 || t.Amount.GreaterThan(a.max) {
		a.max = t.Amount
	}
	a.count++
	a.volume = a.volume.Add(t.Amount)

	format := strings.TrimSpace(t.PaymentFormat)
	if format == "" {
		format = BlankFormat
	}
	a.formats[format]++

	if t.FromBank != "" {
		a.fromBanks[t.FromBank] = a.fromBanks[t.FromBank].Add(t.Amount)
	}
	if t.ToBank != "" {
		a.toBanks[t.ToBank] = a.toBanks[t.ToBank].Add(t.Amount)
	}

	if t.MLAnomaly {
		a.anomalies++
	}
	if t.RiskLevel != "" {
		a.levels[t.RiskLevel]++
	}
}

// Merge folds other into a. Merging is associative, so per-batch partials can
// be combined in any grouping and produce the same totals.
func (a *Aggregates) Merge(other *Aggregates) {
	if other == nil || other.count == 0 {
		return
	}
	if a.count == 0 || other.min.LessThan(a.min) {
		a.min = other.min
	}
	if a.count == 0 || other.max.GreaterThan(a.max) {
		a.max = other.max
	}
	a.count += other.count
	a.volume = a.volume.Add(other.volume)
	a.anomalies += other.anomalies

	for k, v := range other.formats {
		a.formats[k] += v
	}
	for k, v := range other.fromBanks {
		a.fromBanks[k] = a.fromBanks[k].Add(v)
	}
	for k, v := range other.toBanks {
		a.toBanks[k] = a.toBanks[k].Add(v)
	}
	for k, v := range other.levels {
		a.levels[k] += v
	}
}

// Count returns the number of transactions folded in so far.
func (a *Aggregates) Count() int64 { return a.count }

// FormatCount is one payment-format frequency.
type FormatCount struct {
	Format string `json:"format"`
	Count  int64  `json:"count"`
}

// BankVolume is one bank's total volume.
type BankVolume struct {
	Bank   string          `json:"bank"`
	Volume decimal.Decimal `json:"volume"`
}

// LevelCounts counts transactions per risk level.
type LevelCounts struct {
	Low    int64 `json:"low"`
	Medium int64 `json:"medium"`
	High   int64 `json:"high"`
}

// Summary is a finalized, read-only snapshot of Aggregates.
type Summary struct {
	TotalVolume    decimal.Decimal `json:"total_volume"`
	TotalCount     int64           `json:"total_transactions"`
	Average        decimal.Decimal `json:"average_amount"`
	Min            decimal.Decimal `json:"min_amount"`
	Max            decimal.Decimal `json:"max_amount"`
	PaymentFormats []FormatCount   `json:"payment_formats"`
	TopFromBanks   []BankVolume    `json:"top_from_banks"`
	TopToBanks     []BankVolume    `json:"top_to_banks"`

	// Anomalies and Levels depend on the batch size: anomaly flags and
	// account baselines are fitted per batch. The fields above do not.
	Anomalies int64       `json:"anomalies"`
	Levels    LevelCounts `json:"risk_levels"`
}

// Finalize returns a snapshot with the top n banks per side. It does not
// modify a, so it may be called mid-stream. An empty stream yields zero
// min, max and average.
func (a *Aggregates) Finalize(n int) Summary {
	if n <= 0 {
		n = DefaultTopN
	}

	s := Summary{
		TotalVolume:    a.volume,
		TotalCount:     a.count,
		Average:        decimal.Zero,
		Min:            a.min,
		Max:            a.max,
		PaymentFormats: sortedFormats(a.formats),
		TopFromBanks:   topBanks(a.fromBanks, n),
		TopToBanks:     topBanks(a.toBanks, n),
		Anomalies:      a.anomalies,
		Levels: LevelCounts{
			Low:    a.levels[model.RiskLow],
			Medium: a.levels[model.RiskMedium],
			High:   a.levels[model.RiskHigh],
		},
	}
	if a.count > 0 {
		s.Average = a.volume.Div(decimal.NewFromInt(a.count))
	}
	return s
}

// sortedFormats orders frequencies by count descending, then name.
func sortedFormats(m map[string]int64) []FormatCount {
	out := make([]FormatCount, 0, len(m))
	for k, v := range m {
		out = append(out, FormatCount{Format: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Format < out[j].Format
	})
	return out
}

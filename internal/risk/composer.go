package risk

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/riskledger/riskledger/internal/config"
	"github.com/riskledger/riskledger/internal/model"
)

// MaxScore is the ceiling every composite score is clamped to.
const MaxScore = 100

type band struct {
	over   decimal.Decimal
	points int
}

// Composer computes composite risk scores from a scoring table. It holds no
// state beyond its configuration and is safe for concurrent use.
type Composer struct {
	cumulative bool
	bands      []band // ascending by threshold
	formats    map[string]int
	laundering int
	devK       float64
	devPenalty int
	anomaly    int
	levels     config.LevelBands
}

// NewComposer creates a Composer from cfg.
func NewComposer(cfg config.ScoringConfig) *Composer {
	c := &Composer{
		cumulative: cfg.AmountPolicy != config.PolicyBanded,
		formats:    make(map[string]int, len(cfg.PaymentFormats)),
		laundering: cfg.LaunderingPenalty,
		devK:       cfg.Deviation.K,
		devPenalty: cfg.Deviation.Penalty,
		anomaly:    cfg.AnomalyPenalty,
		levels:     cfg.Levels,
	}
	for _, b := range cfg.SortedBands() {
		c.bands = append(c.bands, band{over: decimal.NewFromFloat(b.Over), points: b.Points})
	}
	for k, v := range cfg.PaymentFormats {
		c.formats[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return c
}

// Explain returns the points each component contributes for t.
func (c *Composer) Explain(t model.Transaction, baselines Baselines) model.Breakdown {
	return model.Breakdown{
		Amount:        c.amountPoints(t.Amount),
		PaymentFormat: c.formats[strings.ToLower(strings.TrimSpace(t.PaymentFormat))],
		Laundering:    flagPoints(t.IsLaundering, c.laundering),
		Deviation:     c.deviationPoints(t, baselines),
		Anomaly:       flagPoints(t.MLAnomaly, c.anomaly),
	}
}

// ScoreRow returns the composite score for t, clamped to [0, MaxScore].
func (c *Composer) ScoreRow(t model.Transaction, baselines Baselines) int {
	return clamp(c.Explain(t, baselines).Sum())
}

// Level bands a score into Low, Medium or High.
func (c *Composer) Level(score int) model.RiskLevel {
	switch {
	case score <= c.levels.LowMax:
		return model.RiskLow
	case score <= c.levels.MediumMax:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

// Score returns a scored copy of t along with its breakdown. anomaly is the
// outlier flag for t from the batch's anomaly scorer.
func (c *Composer) Score(t model.Transaction, anomaly bool, baselines Baselines) (model.Transaction, model.Breakdown) {
	t.MLAnomaly = anomaly
	b := c.Explain(t, baselines)
	score := clamp(b.Sum())
	return t.Scored(anomaly, score, c.Level(score)), b
}

func (c *Composer) amountPoints(amount decimal.Decimal) int {
	points := 0
	for _, b := range c.bands {
		if !amount.GreaterThan(b.over) {
			break
		}
		if c.cumulative {
			points += b.points
		} else {
			points = b.points
		}
	}
	return points
}

func (c *Composer) deviationPoints(t model.Transaction, baselines Baselines) int {
	b, ok := baselines[t.FromAccount]
	if !ok || t.FromAccount == "" || b.StdDev <= 0 {
		return 0
	}
	if t.Amount.InexactFloat64() > b.Mean+c.devK*b.StdDev {
		return c.devPenalty
	}
	return 0
}

func flagPoints(set bool, points int) int {
	if set {
		return points
	}
	return 0
}

func clamp(score int) int {
	return max(0, min(score, MaxScore))
}

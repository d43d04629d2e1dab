package portfolio

import (
	"context"
	"time"

	"go.uber.org/zap"

	"Investaur/internal/model"
)

// Payment frequencies.
const (
	FrequencyQuarterly = "Quarterly"
	FrequencyNone      = model.NA
)

// DividendRow is the projected income of one holding.
type DividendRow struct {
	Ticker       string             `json:"ticker"`
	Shares       float64            `json:"shares"`
	Rate         model.Opt[float64] `json:"rate"`
	Yield        model.Opt[float64] `json:"yield"`
	ExDate       model.Opt[string]  `json:"ex_date"`
	AnnualIncome float64            `json:"annual_income"`
	Frequency    string             `json:"frequency"`
}

// DividendReport projects dividend income across the ledger.
type DividendReport struct {
	Rows        []DividendRow          `json:"rows"`
	ByMonth     map[time.Month]float64 `json:"by_month"`
	TotalAnnual float64                `json:"total_annual"`
	MonthlyAvg  float64                `json:"monthly"`
	WeeklyAvg   float64                `json:"weekly"`
	Skipped     []string               `json:"skipped,omitempty"`
}

// Dividends fetches each holding's dividend data and projects a quarterly
// payment schedule starting this month. Holdings whose fundamentals fail are
// listed in Skipped.
func (l *Ledger) Dividends(ctx context.Context) DividendReport {
	rep := DividendReport{ByMonth: map[time.Month]float64{}}
	month := l.now().Month()
	for _, h := range l.Holdings() {
		f, err := l.provider.Fundamentals(ctx, h.Ticker)
		if err != nil {
			l.log.Warn("fundamentals unavailable, skipping dividends", zap.String("ticker", h.Ticker), zap.Error(err))
			rep.Skipped = append(rep.Skipped, h.Ticker)
			continue
		}

		row := DividendRow{
			Ticker:    h.Ticker,
			Shares:    h.Shares,
			Rate:      f.DividendRate,
			Yield:     f.DividendYield,
			Frequency: FrequencyNone,
		}
		if ts, ok := f.ExDividendDate.Get(); ok && ts > 0 {
			row.ExDate = model.Some(time.Unix(ts, 0).UTC().Format(DateLayout))
		}
		rate := f.DividendRate.Or(0)
		row.AnnualIncome = rate * h.Shares
		if rate > 0 {
			row.Frequency = FrequencyQuarterly
		}
		if row.AnnualIncome > 0 {
			for _, offset := range []int{0, 3, 6, 9} {
				m := time.Month((int(month)+offset-1)%12 + 1)
				rep.ByMonth[m] += row.AnnualIncome / 4
			}
		}
		rep.TotalAnnual += row.AnnualIncome
		rep.Rows = append(rep.Rows, row)
	}
	rep.MonthlyAvg = rep.TotalAnnual / 12
	rep.WeeklyAvg = rep.TotalAnnual / 52
	return rep
}

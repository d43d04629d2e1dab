package model

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/dustin/go-humanize"
)

// USD renders v as a dollar amount with thousands separators, e.g. "$99,000.00".
func USD(v float64) string {
	return money.New(int64(math.Round(v*100)), money.USD).Display()
}

// SignedUSD is USD with a leading "+" for positive amounts.
func SignedUSD(v float64) string {
	m := money.New(int64(math.Round(v*100)), money.USD)
	if m.IsPositive() {
		return "+" + m.Display()
	}
	return m.Display()
}

// BigUSD abbreviates large dollar amounts: "$3.20T", "$450.00B", "$12.50M",
// and "$950,000" below a million.
func BigUSD(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	}
	return "$" + humanize.Comma(int64(math.Round(v)))
}

// Volume renders a share count with thousands separators.
func Volume(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

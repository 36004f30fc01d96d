package roi

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders a dollar amount in the calculator's compact style:
// millions with one decimal ($1.3M), thousands truncated to whole units ($36K),
// anything smaller as whole dollars with separators ($999).
func FormatCurrency(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "$" + strconv.FormatFloat(v, 'f', -1, 64)
	case v >= 1_000_000:
		millions := math.Round(v/1_000_000*10) / 10
		return "$" + strconv.FormatFloat(millions, 'f', 1, 64) + "M"
	case v >= 1_000:
		return "$" + strconv.FormatFloat(math.Trunc(v/1_000), 'f', 0, 64) + "K"
	}
	if v < 0 {
		return "-$" + printer.Sprintf("%d", int64(math.Round(-v)))
	}
	return "$" + printer.Sprintf("%d", int64(math.Round(v)))
}

// FormatNumber applies en-US thousands separators, keeping up to three
// fraction digits.
func FormatNumber(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// FormatPercent appends a literal percent sign. The value is not rounded.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

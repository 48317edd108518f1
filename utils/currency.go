package utils

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency formats an amount in dollars with thousands separators.
// Example: 1234.5 -> "$1,234.50"
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}
	return sign + "$" + moneyPrinter.Sprintf("%.2f", RoundMoney(amount))
}

// RoundMoney rounds to whole cents.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

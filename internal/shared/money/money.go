package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const symbol = "₹"

var printer = message.NewPrinter(language.English)

// Format renders an amount in the smallest currency unit with digit grouping, e.g. ₹14,700.
func Format(amount int64) string {
	return printer.Sprintf("%s%d", symbol, amount)
}

// Package format renders money and metered quantities for display in
// the account's locale. Formatting is a display concern only; nothing
// here rounds the stored figures.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Money renders an amount with two fixed decimals and the currency
// symbol appended, using the locale's digit grouping and decimal
// separator ("1 234,56 zł" for pl-PL, "1,234.56 $" for en-US).
func Money(amount float64, symbol, locale string) string {
	p := printerFor(locale)
	return p.Sprintf("%v %s",
		number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)),
		symbol)
}

// Quantity renders a metered value with up to two decimals.
func Quantity(v float64, locale string) string {
	return printerFor(locale).Sprintf("%v",
		number.Decimal(v, number.MaxFractionDigits(2)))
}

func printerFor(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Polish
	}
	return message.NewPrinter(tag)
}

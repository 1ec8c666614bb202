package models

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatAmount formats minor units with digit grouping, e.g. "1,250.00 USD"
func FormatAmount(minor int64, currency string) string {
	return printer.Sprintf("%.2f %s", float64(minor)/100.0, currency)
}

// FormatSignedAmount prefixes the absolute amount with its sign, e.g. "- 320.00 USD"
func FormatSignedAmount(minor int64, currency string) string {
	if minor < 0 {
		return "- " + FormatAmount(-minor, currency)
	}
	return "+ " + FormatAmount(minor, currency)
}

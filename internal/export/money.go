package export

import (
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

var symbols = map[string]string{
	"NGN": "₦",
	"USD": "$",
	"GBP": "£",
	"EUR": "€",
}

// FormatNaira renders amount as naira with thousands separators and two decimals.
func FormatNaira(amount float64) string {
	return FormatMoney(amount, "NGN")
}

// FormatMoney renders amount in the given ISO currency. Unknown codes fall
// back to naira.
func FormatMoney(amount float64, code string) string {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		unit = currency.NGN
	}
	symbol, ok := symbols[unit.String()]
	if !ok {
		symbol = unit.String() + " "
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + symbol + printer.Sprint(number.Decimal(amount, number.Scale(2)))
}

// FormatArea renders square metres with two decimals.
func FormatArea(sqm float64) string {
	return printer.Sprint(number.Decimal(sqm, number.Scale(2))) + " m²"
}

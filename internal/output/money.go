package output

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimals used when reporting prices.
const MoneyPlaces = 4

// Money rounds a float price half away from zero for display.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(MoneyPlaces)
}

// FormatMoney renders v with a currency sign and exactly MoneyPlaces decimals.
func FormatMoney(v float64) string {
	return "$" + Money(v).StringFixed(MoneyPlaces)
}

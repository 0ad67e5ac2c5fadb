// Package money formats prices and quantities for display.
package money

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stepper bounds used by the cart quantity controls
const (
	MinQuantity = 1
	MaxQuantity = 10
)

var grouping = message.NewPrinter(language.English)

var digitSets = map[string][]rune{
	"fa": []rune("۰۱۲۳۴۵۶۷۸۹"),
	"ar": []rune("٠١٢٣٤٥٦٧٨٩"),
}

// Formatter renders amounts for one locale and currency label
type Formatter struct {
	Locale   string
	Currency string
}

// NewFormatter creates a formatter
func NewFormatter(locale, currency string) Formatter {
	return Formatter{Locale: locale, Currency: currency}
}

// Price renders an amount with grouping, the currency label and local digits
func (f Formatter) Price(amount int64) string {
	return LocalizeDigits(FormatPrice(amount, f.Currency), f.Locale)
}

// Quantity renders a count in local digits
func (f Formatter) Quantity(n int) string {
	return LocalizeDigits(strconv.Itoa(n), f.Locale)
}

// FormatPrice groups the amount by thousands and appends the currency label
func FormatPrice(amount int64, currency string) string {
	s := grouping.Sprintf("%d", amount)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// LocalizeDigits rewrites ASCII digits into the digits of locale.
// Unknown locales are returned unchanged.
func LocalizeDigits(s, locale string) string {
	digits, ok := digitSets[baseLanguage(locale)]
	if !ok {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(digits[r-'0'])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ClampQuantity keeps q inside [min, max]
func ClampQuantity(q, min, max int) int {
	if q < min {
		return min
	}
	if q > max {
		return max
	}
	return q
}

func baseLanguage(locale string) string {
	locale = strings.ToLower(locale)
	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		return locale[:i]
	}
	return locale
}

// Package format holds the display helpers shared by the TUI and CLI:
// money, dates and the CNPJ/CEP input masks used by the back office.
package format

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// currencyPrefix matches what browsers print for pt-BR/BRL: "R$" plus a no-break space.
const currencyPrefix = "R$\u00a0"

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Amount converts a decoded JSON value into a decimal. Nil, empty and
// unparseable values become zero.
func Amount(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case float64:
		return decimal.NewFromFloat(n)
	case float32:
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	return decimal.Zero
}

// Currency formats a value as Brazilian reais, e.g. 1234.5 -> "R$ 1.234,50".
func Currency(v any) string {
	d := Amount(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	f := d.InexactFloat64()
	return sign + currencyPrefix + printer.Sprint(number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// ParseAmount reads an amount typed by a user. Both "1234.56" and the
// Brazilian "1.234,56" are accepted, as is a leading "R$".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

package app

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mikelcalvo/financeiro-cli/internal/format"
)

// Installment is one entry of the "parcelas" array of a payable create.
type Installment struct {
	Amount  json.Number `json:"valor"`
	DueDate string      `json:"data_vencimento"`
}

// SplitInstallments divides total into n monthly installments. Cents that do
// not divide evenly go to the last one; due dates keep the day of month,
// clamped to short months.
func SplitInstallments(total decimal.Decimal, first time.Time, n int) []Installment {
	if n < 1 {
		return nil
	}
	cents := total.Shift(2).Round(0).IntPart()
	base := cents / int64(n)
	rest := cents - base*int64(n)

	out := make([]Installment, n)
	for i := range out {
		c := base
		if i == n-1 {
			c += rest
		}
		out[i] = Installment{
			Amount:  json.Number(decimal.New(c, -2).StringFixed(2)),
			DueDate: format.ISODate(addMonths(first, i)),
		}
	}
	return out
}

func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	start := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := start.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(start.Year(), start.Month(), d, 0, 0, 0, 0, t.Location())
}

// prepareInstallments turns the installment count of a new payable into the
// "parcelas" array the server expects. Anything it cannot read is left for
// the server to reject.
func prepareInstallments(payload map[string]any, values map[string]string, editing bool) {
	if editing {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(values["parcelas"]))
	if err != nil || n < 2 {
		return
	}
	total, err := format.ParseAmount(values["valor_original"])
	if err != nil || !total.IsPositive() {
		return
	}
	iso, ok := format.ParseDisplayDate(values["data_vencimento"])
	if !ok {
		return
	}
	first, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return
	}
	payload["parcelas"] = SplitInstallments(total, first, n)
}

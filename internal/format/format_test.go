package format

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: "R$\u00a00,00"},
		{name: "zero", in: 0.0, want: "R$\u00a00,00"},
		{name: "grouping", in: 1234.5, want: "R$\u00a01.234,50"},
		{name: "millions", in: 1234567.891, want: "R$\u00a01.234.567,89"},
		{name: "int", in: 7, want: "R$\u00a07,00"},
		{name: "json number", in: json.Number("99.9"), want: "R$\u00a099,90"},
		{name: "decimal", in: decimal.RequireFromString("10.005"), want: "R$\u00a010,01"},
		{name: "negative", in: -15.2, want: "-R$\u00a015,20"},
		{name: "garbage string", in: "abc", want: "R$\u00a00,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Currency(tt.in))
		})
	}
}

func TestCurrencyNilMatchesZero(t *testing.T) {
	require.Equal(t, Currency(0), Currency(nil))
}

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "-"},
		{"2024-03-05", "05/03/2024"},
		{"2024-12-31T23:59:59.123456", "31/12/2024"},
		{"2024-01-01T00:30:00Z", "01/01/2024"},
		{"ontem", "ontem"},
		{"2024-13-01", "2024-13-01"},
	}
	for _, tt := range tests {
		if got := Date(tt.in); got != tt.want {
			t.Fatalf("Date(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDisplayDate(t *testing.T) {
	got, ok := ParseDisplayDate("05/03/2024")
	require.True(t, ok)
	require.Equal(t, "2024-03-05", got)

	got, ok = ParseDisplayDate("2024-03-05")
	require.True(t, ok)
	require.Equal(t, "2024-03-05", got)

	_, ok = ParseDisplayDate("5 de março")
	require.False(t, ok)

	require.Equal(t, "2024-03-05", ISODate(time.Date(2024, 3, 5, 22, 0, 0, 0, time.UTC)))
}

func TestCNPJ(t *testing.T) {
	require.Equal(t, "12.345.678/0001-95", CNPJ("12345678000195"))
	require.Equal(t, "12.345.678/0001-95", CNPJ("12.345.678/0001-95"))
	require.Equal(t, "12.345.678/0001-95", CNPJ("1234567800019599"), "extra digits are dropped")
	require.Equal(t, "", CNPJ("abc"))
}

func TestCNPJIncrementalTyping(t *testing.T) {
	full := "12345678000195"
	typed := ""
	for i := 1; i <= len(full); i++ {
		typed = CNPJ(typed + full[i-1:i])
		require.Equal(t, full[:i], Digits(typed, 0), "digits lost at prefix %d", i)
		require.False(t, strings.ContainsAny(typed[len(typed)-1:], "./-"), "dangling separator at prefix %d: %q", i, typed)
		require.Equal(t, CNPJ(full[:i]), typed, "re-masking must be stable at prefix %d", i)
	}
	require.Equal(t, "12.345.678/0001-95", typed)
}

func TestCEP(t *testing.T) {
	require.Equal(t, "01310", CEP("01310"))
	require.Equal(t, "01310-1", CEP("013101"))
	require.Equal(t, "01310-100", CEP("01310100"))
	require.Equal(t, "01310-100", CEP("01310-1009"))
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"1234.56":      "1234.56",
		"1.234,56":     "1234.56",
		"R$ 1.234,56":  "1234.56",
		"R$\u00a010,5": "10.5",
		" 99 ":         "99",
	}
	for in, want := range tests {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		require.True(t, got.Equal(decimal.RequireFromString(want)), "%q -> %s", in, got)
	}

	_, err := ParseAmount("doze reais")
	require.Error(t, err)
}

package format

import "strings"

const (
	cnpjDigits = 14
	cepDigits  = 8
)

// Digits strips everything but ASCII digits and keeps at most max of them
// (max <= 0 keeps all).
func Digits(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		if max > 0 && b.Len() >= max {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CNPJ masks a (possibly partial) CNPJ as NN.NNN.NNN/NNNN-NN. A separator is
// only written once the digit after it exists, so typing one digit at a time
// never leaves dangling punctuation.
func CNPJ(s string) string {
	d := Digits(s, cnpjDigits)
	var b strings.Builder
	for i := 0; i < len(d); i++ {
		switch i {
		case 2, 5:
			b.WriteByte('.')
		case 8:
			b.WriteByte('/')
		case 12:
			b.WriteByte('-')
		}
		b.WriteByte(d[i])
	}
	return b.String()
}

// CEP masks a postal code as NNNNN-NNN.
func CEP(s string) string {
	d := Digits(s, cepDigits)
	if len(d) <= 5 {
		return d
	}
	return d[:5] + "-" + d[5:]
}

// Package format provides the canonical presentation helpers shared by the
// on-screen summary and the printed document. Both must format money and
// dates identically.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency formats an amount with two decimals, "." thousands separators,
// "," as decimal separator and a trailing symbol.
// e.g., 1234.5 -> "1.234,50 €"
func Currency(amount decimal.Decimal, symbol string) string {
	fixed := amount.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}

	intPart, decPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	remainder := len(intPart) % 3
	if remainder > 0 {
		b.WriteString(intPart[:remainder])
	}
	for i := remainder; i < len(intPart); i += 3 {
		if b.Len() > 0 && !(b.Len() == 1 && neg) {
			b.WriteByte('.')
		}
		b.WriteString(intPart[i : i+3])
	}
	return fmt.Sprintf("%s,%s %s", b.String(), decPart, symbol)
}

// Rate formats a percentage rate without trailing zeros. e.g., 21 -> "21",
// 10.50 -> "10,5"
func Rate(rate decimal.Decimal) string {
	s := rate.String()
	return strings.ReplaceAll(s, ".", ",")
}

// Date formats a date as DD/MM/YYYY, the convention used across the app.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// FileDate formats a date as YYYY-MM-DD for filenames.
func FileDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a DD/MM/YYYY string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("02/01/2006", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// spanishFold maps accented characters to their ASCII base for slugs.
var spanishFold = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u", "Ñ", "n",
)

// Slug lowercases a name and reduces it to ASCII letters, digits and
// hyphens. e.g., "Ana Pérez" -> "ana-perez"
func Slug(s string) string {
	s = spanishFold.Replace(strings.TrimSpace(s))
	s = strings.ToLower(s)

	var b strings.Builder
	lastHyphen := true // suppress leading hyphens
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Truncate shortens text to at most max runes, ending with "..." when cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// ExportFileName builds the download name for a generated document:
// presupuesto-<slug>-<YYYY-MM-DD>.pdf
func ExportFileName(patientName string, date time.Time) string {
	slug := Slug(patientName)
	if slug == "" {
		slug = "sin-nombre"
	}
	return fmt.Sprintf("presupuesto-%s-%s.pdf", slug, FileDate(date))
}

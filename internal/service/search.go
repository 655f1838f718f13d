package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// fold lowercases s and strips diacritics, so "Usina São José" matches "sao jose".
// Casers and transformers are stateful, hence built per call.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(strings.TrimSpace(stripped))
}

// matchCompany reports whether query matches the legal name or the CNPJ.
func matchCompany(c domain.Company, query string) bool {
	q := fold(query)
	if q == "" {
		return true
	}
	if strings.Contains(fold(c.LegalName), q) {
		return true
	}
	digits := domain.DigitsOnly(query)
	return digits != "" && strings.Contains(c.CNPJ, digits)
}

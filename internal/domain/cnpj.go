package domain

import "strings"

const cnpjLength = 14

var (
	cnpjWeightsFirst  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeightsSecond = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// DigitsOnly strips every non-digit rune.
func DigitsOnly(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}

// FormatCNPJ applies the 00.000.000/0000-00 mask progressively, so partially
// typed values are masked as far as they go. Digits past the 14th are dropped.
func FormatCNPJ(value string) string {
	digits := DigitsOnly(value)
	if len(digits) > cnpjLength {
		digits = digits[:cnpjLength]
	}

	var b strings.Builder
	for i := 0; i < len(digits); i++ {
		b.WriteByte(digits[i])
		switch {
		case i == 1 && len(digits) > 2:
			b.WriteByte('.')
		case i == 4 && len(digits) > 5:
			b.WriteByte('.')
		case i == 7 && len(digits) > 8:
			b.WriteByte('/')
		case i == 11 && len(digits) > 12:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// ValidateCNPJ checks length and both check digits.
func ValidateCNPJ(value string) error {
	digits := DigitsOnly(value)
	if len(digits) == 0 {
		return &ErrValidation{Field: "cnpj", Message: "CNPJ é obrigatório"}
	}
	if len(digits) < cnpjLength {
		return &ErrValidation{Field: "cnpj", Message: "CNPJ incompleto."}
	}
	if len(digits) > cnpjLength || allSameDigit(digits) {
		return &ErrValidation{Field: "cnpj", Message: "CNPJ inválido"}
	}

	first := cnpjCheckDigit(digits[:12], cnpjWeightsFirst)
	second := cnpjCheckDigit(digits[:12]+string(rune('0'+first)), cnpjWeightsSecond)
	if int(digits[12]-'0') != first || int(digits[13]-'0') != second {
		return &ErrValidation{Field: "cnpj", Message: "CNPJ inválido"}
	}
	return nil
}

func cnpjCheckDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

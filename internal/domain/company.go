package domain

import "strings"

// ============================================================
// Empresas
// ============================================================

// Company is the permit holder ("empresa").
type Company struct {
	ID            int64  `json:"id"`
	LegalName     string `json:"razao_social"`
	CNPJ          string `json:"cnpj"`                     // raw digits as stored by the backend
	CNPJFormatted string `json:"cnpj_formatado,omitempty"` // derived display value
	Email         string `json:"email,omitempty"`
	Address       string `json:"endereco,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// WithDisplay fills the derived display fields.
func (c Company) WithDisplay() Company {
	c.CNPJFormatted = FormatCNPJ(c.CNPJ)
	return c
}

// CompanyDraft is the validated payload for creating or updating a company.
type CompanyDraft struct {
	LegalName string `json:"razao_social" validate:"required"`
	CNPJ      string `json:"cnpj" validate:"required"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Address   string `json:"endereco,omitempty"`
}

// NewCompanyDraft builds a draft and validates it. The CNPJ is normalized to digits.
func NewCompanyDraft(legalName, cnpj, email, address string) (*CompanyDraft, error) {
	d := &CompanyDraft{
		LegalName: legalName,
		CNPJ:      cnpj,
		Email:     email,
		Address:   address,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the required fields and the CNPJ check digits, then
// normalizes the CNPJ to its raw digits.
func (d *CompanyDraft) Validate() error {
	d.LegalName = strings.TrimSpace(d.LegalName)
	d.Email = strings.TrimSpace(d.Email)
	if err := validateStruct(d); err != nil {
		return err
	}
	if err := ValidateCNPJ(d.CNPJ); err != nil {
		return err
	}
	d.CNPJ = DigitsOnly(d.CNPJ)
	return nil
}

package domain

import "strings"

// ============================================================
// Licenças
// ============================================================

// License statuses as stored by the backend.
const (
	LicenseStatusActive    = "ativa"
	LicenseStatusExpired   = "vencida"
	LicenseStatusCancelled = "cancelada"
)

// License is an environmental permit ("licença").
type License struct {
	ID           int64            `json:"id"`
	CompanyID    int64            `json:"empresa_id"`
	Type         string           `json:"tipo_licenca"`
	Number       string           `json:"numero_licenca,omitempty"`
	Issuer       string           `json:"orgao_emissor,omitempty"`
	IssuedOn     Date             `json:"data_emissao"`
	ExpiresOn    Date             `json:"data_vencimento"`
	Status       string           `json:"status,omitempty"`
	Notes        string           `json:"observacoes,omitempty"`
	DaysToExpiry *int             `json:"dias_para_vencimento"`
	Company      *Company         `json:"empresa,omitempty"`
	Compliance   []ComplianceItem `json:"condicionantes,omitempty"`
}

// CompanyName returns the embedded company's legal name, or fallback.
func (l *License) CompanyName(fallback string) string {
	if l == nil || l.Company == nil || l.Company.LegalName == "" {
		return fallback
	}
	return l.Company.LegalName
}

// LicenseFilter narrows GET /api/licencas.
type LicenseFilter struct {
	CompanyID int64
	Status    string
	Flat      bool
}

// LicenseDraft is the validated payload for creating or updating a license.
type LicenseDraft struct {
	CompanyID int64  `json:"empresa_id" validate:"gt=0"`
	Type      string `json:"tipo_licenca" validate:"required"`
	Number    string `json:"numero_licenca,omitempty"`
	Issuer    string `json:"orgao_emissor,omitempty"`
	IssuedOn  Date   `json:"data_emissao"`
	ExpiresOn Date   `json:"data_vencimento"`
	Status    string `json:"status,omitempty" validate:"omitempty,oneof=ativa vencida cancelada"`
	Notes     string `json:"observacoes,omitempty"`
}

// NewLicenseDraft builds a draft and validates it.
func NewLicenseDraft(companyID int64, licenseType, number, issuer string, issuedOn, expiresOn Date, notes string) (*LicenseDraft, error) {
	d := &LicenseDraft{
		CompanyID: companyID,
		Type:      licenseType,
		Number:    number,
		Issuer:    issuer,
		IssuedOn:  issuedOn,
		ExpiresOn: expiresOn,
		Notes:     notes,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks required fields. The expiry date is mandatory on the backend.
func (d *LicenseDraft) Validate() error {
	d.Type = strings.TrimSpace(d.Type)
	if err := validateStruct(d); err != nil {
		return err
	}
	if d.ExpiresOn.IsZero() {
		return &ErrValidation{Field: "data_vencimento", Message: "Data de vencimento é obrigatória"}
	}
	return nil
}

// Payload renders the draft as sent to the backend. Absent dates are omitted.
func (d *LicenseDraft) Payload() LicensePayload {
	return LicensePayload{
		CompanyID: d.CompanyID,
		Type:      d.Type,
		Number:    d.Number,
		Issuer:    d.Issuer,
		IssuedOn:  d.IssuedOn.Ptr(),
		ExpiresOn: d.ExpiresOn.Ptr(),
		Status:    d.Status,
		Notes:     d.Notes,
	}
}

// LicensePayload is the JSON body of POST/PUT /api/licencas.
type LicensePayload struct {
	CompanyID int64   `json:"empresa_id"`
	Type      string  `json:"tipo_licenca"`
	Number    string  `json:"numero_licenca,omitempty"`
	Issuer    string  `json:"orgao_emissor,omitempty"`
	IssuedOn  *string `json:"data_emissao,omitempty"`
	ExpiresOn *string `json:"data_vencimento,omitempty"`
	Status    string  `json:"status,omitempty"`
	Notes     string  `json:"observacoes,omitempty"`
}

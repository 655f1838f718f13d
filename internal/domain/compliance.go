package domain

// ============================================================
// Condicionantes
// ============================================================

// Compliance statuses. Status is denormalized: FulfilledOn is the source of truth.
const (
	ComplianceStatusPending   = "pendente"
	ComplianceStatusFulfilled = "cumprida"
	ComplianceStatusOverdue   = "vencida"
)

// ComplianceItem is a dated obligation tied to a license ("condicionante").
type ComplianceItem struct {
	ID            int64    `json:"id"`
	LicenseID     int64    `json:"licenca_id"`
	Description   string   `json:"descricao"`
	DueDate       Date     `json:"data_limite"`
	OffsetDays    *int     `json:"prazo_dias"`
	RenewalLinked bool     `json:"renovacao,omitempty"`
	Responsible   string   `json:"responsavel,omitempty"`
	FulfilledOn   Date     `json:"data_envio_cumprimento"`
	Notes         string   `json:"observacoes,omitempty"`
	Status        string   `json:"status,omitempty"`
	ProofPath     string   `json:"comprovante_path,omitempty"`
	License       *License `json:"licenca,omitempty"`
	Company       *Company `json:"empresa,omitempty"`
}

// IsFulfilled reports whether the item has been fulfilled.
func (c *ComplianceItem) IsFulfilled() bool {
	return !c.FulfilledOn.IsZero()
}

// Normalize brings Status in line with FulfilledOn.
func (c *ComplianceItem) Normalize() {
	switch {
	case c.IsFulfilled():
		c.Status = ComplianceStatusFulfilled
	case c.Status == ComplianceStatusFulfilled || c.Status == "":
		c.Status = ComplianceStatusPending
	}
}

// ComplianceFilter narrows GET /api/condicionantes.
type ComplianceFilter struct {
	LicenseID int64
	Status    string
}

// CompliancePayload is the JSON body of POST/PUT /api/condicionantes.
// Empty dates and offsets are omitted, never sent as null.
type CompliancePayload struct {
	LicenseID     int64   `json:"licenca_id"`
	Description   string  `json:"descricao"`
	OffsetDays    *int    `json:"prazo_dias,omitempty"`
	DueDate       *string `json:"data_limite,omitempty"`
	RenewalLinked bool    `json:"renovacao,omitempty"`
	Responsible   string  `json:"responsavel,omitempty"`
	Notes         string  `json:"observacoes,omitempty"`
}

// Attachment is a proof-of-fulfillment file forwarded as multipart.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// FulfillmentInput is the body of POST /api/condicionantes/:id/marcar-cumprida.
type FulfillmentInput struct {
	FulfilledOn Date
	Notes       string
	Attachment  *Attachment
}

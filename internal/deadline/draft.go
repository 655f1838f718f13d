package deadline

import (
	"strings"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// Draft is the compliance item form. Exactly one of the manual due date, the
// offset and the renewal link drives the effective due date; the setters clear
// the other two, and drafts decoded from a request body are brought to the same
// shape by Validate and Resolve.
type Draft struct {
	ID            int64       `json:"id,omitempty"` // non-zero while editing an existing item
	LicenseID     int64       `json:"licenca_id"`
	Description   string      `json:"descricao"`
	OffsetDays    *int        `json:"prazo_dias,omitempty"`
	RenewalLinked bool        `json:"renovacao,omitempty"`
	DueDate       domain.Date `json:"data_limite"`
	Responsible   string      `json:"responsavel,omitempty"`
	Notes         string      `json:"observacoes,omitempty"`
}

// DraftFromItem loads an existing item into the form for editing.
func DraftFromItem(item domain.ComplianceItem) *Draft {
	d := &Draft{
		ID:            item.ID,
		LicenseID:     item.LicenseID,
		Description:   item.Description,
		RenewalLinked: item.RenewalLinked,
		DueDate:       item.DueDate,
		Responsible:   item.Responsible,
		Notes:         item.Notes,
	}
	if item.OffsetDays != nil {
		n := *item.OffsetDays
		d.OffsetDays = &n
	}
	return d
}

// Editing reports whether the draft belongs to an existing item.
func (d *Draft) Editing() bool { return d.ID != 0 }

// SetRenewal toggles the renewal link. Turning it on clears the offset and the manual date.
func (d *Draft) SetRenewal(on bool) {
	d.RenewalLinked = on
	if on {
		d.OffsetDays = nil
		d.DueDate = domain.Date{}
	}
}

// SetOffsetDays sets the offset. A non-nil offset clears the renewal link and the
// manual date; clearing the offset keeps the last computed date as a manual one.
func (d *Draft) SetOffsetDays(n *int) {
	d.OffsetDays = n
	if n != nil {
		d.RenewalLinked = false
		d.DueDate = domain.Date{}
	}
}

// SetDueDate records a date typed by the user, clearing the offset and the renewal link.
func (d *Draft) SetDueDate(due domain.Date) {
	d.DueDate = due
	d.RenewalLinked = false
	d.OffsetDays = nil
}

// Resolve recomputes DueDate against the licenses currently available.
// With no license selected, or a selected license missing from the list, a new
// item loses its due date while an item being edited keeps it.
func (d *Draft) Resolve(licenses []domain.License) {
	d.normalize()
	license := findLicense(licenses, d.LicenseID)
	if license == nil {
		if !d.Editing() {
			d.DueDate = domain.Date{}
		}
		return
	}
	d.DueDate = EffectiveDueDate(DueInput{
		RenewalLinked: d.RenewalLinked,
		OffsetDays:    d.OffsetDays,
		ManualDueDate: d.DueDate,
	}, license)
}

// Validate checks the fields the backend requires.
func (d *Draft) Validate() error {
	d.normalize()
	d.Description = strings.TrimSpace(d.Description)
	if d.LicenseID <= 0 {
		return &domain.ErrValidation{Field: "licenca_id", Message: "ID da licença é obrigatório"}
	}
	if d.Description == "" {
		return &domain.ErrValidation{Field: "descricao", Message: "Descrição é obrigatória"}
	}
	if d.OffsetDays != nil && *d.OffsetDays < 0 {
		return &domain.ErrValidation{Field: "prazo_dias", Message: "Prazo em dias deve ser um inteiro não negativo"}
	}
	return nil
}

// normalize drops the modes that lose to a higher-priority one. The backend
// recomputes data_limite from prazo_dias, so a renewal draft must not carry one.
func (d *Draft) normalize() {
	if d.RenewalLinked {
		d.OffsetDays = nil
	}
}

// Payload renders the draft for POST/PUT /api/condicionantes. A renewal-linked
// draft never sends prazo_dias.
func (d *Draft) Payload() domain.CompliancePayload {
	offset := d.OffsetDays
	if d.RenewalLinked {
		offset = nil
	}
	return domain.CompliancePayload{
		LicenseID:     d.LicenseID,
		Description:   d.Description,
		OffsetDays:    offset,
		DueDate:       d.DueDate.Ptr(),
		RenewalLinked: d.RenewalLinked,
		Responsible:   d.Responsible,
		Notes:         d.Notes,
	}
}

func findLicense(licenses []domain.License, id int64) *domain.License {
	if id == 0 {
		return nil
	}
	for i := range licenses {
		if licenses[i].ID == id {
			return &licenses[i]
		}
	}
	return nil
}

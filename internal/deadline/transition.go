package deadline

import "github.com/boddenberg/licenciamento-bfa-go/internal/domain"

// MarkFulfilled moves an item to the fulfilled state on the given day.
// The backend assigns the authoritative date; this mirrors it locally.
func MarkFulfilled(item *domain.ComplianceItem, on domain.Date) {
	item.FulfilledOn = on
	item.Normalize()
}

// MarkPending clears the fulfillment date, returning the item to pending.
// The status comes back as "pendente" even if the item was stored "vencida"
// before it was fulfilled, matching the backend's marcar-pendente.
func MarkPending(item *domain.ComplianceItem) {
	item.FulfilledOn = domain.Date{}
	item.Normalize()
}

// Package deadline derives due dates, remaining days and urgency tiers for
// compliance items. Everything here is pure: no I/O, no clocks except the
// "now" passed in, and no failure modes. Unparseable dates are simply absent.
package deadline

import (
	"strconv"
	"strings"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// RenewalLeadDays is how long before a license expires its renewal must be filed.
const RenewalLeadDays = 120

// DueInput carries the three mutually exclusive ways of setting a due date.
type DueInput struct {
	RenewalLinked bool
	OffsetDays    *int
	ManualDueDate domain.Date
}

// EffectiveDueDate resolves the due date of a compliance item, in priority order:
// renewal-linked (license expiry minus RenewalLeadDays), offset from the license
// emission date, then whatever the user typed. A missing license date yields
// the zero Date.
func EffectiveDueDate(in DueInput, license *domain.License) domain.Date {
	switch {
	case in.RenewalLinked:
		if license == nil || license.ExpiresOn.IsZero() {
			return domain.Date{}
		}
		return license.ExpiresOn.AddDays(-RenewalLeadDays)
	case in.OffsetDays != nil && *in.OffsetDays >= 0:
		if license == nil || license.IssuedOn.IsZero() {
			return domain.Date{}
		}
		return license.IssuedOn.AddDays(*in.OffsetDays)
	default:
		return in.ManualDueDate
	}
}

// ParseOffsetDays parses a form value into a non-negative day offset.
// Blank, non-numeric and negative values are rejected.
func ParseOffsetDays(s string) (*int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, false
	}
	return &n, true
}

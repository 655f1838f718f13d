package deadline

import (
	"sort"
	"time"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

const unknownRef = "N/A"

// View is a compliance item decorated with everything the list needs.
type View struct {
	domain.ComplianceItem
	DaysRemaining *int   `json:"dias_restantes"`
	Urgency       Tier   `json:"urgencia"`
	Badge         Badge  `json:"badge"`
	Fulfilled     bool   `json:"cumprida"`
	LicenseNumber string `json:"licenca_numero"`
	CompanyName   string `json:"empresa_nome"`

	days int
}

// NewView derives the display fields of item at instant now.
func NewView(item domain.ComplianceItem, now time.Time) View {
	item.Normalize()

	days := DaysRemaining(item.DueDate, now)
	tier := Classify(item.IsFulfilled(), days)

	v := View{
		ComplianceItem: item,
		Urgency:        tier,
		Badge:          BadgeFor(tier),
		Fulfilled:      item.IsFulfilled(),
		LicenseNumber:  unknownRef,
		CompanyName:    unknownRef,
		days:           days,
	}
	if days != NoDeadline {
		d := days
		v.DaysRemaining = &d
	}
	if item.License != nil && item.License.Number != "" {
		v.LicenseNumber = item.License.Number
	}
	if item.Company != nil && item.Company.LegalName != "" {
		v.CompanyName = item.Company.LegalName
	}
	return v
}

// Days returns the remaining days, NoDeadline when there is no due date.
func (v View) Days() int { return v.days }

// BuildViews decorates items and returns them in display order.
func BuildViews(items []domain.ComplianceItem, now time.Time) []View {
	views := make([]View, 0, len(items))
	for _, it := range items {
		views = append(views, NewView(it, now))
	}
	SortForDisplay(views)
	return views
}

// SortForDisplay orders views by tier rank: Overdue, Urgent, Upcoming, Pending,
// Fulfilled. Overdue items are sub-sorted most overdue first; every other bucket
// keeps its incoming order.
func SortForDisplay(views []View) {
	sort.SliceStable(views, func(i, j int) bool {
		ri, rj := views[i].Urgency.Rank(), views[j].Urgency.Rank()
		if ri != rj {
			return ri < rj
		}
		if views[i].Urgency == TierOverdue {
			return views[i].days < views[j].days
		}
		return false
	})
}

// CountByTier tallies views per tier.
func CountByTier(views []View) map[Tier]int {
	counts := make(map[Tier]int, len(tierCodes))
	for _, v := range views {
		counts[v.Urgency]++
	}
	return counts
}

// WithinWindow keeps the pending items due within daysAhead days, overdue included.
func WithinWindow(views []View, daysAhead int) []View {
	out := make([]View, 0, len(views))
	for _, v := range views {
		if v.Fulfilled || v.days == NoDeadline {
			continue
		}
		if v.days <= daysAhead {
			out = append(out, v)
		}
	}
	return out
}

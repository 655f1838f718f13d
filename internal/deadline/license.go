package deadline

import (
	"sort"
	"time"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// LicenseSituation is the display state of a license.
type LicenseSituation string

const (
	LicenseExpired      LicenseSituation = "vencida"
	LicenseExpiringSoon LicenseSituation = "vence_em_breve"
	LicenseActive       LicenseSituation = "ativa"
)

var licenseBadges = map[LicenseSituation]Badge{
	LicenseExpired:      {Label: "Vencida", Variant: "destructive", Color: "red"},
	LicenseExpiringSoon: {Label: "Vence em breve", Variant: "secondary", Color: "orange"},
	LicenseActive:       {Label: "Ativa", Variant: "secondary", Color: "green"},
}

// ClassifyLicense derives the situation from the stored status and days to expiry.
func ClassifyLicense(status string, daysToExpiry int) LicenseSituation {
	switch {
	case status == domain.LicenseStatusExpired || daysToExpiry < 0:
		return LicenseExpired
	case daysToExpiry <= UpcomingWindowDays:
		return LicenseExpiringSoon
	default:
		return LicenseActive
	}
}

// LicenseView is a license decorated for the list.
type LicenseView struct {
	domain.License
	Situation   LicenseSituation `json:"situacao"`
	Badge       Badge            `json:"badge"`
	CompanyName string           `json:"empresa_nome"`

	days int
}

// NewLicenseView recomputes days to expiry from the expiry date at instant now.
func NewLicenseView(l domain.License, now time.Time) LicenseView {
	days := DaysRemaining(l.ExpiresOn, now)
	l.DaysToExpiry = nil
	if days != NoDeadline {
		d := days
		l.DaysToExpiry = &d
	}
	situation := ClassifyLicense(l.Status, days)
	return LicenseView{
		License:     l,
		Situation:   situation,
		Badge:       licenseBadges[situation],
		CompanyName: l.CompanyName("Empresa Desconhecida"),
		days:        days,
	}
}

// BuildLicenseViews decorates and sorts licenses.
func BuildLicenseViews(licenses []domain.License, now time.Time) []LicenseView {
	views := make([]LicenseView, 0, len(licenses))
	for _, l := range licenses {
		views = append(views, NewLicenseView(l, now))
	}
	SortLicenses(views)
	return views
}

// SortLicenses puts licenses still in force first, soonest expiry first, then the
// expired ones, most overdue first.
func SortLicenses(views []LicenseView) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].days, views[j].days
		if (a < 0) != (b < 0) {
			return a >= 0
		}
		return a < b
	})
}

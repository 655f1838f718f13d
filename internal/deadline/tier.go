package deadline

import (
	"fmt"
	"math"
	"time"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// NoDeadline is the days-remaining sentinel for items without a due date.
// It is larger than any window, so such items are never urgent and sort last.
const NoDeadline = math.MaxInt32

const secondsPerDay = 24 * 60 * 60

// Urgency windows, inclusive.
const (
	UrgentWindowDays   = 7
	UpcomingWindowDays = 30
)

// DaysRemaining returns floor((due - today) / 1 day), where today is the UTC
// calendar day of now. Both are UTC midnights, so the division is exact for any
// date, however far out. An absent due date returns NoDeadline.
func DaysRemaining(due domain.Date, now time.Time) int {
	if due.IsZero() {
		return NoDeadline
	}
	today := domain.DateOf(now)
	return int((due.Time().Unix() - today.Time().Unix()) / secondsPerDay)
}

// Tier is the display urgency of a compliance item. Its value is the sort rank.
type Tier int

const (
	TierOverdue Tier = iota + 1
	TierUrgent
	TierUpcoming
	TierPending
	TierFulfilled
)

var tierCodes = map[Tier]string{
	TierOverdue:   "vencida",
	TierUrgent:    "urgente",
	TierUpcoming:  "proxima",
	TierPending:   "pendente",
	TierFulfilled: "cumprida",
}

// String returns the wire code of the tier.
func (t Tier) String() string {
	if s, ok := tierCodes[t]; ok {
		return s
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Rank is the bucket position in the display order (1 first).
func (t Tier) Rank() int { return int(t) }

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	for tier, code := range tierCodes {
		if code == string(b) {
			*t = tier
			return nil
		}
	}
	return fmt.Errorf("unknown urgency tier %q", string(b))
}

// Classify picks the tier; the first matching rule wins.
func Classify(fulfilled bool, daysRemaining int) Tier {
	switch {
	case fulfilled:
		return TierFulfilled
	case daysRemaining < 0:
		return TierOverdue
	case daysRemaining <= UrgentWindowDays:
		return TierUrgent
	case daysRemaining <= UpcomingWindowDays:
		return TierUpcoming
	default:
		return TierPending
	}
}

// Badge is how a tier is rendered on the dashboard.
type Badge struct {
	Label   string `json:"label"`
	Variant string `json:"variant"`
	Color   string `json:"color"`
}

var badges = map[Tier]Badge{
	TierFulfilled: {Label: "Cumprida", Variant: "secondary", Color: "green"},
	TierOverdue:   {Label: "Vencida", Variant: "destructive", Color: "red"},
	TierUrgent:    {Label: "Urgente", Variant: "destructive", Color: "red"},
	TierUpcoming:  {Label: "Próximo", Variant: "secondary", Color: "orange"},
	TierPending:   {Label: "Pendente", Variant: "secondary", Color: "blue"},
}

// BadgeFor returns the badge of a tier.
func BadgeFor(t Tier) Badge {
	return badges[t]
}

package subscription

import (
	"strings"
	"time"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/api"
)

const (
	TypeMonthly   = "monthly"
	TypeQuarterly = "quarterly"
	TypeAnnual    = "annual"
)

type Plan struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	Months int    `json:"months"`
}

func getPlans() []Plan {
	return []Plan{
		{Type: TypeMonthly, Name: "Mensual", Months: 1},
		{Type: TypeQuarterly, Name: "Trimestral", Months: 3},
		{Type: TypeAnnual, Name: "Anual", Months: 12},
	}
}

// ParsePlan resolves a subscription type case-insensitively.
func ParsePlan(subscriptionType string) (Plan, error) {
	want := strings.ToLower(strings.TrimSpace(subscriptionType))
	for _, p := range getPlans() {
		if p.Type == want {
			return p, nil
		}
	}
	return Plan{}, api.Validation("invalid subscriptionType %q: must be monthly, quarterly or annual", subscriptionType)
}

func (p Plan) EndDate(start time.Time) time.Time {
	return AddMonths(start, p.Months)
}

// AddMonths advances t by n calendar months. When the day does not exist in the target
// month it is clamped to that month's last day, so Jan 31 + 1 month is the end of February.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

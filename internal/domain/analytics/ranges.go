package analytics

import (
	"fmt"
	"strings"

	"github.com/Spok95/stock-tracker/internal/domain/inventory"
)

// DateRange: закрытый интервал бизнес-дат.
type DateRange struct {
	Name string
	From inventory.Date
	To   inventory.Date
}

func (r DateRange) Filter() inventory.Filter { return inventory.Filter{From: r.From, To: r.To} }

// DateRanges: стандартные периоды относительно today.
func DateRanges(today inventory.Date) []DateRange {
	firstOfMonth := today.FirstOfMonth()
	lastOfPrev := firstOfMonth.AddDays(-1)
	return []DateRange{
		{Name: "Today", From: today, To: today},
		{Name: "Yesterday", From: today.AddDays(-1), To: today.AddDays(-1)},
		{Name: "Last 7 days", From: today.AddDays(-7), To: today},
		{Name: "Last 30 days", From: today.AddDays(-30), To: today},
		{Name: "This month", From: firstOfMonth, To: today},
		{Name: "Last month", From: lastOfPrev.FirstOfMonth(), To: lastOfPrev},
	}
}

// FindRange ищет период по имени без учёта регистра ("last 7 days", "last-7-days", "this_month").
func FindRange(today inventory.Date, name string) (DateRange, error) {
	norm := func(s string) string {
		return strings.ToLower(strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s)))
	}
	for _, r := range DateRanges(today) {
		if norm(r.Name) == norm(name) {
			return r, nil
		}
	}
	return DateRange{}, fmt.Errorf("unknown date range %q", name)
}

// Package dashboard computes the portfolio's financial and occupancy figures.
//
// Aggregate is a pure function of the properties and the filter: it never
// fails, and malformed record dates are left out of whichever figure they
// would have fed.
package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/dvloznov/imobcontrol/internal/dates"
	"github.com/dvloznov/imobcontrol/internal/domain"
)

// Filter selects what the dashboard looks at.
type Filter struct {
	// PropertyIDs restricts the view; empty means every property.
	PropertyIDs []string
	// Start and End bound both the financial figures and the occupancy window.
	// Either may be nil. With both nil the financial figures cover every record
	// and occupancy uses the current calendar month.
	Start *time.Time
	End   *time.Time
	// Now anchors the current-month default. Zero means the wall clock.
	Now time.Time
}

// HasDateRange reports whether any date bound is set.
func (f Filter) HasDateRange() bool {
	return f.Start != nil || f.End != nil
}

// MonthBucket holds the revenue and expense of one calendar month.
type MonthBucket struct {
	Key     string       `json:"key"` // "11/2025"
	Month   time.Time    `json:"month"`
	Revenue domain.Money `json:"revenue"`
	Expense domain.Money `json:"expense"`
}

// Entry is a record flattened out of its property.
type Entry struct {
	PropertyID    string                 `json:"propertyId"`
	PropertyTitle string                 `json:"propertyTitle"`
	Index         int                    `json:"index"` // position in the property's rental history
	Record        domain.FinancialRecord `json:"record"`

	date  time.Time
	dated bool
}

// Result is everything the dashboard shows.
type Result struct {
	TotalRevenue domain.Money `json:"totalRevenue"`
	TotalExpense domain.Money `json:"totalExpense"`
	NetResult    domain.Money `json:"netResult"`

	// Undated records only reach the totals when no date range is set. They are
	// reported here because they cannot be placed in a month.
	UndatedRevenue domain.Money `json:"undatedRevenue"`
	UndatedExpense domain.Money `json:"undatedExpense"`

	Chart   []MonthBucket `json:"chart"`
	Records []Entry       `json:"records"`

	PropertyCount int       `json:"propertyCount"`
	WindowStart   time.Time `json:"windowStart"`
	WindowEnd     time.Time `json:"windowEnd"`
	DaysInPeriod  int       `json:"daysInPeriod"`
	PossibleDays  int       `json:"possibleDays"`
	OccupiedDays  int       `json:"occupiedDays"`
	VacantDays    int       `json:"vacantDays"`
	OccupancyRate float64   `json:"occupancyRate"`
	// Clamped is set when overlapping stays pushed raw occupancy past 100%.
	Clamped bool `json:"clamped"`
}

// Aggregate computes the dashboard for props under f.
func Aggregate(props []domain.Property, f Filter) Result {
	active := selectProperties(props, f.PropertyIDs)

	res := Result{PropertyCount: len(active)}
	res.WindowStart, res.WindowEnd = occupancyWindow(f)
	res.DaysInPeriod = max(1, int(math.Round(dates.Days(res.WindowEnd.Sub(res.WindowStart)))))

	for _, p := range active {
		for _, r := range p.RentalHistory {
			res.OccupiedDays += occupiedDays(r, res.WindowStart, res.WindowEnd)
		}
	}

	var lo, hi time.Time
	if f.Start != nil {
		lo = dates.NormalizeDayStart(*f.Start)
	}
	if f.End != nil {
		hi = dates.NormalizeDayEnd(*f.End)
	}

	buckets := make(map[string]*MonthBucket)
	for _, p := range active {
		for i, r := range p.RentalHistory {
			d, ok := dates.ParseDate(r.Date)
			if f.HasDateRange() {
				if !ok || (f.Start != nil && d.Before(lo)) || (f.End != nil && d.After(hi)) {
					continue
				}
			}

			if r.IsExpense() {
				res.TotalExpense = res.TotalExpense.Add(r.Amount)
			} else {
				res.TotalRevenue = res.TotalRevenue.Add(r.Amount)
			}
			res.Records = append(res.Records, Entry{
				PropertyID:    p.ID,
				PropertyTitle: p.Title,
				Index:         i,
				Record:        r,
				date:          d,
				dated:         ok,
			})

			if !ok {
				if r.IsExpense() {
					res.UndatedExpense = res.UndatedExpense.Add(r.Amount)
				} else {
					res.UndatedRevenue = res.UndatedRevenue.Add(r.Amount)
				}
				continue
			}

			key := dates.MonthKey(d)
			b, seen := buckets[key]
			if !seen {
				b = &MonthBucket{Key: key, Month: dates.FirstOfMonth(d)}
				buckets[key] = b
			}
			if r.IsExpense() {
				b.Expense = b.Expense.Add(r.Amount)
			} else {
				b.Revenue = b.Revenue.Add(r.Amount)
			}
		}
	}
	res.NetResult = res.TotalRevenue.Sub(res.TotalExpense)

	res.Chart = make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		res.Chart = append(res.Chart, *b)
	}
	sort.Slice(res.Chart, func(i, j int) bool {
		return res.Chart[i].Month.Before(res.Chart[j].Month)
	})

	// Newest first; undated records sink to the end in entry order.
	sort.SliceStable(res.Records, func(i, j int) bool {
		a, b := res.Records[i], res.Records[j]
		if a.dated != b.dated {
			return a.dated
		}
		return a.date.After(b.date)
	})

	res.PossibleDays = res.PropertyCount * res.DaysInPeriod
	if res.PossibleDays > 0 {
		rate := float64(res.OccupiedDays) / float64(res.PossibleDays) * 100
		if rate > 100 {
			rate = 100
			res.Clamped = true
		}
		res.OccupancyRate = rate
	}
	res.VacantDays = max(0, res.PossibleDays-res.OccupiedDays)

	return res
}

func selectProperties(props []domain.Property, ids []string) []domain.Property {
	if len(ids) == 0 {
		return props
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []domain.Property
	for _, p := range props {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

func occupancyWindow(f Filter) (time.Time, time.Time) {
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	start := dates.FirstOfMonth(now)
	if f.Start != nil {
		start = *f.Start
	}
	end := dates.LastOfMonth(now)
	if f.End != nil {
		end = *f.End
	}
	return dates.NormalizeDayStart(start), dates.NormalizeDayEnd(end)
}

// occupiedDays counts the days record r occupies inside the window. A stay
// without a distinct check-out occupies its check-in day.
func occupiedDays(r domain.FinancialRecord, winStart, winEnd time.Time) int {
	if r.CheckIn == "" {
		return 0
	}
	in, ok := dates.ParseDate(r.CheckIn)
	if !ok {
		return 0
	}
	out := dates.NormalizeDayEnd(in)
	if r.CheckOut != "" {
		co, ok := dates.ParseDate(r.CheckOut)
		if !ok {
			return 0
		}
		if !co.Equal(in) {
			out = co
		}
	}
	if out.Before(in) {
		return 0
	}
	return dates.OverlapDays(in, out, winStart, winEnd)
}

// ParsedDate returns the entry's reference date and whether it parsed.
func (e Entry) ParsedDate() (time.Time, bool) {
	return e.date, e.dated
}

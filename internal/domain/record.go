package domain

import "strings"

// Kind says whether a record is money in or money out.
type Kind string

const (
	KindRevenue Kind = "revenue"
	KindExpense Kind = "expense"
)

// FinancialRecord is one revenue or expense entry of a property.
// Dates are kept as typed (DD/MM/YYYY) so malformed legacy values survive a round trip.
type FinancialRecord struct {
	Date        string `json:"date"`               // reference (payment) date
	CheckIn     string `json:"checkIn,omitempty"`  // stay start, occupancy only
	CheckOut    string `json:"checkOut,omitempty"` // stay end, occupancy only
	Amount      Money  `json:"amount"`             // magnitude, sign comes from Kind
	Description string `json:"description"`
	Kind        Kind   `json:"type"`
}

// IsExpense reports whether the record is an expense.
func (r FinancialRecord) IsExpense() bool {
	return r.Kind == KindExpense
}

// Signed returns the amount with the sign implied by the kind.
func (r FinancialRecord) Signed() Money {
	if r.IsExpense() {
		return r.Amount.Neg()
	}
	return r.Amount
}

// NormalizeRecord is applied wherever records enter the system (manual entry,
// bulk import, document extraction, restore). Amounts become magnitudes and any
// kind other than "expense" becomes revenue.
func NormalizeRecord(r FinancialRecord) FinancialRecord {
	r.Date = strings.TrimSpace(r.Date)
	r.CheckIn = strings.TrimSpace(r.CheckIn)
	r.CheckOut = strings.TrimSpace(r.CheckOut)
	r.Description = strings.TrimSpace(r.Description)
	r.Amount = r.Amount.Abs()
	if Kind(strings.ToLower(strings.TrimSpace(string(r.Kind)))) == KindExpense {
		r.Kind = KindExpense
	} else {
		r.Kind = KindRevenue
	}
	return r
}

// NormalizeRecords normalizes a batch, returning a new slice.
func NormalizeRecords(records []FinancialRecord) []FinancialRecord {
	if records == nil {
		return nil
	}
	out := make([]FinancialRecord, len(records))
	for i, r := range records {
		out[i] = NormalizeRecord(r)
	}
	return out
}

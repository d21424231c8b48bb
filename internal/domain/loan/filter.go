package loan

import (
	"strings"

	"cloud.google.com/go/civil"
)

// LoanFilter narrows the loans collection. Every set field must match
// (logical AND); nil fields are no-ops. A nil filter is the identity.
type LoanFilter struct {
	ID      *int
	Name    *string // case-insensitive substring match
	DueDate *civil.Date
}

func (f *LoanFilter) matches(l Loan) bool {
	if f.ID != nil && l.ID != *f.ID {
		return false
	}
	if f.Name != nil && !strings.Contains(strings.ToLower(l.Name), strings.ToLower(*f.Name)) {
		return false
	}
	if f.DueDate != nil && l.DueDate != *f.DueDate {
		return false
	}
	return true
}

// FilterLoans returns the loans matching f in stored order. A nil filter
// returns the input unchanged.
func FilterLoans(loans []Loan, f *LoanFilter) []Loan {
	if f == nil {
		return loans
	}
	out := make([]Loan, 0, len(loans))
	for _, l := range loans {
		if f.matches(l) {
			out = append(out, l)
		}
	}
	return out
}

// PaymentFilter narrows the payments collection, same AND semantics as
// LoanFilter. Status is an exact match.
type PaymentFilter struct {
	ID     *int
	Status *string
	LoanID *int
}

func (f *PaymentFilter) matches(p LoanPayment) bool {
	if f.ID != nil && p.ID != *f.ID {
		return false
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.LoanID != nil && p.LoanID != *f.LoanID {
		return false
	}
	return true
}

func FilterPayments(payments []LoanPayment, f *PaymentFilter) []LoanPayment {
	if f == nil {
		return payments
	}
	out := make([]LoanPayment, 0, len(payments))
	for _, p := range payments {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

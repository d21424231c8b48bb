package loan

import (
	"cloud.google.com/go/civil"
)

// Stored lifecycle statuses. The status field is an open string set: combined
// reads may also surface a derived payment status (see status.go).
const (
	StatusDraft     = "Draft"
	StatusSubmitted = "Submitted"
	StatusApproved  = "Approved"
)

// Derived payment timeliness statuses.
const (
	StatusOnTime    = "On Time"
	StatusLate      = "Late"
	StatusDefaulted = "Defaulted"
	StatusUnpaid    = "Unpaid"
)

type Loan struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	InterestRate float64    `json:"interest_rate"`
	Principal    int64      `json:"principal"`
	DueDate      civil.Date `json:"due_date"`
	Status       string     `json:"status"`
}

// Editable reports whether mutations other than payment recording are still
// allowed on the loan.
func (l Loan) Editable() bool {
	return l.Status == StatusDraft || l.Status == StatusSubmitted
}

type LoanPayment struct {
	ID          int        `json:"id"`
	LoanID      int        `json:"loan_id"`
	PaymentDate civil.Date `json:"payment_date"`
	// Amount is zero for payments recorded through the GraphQL mutation,
	// which takes no amount.
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
}

// Dataset is the whole persisted state: both collections, loaded and saved
// wholesale (see Store).
type Dataset struct {
	Loans    []Loan        `json:"loans"`
	Payments []LoanPayment `json:"loan_payments"`
}

// FindLoan returns the index of the loan with the given id, or -1.
func (d *Dataset) FindLoan(id int) int {
	for i := range d.Loans {
		if d.Loans[i].ID == id {
			return i
		}
	}
	return -1
}

// NextPaymentID allocates the id for a new payment: max existing id + 1,
// starting at 1 on an empty collection. Single-writer only.
func NextPaymentID(payments []LoanPayment) int {
	max := 0
	for _, p := range payments {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

// NextLoanID mirrors NextPaymentID for the loans collection.
func NextLoanID(loans []Loan) int {
	max := 0
	for _, l := range loans {
		if l.ID > max {
			max = l.ID
		}
	}
	return max + 1
}

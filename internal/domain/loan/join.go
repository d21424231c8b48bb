package loan

import "cloud.google.com/go/civil"

// CombinedLoan is a loan row with the first matching payment's date and
// status flattened in. Status on the embedded Loan is overwritten with the
// payment's status, or StatusUnpaid when no payment exists.
type CombinedLoan struct {
	Loan
	PaymentDate *civil.Date `json:"payment_date"`
}

// DetailedLoan nests every matching payment under the loan; the loan's own
// stored fields are left untouched.
type DetailedLoan struct {
	Loan
	Payments []LoanPayment `json:"payments"`
}

// AnnotatedPayment is a payment with its parent loan attached. Loan is nil
// when the payment's loan_id dangles; dangling references are tolerated.
type AnnotatedPayment struct {
	LoanPayment
	Loan *Loan `json:"loan"`
}

// CombineLoans joins each loan to the first payment in stored order whose
// LoanID matches. The first match wins even when several payments exist;
// loans without any payment come back with a nil PaymentDate and
// StatusUnpaid.
func (d *Dataset) CombineLoans(loans []Loan) []CombinedLoan {
	out := make([]CombinedLoan, 0, len(loans))
	for _, l := range loans {
		row := CombinedLoan{Loan: l}
		row.Status = StatusUnpaid
		for _, p := range d.Payments {
			if p.LoanID == l.ID {
				pd := p.PaymentDate
				row.PaymentDate = &pd
				row.Status = p.Status
				break
			}
		}
		out = append(out, row)
	}
	return out
}

// DetailLoans attaches the full ordered subsequence of matching payments to
// each loan.
func (d *Dataset) DetailLoans(loans []Loan) []DetailedLoan {
	out := make([]DetailedLoan, 0, len(loans))
	for _, l := range loans {
		row := DetailedLoan{Loan: l, Payments: []LoanPayment{}}
		for _, p := range d.Payments {
			if p.LoanID == l.ID {
				row.Payments = append(row.Payments, p)
			}
		}
		out = append(out, row)
	}
	return out
}

// AnnotatePayments attaches the parent loan to each payment.
func (d *Dataset) AnnotatePayments(payments []LoanPayment) []AnnotatedPayment {
	out := make([]AnnotatedPayment, 0, len(payments))
	for _, p := range payments {
		row := AnnotatedPayment{LoanPayment: p}
		if i := d.FindLoan(p.LoanID); i >= 0 {
			l := d.Loans[i]
			row.Loan = &l
		}
		out = append(out, row)
	}
	return out
}

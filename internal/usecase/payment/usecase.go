package payment

import (
	"context"
	"time"

	"cloud.google.com/go/civil"

	domain "loan-servicing-api/internal/domain/loan"
)

// Usecase applies state-changing operations: recording payments, editing and
// deleting loans. Each operation is a full read-modify-write of the dataset
// with last-writer-wins semantics (see domain.Store).
type Usecase struct {
	store domain.Store
	today func() civil.Date
}

// NewUsecase wires the store and a clock. Pass nil to use the system clock;
// tests inject a fixed date.
func NewUsecase(s domain.Store, today func() civil.Date) *Usecase {
	if today == nil {
		today = func() civil.Date { return civil.DateOf(time.Now()) }
	}
	return &Usecase{store: s, today: today}
}

// AddPayment records a payment with a required positive amount (REST
// contract). The payment date is always the current date, never
// caller-supplied.
func (u *Usecase) AddPayment(ctx context.Context, loanID int, amount float64) (*domain.LoanPayment, error) {
	if amount <= 0 {
		return nil, domain.NewValidationError("amount", "must be greater than zero")
	}
	return u.addPayment(ctx, loanID, amount)
}

// AddPaymentNoAmount records a payment without an amount (GraphQL contract);
// the stored amount is zero.
func (u *Usecase) AddPaymentNoAmount(ctx context.Context, loanID int) (*domain.LoanPayment, error) {
	return u.addPayment(ctx, loanID, 0)
}

func (u *Usecase) addPayment(ctx context.Context, loanID int, amount float64) (*domain.LoanPayment, error) {
	d, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := d.FindLoan(loanID)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	l := d.Loans[i]
	if !l.DueDate.IsValid() {
		return nil, domain.NewValidationError("due_date", "loan has a malformed due date")
	}

	paid := u.today()
	p := domain.LoanPayment{
		ID:          domain.NextPaymentID(d.Payments),
		LoanID:      loanID,
		PaymentDate: paid,
		Amount:      amount,
		Status:      domain.ClassifyPayment(paid, l.DueDate),
	}
	d.Payments = append(d.Payments, p)
	if err := u.store.Save(ctx, d); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateLoanInput carries the editable fields; nil fields are left as stored.
type UpdateLoanInput struct {
	Name    *string
	DueDate *civil.Date
}

// UpdateLoan applies a partial update. Only loans still in Draft or
// Submitted may be edited.
func (u *Usecase) UpdateLoan(ctx context.Context, loanID int, in UpdateLoanInput) (*domain.Loan, error) {
	d, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := d.FindLoan(loanID)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	if !d.Loans[i].Editable() {
		return nil, domain.ErrInvalidState
	}
	if in.DueDate != nil && !in.DueDate.IsValid() {
		return nil, domain.NewValidationError("due_date", "must be a valid YYYY-MM-DD date")
	}

	if in.Name != nil {
		d.Loans[i].Name = *in.Name
	}
	if in.DueDate != nil {
		d.Loans[i].DueDate = *in.DueDate
	}
	if err := u.store.Save(ctx, d); err != nil {
		return nil, err
	}
	l := d.Loans[i]
	return &l, nil
}

// DeleteLoan removes the loan and cascade-removes its payments, so no
// dangling loan_id references are left behind. Same editability guard as
// UpdateLoan. Returns the removed loan.
func (u *Usecase) DeleteLoan(ctx context.Context, loanID int) (*domain.Loan, error) {
	d, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := d.FindLoan(loanID)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	if !d.Loans[i].Editable() {
		return nil, domain.ErrInvalidState
	}

	removed := d.Loans[i]
	d.Loans = append(d.Loans[:i], d.Loans[i+1:]...)

	kept := d.Payments[:0]
	for _, p := range d.Payments {
		if p.LoanID != loanID {
			kept = append(kept, p)
		}
	}
	d.Payments = kept

	if err := u.store.Save(ctx, d); err != nil {
		return nil, err
	}
	return &removed, nil
}

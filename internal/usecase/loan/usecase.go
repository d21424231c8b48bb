package loan

import (
	"context"

	domain "loan-servicing-api/internal/domain/loan"
)

// Usecase serves the query side: listing loans in either join mode and
// listing payments with their parent loan. Every call reads the whole
// dataset; nothing here mutates it.
type Usecase struct{ store domain.Store }

func NewUsecase(s domain.Store) *Usecase { return &Usecase{store: s} }

func (u *Usecase) ListCombined(ctx context.Context, f *domain.LoanFilter) ([]domain.CombinedLoan, error) {
	d, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return d.CombineLoans(domain.FilterLoans(d.Loans, f)), nil
}

func (u *Usecase) ListDetailed(ctx context.Context, f *domain.LoanFilter) ([]domain.DetailedLoan, error) {
	d, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return d.DetailLoans(domain.FilterLoans(d.Loans, f)), nil
}

func (u *Usecase) ListPayments(ctx context.Context, f *domain.PaymentFilter) ([]domain.AnnotatedPayment, error) {
	d, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return d.AnnotatePayments(domain.FilterPayments(d.Payments, f)), nil
}

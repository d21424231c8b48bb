package sqlstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "loan-servicing-api/internal/domain/loan"
)

// Store persists the dataset in a local sqlite database through gorm while
// keeping the whole-dataset contract: Load reads both tables wholesale, Save
// replaces both tables inside one transaction. Rows use string dates so the
// schema stays DATE-shaped; parsing happens at this boundary.
type Store struct{ db *gorm.DB }

type loanRecord struct {
	ID           int     `gorm:"primaryKey;column:id"`
	Name         string  `gorm:"column:name"`
	InterestRate float64 `gorm:"column:interest_rate"`
	Principal    int64   `gorm:"column:principal"`
	DueDate      string  `gorm:"column:due_date;type:date"`
	Status       string  `gorm:"column:status;size:32"`
}

func (loanRecord) TableName() string { return "loans" }

type paymentRecord struct {
	ID          int     `gorm:"primaryKey;column:id"`
	LoanID      int     `gorm:"column:loan_id;index"`
	PaymentDate string  `gorm:"column:payment_date;type:date"`
	Amount      float64 `gorm:"column:amount"`
	Status      string  `gorm:"column:status;size:32"`
}

func (paymentRecord) TableName() string { return "loan_payments" }

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite %s: %v", domain.ErrStorage, path, err)
	}
	if err := db.AutoMigrate(&loanRecord{}, &paymentRecord{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", domain.ErrStorage, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Load(ctx context.Context) (*domain.Dataset, error) {
	var lrs []loanRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&lrs).Error; err != nil {
		return nil, fmt.Errorf("%w: load loans: %v", domain.ErrStorage, err)
	}
	var prs []paymentRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&prs).Error; err != nil {
		return nil, fmt.Errorf("%w: load payments: %v", domain.ErrStorage, err)
	}

	d := &domain.Dataset{Loans: make([]domain.Loan, 0, len(lrs)), Payments: make([]domain.LoanPayment, 0, len(prs))}
	for _, r := range lrs {
		due, err := civil.ParseDate(r.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: loan %d due_date %q: %v", domain.ErrStorage, r.ID, r.DueDate, err)
		}
		d.Loans = append(d.Loans, domain.Loan{
			ID: r.ID, Name: r.Name, InterestRate: r.InterestRate,
			Principal: r.Principal, DueDate: due, Status: r.Status,
		})
	}
	for _, r := range prs {
		paid, err := civil.ParseDate(r.PaymentDate)
		if err != nil {
			return nil, fmt.Errorf("%w: payment %d payment_date %q: %v", domain.ErrStorage, r.ID, r.PaymentDate, err)
		}
		d.Payments = append(d.Payments, domain.LoanPayment{
			ID: r.ID, LoanID: r.LoanID, PaymentDate: paid,
			Amount: r.Amount, Status: r.Status,
		})
	}
	return d, nil
}

func (s *Store) Save(ctx context.Context, d *domain.Dataset) error {
	lrs := make([]loanRecord, 0, len(d.Loans))
	for _, l := range d.Loans {
		lrs = append(lrs, loanRecord{
			ID: l.ID, Name: l.Name, InterestRate: l.InterestRate,
			Principal: l.Principal, DueDate: l.DueDate.String(), Status: l.Status,
		})
	}
	prs := make([]paymentRecord, 0, len(d.Payments))
	for _, p := range d.Payments {
		prs = append(prs, paymentRecord{
			ID: p.ID, LoanID: p.LoanID, PaymentDate: p.PaymentDate.String(),
			Amount: p.Amount, Status: p.Status,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&loanRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&paymentRecord{}).Error; err != nil {
			return err
		}
		if len(lrs) > 0 {
			if err := tx.Create(&lrs).Error; err != nil {
				return err
			}
		}
		if len(prs) > 0 {
			if err := tx.Create(&prs).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: save dataset: %v", domain.ErrStorage, err)
	}
	return nil
}

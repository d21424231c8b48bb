package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	domain "loan-servicing-api/internal/domain/loan"
)

// Store keeps the whole dataset in a single JSON file. A missing file reads
// as an empty dataset; every Save rewrites the file in full.
type Store struct{ path string }

func New(path string) *Store { return &Store{path: path} }

func (s *Store) Load(ctx context.Context) (*domain.Dataset, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &domain.Dataset{Loans: []domain.Loan{}, Payments: []domain.LoanPayment{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStorage, s.path, err)
	}
	var d domain.Dataset
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrStorage, s.path, err)
	}
	return &d, nil
}

func (s *Store) Save(ctx context.Context, d *domain.Dataset) error {
	raw, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode dataset: %v", domain.ErrStorage, err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: mkdir %s: %v", domain.ErrStorage, dir, err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, s.path, err)
	}
	return nil
}

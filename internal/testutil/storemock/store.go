package storemock

import (
	"context"

	domain "loan-servicing-api/internal/domain/loan"
)

// Store is a function-backed mock that satisfies domain.Store. Set only the
// hooks a test needs; unset Load yields an empty dataset, unset Save is a
// no-op.
type Store struct {
	LoadFn func(ctx context.Context) (*domain.Dataset, error)
	SaveFn func(ctx context.Context, d *domain.Dataset) error
}

func (m *Store) Load(ctx context.Context) (*domain.Dataset, error) {
	if m.LoadFn != nil {
		return m.LoadFn(ctx)
	}
	return &domain.Dataset{}, nil
}

func (m *Store) Save(ctx context.Context, d *domain.Dataset) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, d)
	}
	return nil
}

// Fixed returns a mock serving the given dataset and capturing the last
// saved dataset into the returned pointer-to-pointer.
func Fixed(d *domain.Dataset) (*Store, **domain.Dataset) {
	var saved *domain.Dataset
	m := &Store{
		LoadFn: func(ctx context.Context) (*domain.Dataset, error) { return d, nil },
		SaveFn: func(ctx context.Context, ds *domain.Dataset) error {
			saved = ds
			return nil
		},
	}
	return m, &saved
}

package loan

import "context"

// Store reads and replaces the whole dataset. There is no partial update and
// no locking: concurrent writers race and the last Save wins. Implementations
// must return an empty dataset, not an error, when no data exists yet, and
// wrap load/save failures with ErrStorage.
type Store interface {
	Load(ctx context.Context) (*Dataset, error)
	Save(ctx context.Context, d *Dataset) error
}

package driver

import "context"

// Repository describes driver reference-data reads needed by use cases.
type Repository interface {
	GetByIDs(ctx context.Context, ids []string) ([]Driver, error)
	List(ctx context.Context) ([]Driver, error)
}

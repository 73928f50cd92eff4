package author

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=author

// Repository defines the contract for author data storage.
type Repository interface {
	FindAll(ctx context.Context) ([]Author, error)
	FindByID(ctx context.Context, id int64) (Author, error)
	Create(ctx context.Context, a Author) (int64, error)
	Update(ctx context.Context, a Author) error
	Delete(ctx context.Context, id int64) error
}

package book

import (
	"context"

	"bookmesh/internal/platform/authorsvc"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	FindAll(ctx context.Context) ([]Book, error)
	FindByID(ctx context.Context, id int64) (Book, error)
	Create(ctx context.Context, b Book) (int64, error)
	Update(ctx context.Context, b Book) error
	Delete(ctx context.Context, id int64) error
}

// AuthorClient fetches a single author from the author service.
type AuthorClient interface {
	FetchAuthor(ctx context.Context, id int64) (authorsvc.Author, error)
}

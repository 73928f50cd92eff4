package book

import (
	"context"
	"fmt"

	"bookmesh/internal/platform/authorsvc"
)

// Service composes local books with authors fetched from the author service.
//
// Composition is all-or-nothing: if an author cannot be fetched the whole read fails.
// Retrying is the author client's job; this layer never retries.
type Service struct {
	repo    Repository
	authors AuthorClient
}

// NewService creates a new book service.
func NewService(repo Repository, authors AuthorClient) *Service {
	return &Service{repo: repo, authors: authors}
}

// GetByID returns the book with its author name. A missing book yields ErrNotFound without
// contacting the author service.
func (s *Service) GetByID(ctx context.Context, id int64) (View, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.compose(ctx, b)
}

// List returns every book with its author name.
// Authors are fetched one book at a time, in store order, with no batching or deduplication.
// The first failed lookup aborts the whole list.
func (s *Service) List(ctx context.Context) ([]View, error) {
	books, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	views := make([]View, 0, len(books))
	for _, b := range books {
		v, err := s.compose(ctx, b)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) compose(ctx context.Context, b Book) (View, error) {
	a, err := s.authors.FetchAuthor(ctx, b.AuthorID)
	if err != nil {
		return View{}, &AuthorLookupError{BookID: b.ID, AuthorID: b.AuthorID, Err: err}
	}
	return View{Book: b, AuthorName: AuthorName(a)}, nil
}

// AuthorName formats an author as "Last, First".
func AuthorName(a authorsvc.Author) string {
	return fmt.Sprintf("%s, %s", a.LastName, a.FirstName)
}

// Create stores a new book and returns it with its issued id.
func (s *Service) Create(ctx context.Context, b Book) (Book, error) {
	id, err := s.repo.Create(ctx, b)
	if err != nil {
		return Book{}, err
	}
	b.ID = id
	return b, nil
}

// Update replaces the fields of an existing book. Returns ErrNotFound for unknown ids.
func (s *Service) Update(ctx context.Context, id int64, b Book) (Book, error) {
	b.ID = id
	if err := s.repo.Update(ctx, b); err != nil {
		return Book{}, err
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

package author

import (
	"context"
)

// Service provides author-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new author service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Author, error) {
	return s.repo.FindAll(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Author, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a new author and returns it with its issued id.
func (s *Service) Create(ctx context.Context, a Author) (Author, error) {
	id, err := s.repo.Create(ctx, a)
	if err != nil {
		return Author{}, err
	}
	a.ID = id
	return a, nil
}

// Update replaces the names of an existing author. Returns ErrNotFound for unknown ids.
func (s *Service) Update(ctx context.Context, id int64, a Author) (Author, error) {
	a.ID = id
	if err := s.repo.Update(ctx, a); err != nil {
		return Author{}, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

package service

import (
	"context"
	"fmt"

	"librarian/pkg/domain"
	"librarian/pkg/store"
)

// GenreService manages the genre catalog.
type GenreService struct {
	store *store.Store
}

func NewGenreService(s *store.Store) *GenreService {
	return &GenreService{store: s}
}

// Create validates the name and inserts the genre. Duplicate names are
// rejected as validation errors, same policy as authors.
func (s *GenreService) Create(ctx context.Context, name string) (domain.Genre, error) {
	if err := domain.ValidateGenreName(name); err != nil {
		return domain.Genre{}, err
	}
	var created domain.Genre
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		_, ok, err := tx.Genres.GetByName(name)
		if err != nil {
			return err
		}
		if ok {
			return domain.NewValidationError(fmt.Sprintf("Genre with name '%s' already exists", name))
		}
		created = domain.Genre{Name: name}
		return tx.Genres.Add(&created)
	})
	if err != nil {
		return domain.Genre{}, err
	}
	return created, nil
}

// List returns one page of genres in insertion order.
func (s *GenreService) List(ctx context.Context, page, limit int) (domain.Page[domain.Genre], error) {
	var result domain.Page[domain.Genre]
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		items, total, err := tx.Genres.PaginatedList(page, limit)
		if err != nil {
			return err
		}
		result = domain.NewPage(items, total, limit)
		return nil
	})
	return result, err
}

package service

import (
	"context"
	"fmt"

	"librarian/pkg/domain"
	"librarian/pkg/store"
)

// AuthorService manages the author catalog. Each public method runs
// inside one store transaction.
type AuthorService struct {
	store *store.Store
}

func NewAuthorService(s *store.Store) *AuthorService {
	return &AuthorService{store: s}
}

// Create validates the fields and inserts the author. A duplicate name is
// a soft business rule, rejected as a validation error rather than a
// storage conflict.
func (s *AuthorService) Create(ctx context.Context, name, bio string) (domain.Author, error) {
	if err := domain.ValidateAuthorName(name); err != nil {
		return domain.Author{}, err
	}
	var created domain.Author
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		_, ok, err := tx.Authors.GetByName(name)
		if err != nil {
			return err
		}
		if ok {
			return domain.NewValidationError(fmt.Sprintf("Author with name '%s' already exists", name))
		}
		created = domain.Author{Name: name, Bio: bio}
		return tx.Authors.Add(&created)
	})
	if err != nil {
		return domain.Author{}, err
	}
	return created, nil
}

// Get returns the author by id.
func (s *AuthorService) Get(ctx context.Context, id string) (domain.Author, error) {
	var author domain.Author
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		a, ok, err := tx.Authors.GetByID(id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotFoundError("Author not found")
		}
		author = a
		return nil
	})
	return author, err
}

// List returns one page of authors in insertion order.
func (s *AuthorService) List(ctx context.Context, page, limit int) (domain.Page[domain.Author], error) {
	var result domain.Page[domain.Author]
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		items, total, err := tx.Authors.PaginatedList(page, limit)
		if err != nil {
			return err
		}
		result = domain.NewPage(items, total, limit)
		return nil
	})
	return result, err
}

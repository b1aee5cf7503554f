package service

import (
	"context"
	"log/slog"

	"librarian/pkg/domain"
	"librarian/pkg/store"
)

// BookService manages book metadata and physical copies.
type BookService struct {
	store *store.Store
}

func NewBookService(s *store.Store) *BookService {
	return &BookService{store: s}
}

// CreateBookInput carries the fields for a new book.
type CreateBookInput struct {
	Title         string
	ISBN          string
	AuthorID      string
	GenreIDs      []string
	InitialCopies int
}

// UpdateBookInput carries a partial update; nil fields stay unchanged.
// A non-nil GenreIDs fully replaces the association set.
type UpdateBookInput struct {
	Title    *string
	ISBN     *string
	AuthorID *string
	GenreIDs []string
}

// Create validates the fields, rejects duplicate ISBNs and inserts the
// book with its genre links and initial copies, all in one transaction.
// Genre ids that do not resolve are silently ignored.
func (s *BookService) Create(ctx context.Context, in CreateBookInput) (domain.Book, error) {
	if err := domain.ValidateBookTitle(in.Title); err != nil {
		return domain.Book{}, err
	}
	if err := domain.ValidateInitialCopies(in.InitialCopies); err != nil {
		return domain.Book{}, err
	}
	isbn, err := domain.NormalizeISBN(in.ISBN)
	if err != nil {
		return domain.Book{}, err
	}
	slog.Info("creating book", "title", in.Title, "isbn", isbn, "initial_copies", in.InitialCopies)

	var created domain.Book
	err = s.store.WithTx(ctx, func(tx *store.Tx) error {
		if _, ok, err := tx.Books.GetByISBN(isbn); err != nil {
			return err
		} else if ok {
			return domain.NewConflictError("Book with this ISBN already exists")
		}
		genres, err := tx.Genres.ListByIDs(in.GenreIDs)
		if err != nil {
			return err
		}
		book := domain.Book{
			Title:    in.Title,
			ISBN:     isbn,
			AuthorID: in.AuthorID,
			Genres:   genres,
		}
		if err := tx.Books.Add(&book); err != nil {
			return err
		}
		for i := 0; i < in.InitialCopies; i++ {
			copyRec := domain.Copy{BookID: book.ID}
			if err := tx.Books.AddCopy(&copyRec); err != nil {
				return err
			}
		}
		loaded, ok, err := tx.Books.GetByID(book.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewDatabaseError("Database operation failed")
		}
		created = loaded
		return nil
	})
	if err != nil {
		return domain.Book{}, err
	}
	return created, nil
}

// Get returns the book with author, genres and copy counts.
func (s *BookService) Get(ctx context.Context, id string) (domain.Book, error) {
	var book domain.Book
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		b, ok, err := tx.Books.GetByID(id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotFoundError("Book not found")
		}
		book = b
		return nil
	})
	return book, err
}

// List returns one page of books in insertion order.
func (s *BookService) List(ctx context.Context, page, limit int) (domain.Page[domain.Book], error) {
	var result domain.Page[domain.Book]
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		items, total, err := tx.Books.PaginatedList(page, limit)
		if err != nil {
			return err
		}
		result = domain.NewPage(items, total, limit)
		return nil
	})
	return result, err
}

// Update applies a partial update. Changing the ISBN re-checks uniqueness
// excluding the book itself.
func (s *BookService) Update(ctx context.Context, id string, in UpdateBookInput) (domain.Book, error) {
	if in.Title != nil {
		if err := domain.ValidateBookTitle(*in.Title); err != nil {
			return domain.Book{}, err
		}
	}
	var isbn string
	if in.ISBN != nil {
		normalized, err := domain.NormalizeISBN(*in.ISBN)
		if err != nil {
			return domain.Book{}, err
		}
		isbn = normalized
	}

	var updated domain.Book
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		book, ok, err := tx.Books.GetByID(id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotFoundError("Book not found")
		}
		if in.Title != nil {
			book.Title = *in.Title
		}
		if in.AuthorID != nil {
			book.AuthorID = *in.AuthorID
		}
		if in.ISBN != nil && isbn != book.ISBN {
			if _, exists, err := tx.Books.GetByISBN(isbn); err != nil {
				return err
			} else if exists {
				return domain.NewConflictError("Book with this ISBN already exists")
			}
			book.ISBN = isbn
		}
		if err := tx.Books.Update(book); err != nil {
			return err
		}
		if in.GenreIDs != nil {
			genres, err := tx.Genres.ListByIDs(in.GenreIDs)
			if err != nil {
				return err
			}
			if err := tx.Books.ReplaceGenres(book.ID, genres); err != nil {
				return err
			}
		}
		loaded, ok, err := tx.Books.GetByID(book.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewDatabaseError("Database operation failed")
		}
		updated = loaded
		return nil
	})
	if err != nil {
		return domain.Book{}, err
	}
	return updated, nil
}

// Delete removes the book and its copies. Books with an open loan cannot
// be deleted.
func (s *BookService) Delete(ctx context.Context, id string) error {
	return s.store.WithTx(ctx, func(tx *store.Tx) error {
		_, ok, err := tx.Books.GetByID(id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotFoundError("Book not found")
		}
		open, err := tx.Loans.CountOpenLoansForBook(id)
		if err != nil {
			return err
		}
		if open > 0 {
			return domain.NewValidationError("Book has copies on loan and cannot be deleted")
		}
		return tx.Books.Delete(id)
	})
}

// AddCopy registers one more physical copy of an existing book.
func (s *BookService) AddCopy(ctx context.Context, bookID string) (domain.Copy, error) {
	var created domain.Copy
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		_, ok, err := tx.Books.GetByID(bookID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotFoundError("Book not found")
		}
		created = domain.Copy{BookID: bookID}
		return tx.Books.AddCopy(&created)
	})
	if err != nil {
		return domain.Copy{}, err
	}
	return created, nil
}

// ListCopies returns one page of the book's copies.
func (s *BookService) ListCopies(ctx context.Context, bookID string, page, limit int) (domain.Page[domain.Copy], error) {
	var result domain.Page[domain.Copy]
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		_, ok, err := tx.Books.GetByID(bookID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotFoundError("Book not found")
		}
		items, total, err := tx.Books.PaginatedCopies(bookID, page, limit)
		if err != nil {
			return err
		}
		result = domain.NewPage(items, total, limit)
		return nil
	})
	return result, err
}

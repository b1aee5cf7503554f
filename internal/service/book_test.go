package service

import (
	"context"
	"testing"

	"librarian/pkg/domain"
)

func TestBookCreateWithGenresAndCopies(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	authors := NewAuthorService(st)
	genres := NewGenreService(st)
	books := NewBookService(st)

	author, err := authors.Create(ctx, "N. K. Jemisin", "")
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	fantasy, err := genres.Create(ctx, "Fantasy")
	if err != nil {
		t.Fatalf("create genre: %v", err)
	}

	book, err := books.Create(ctx, CreateBookInput{
		Title:         "The Fifth Season",
		ISBN:          "978-0-316-22929-6",
		AuthorID:      author.ID,
		GenreIDs:      []string{fantasy.ID, "unknown-genre-id"},
		InitialCopies: 3,
	})
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	if book.ISBN != "9780316229296" {
		t.Fatalf("isbn should be stored normalized, got %q", book.ISBN)
	}
	if book.Author == nil || book.Author.Name != "N. K. Jemisin" {
		t.Fatalf("author not resolved: %+v", book.Author)
	}
	if len(book.Genres) != 1 || book.Genres[0].Name != "Fantasy" {
		t.Fatalf("unresolved genre ids must be ignored, got %+v", book.Genres)
	}
	if book.TotalCopies != 3 || book.AvailableCopies != 3 {
		t.Fatalf("copy counts: total %d, available %d", book.TotalCopies, book.AvailableCopies)
	}
}

func TestBookCreateRejections(t *testing.T) {
	books := NewBookService(newTestStore(t))
	ctx := context.Background()

	if _, err := books.Create(ctx, CreateBookInput{Title: "", ISBN: "1234567890"}); !domain.IsValidation(err) {
		t.Fatalf("empty title: expected validation error, got %v", err)
	}
	if _, err := books.Create(ctx, CreateBookInput{Title: "T", ISBN: "12345"}); !domain.IsValidation(err) {
		t.Fatalf("bad isbn: expected validation error, got %v", err)
	}
	if _, err := books.Create(ctx, CreateBookInput{Title: "T", ISBN: "1234567890", InitialCopies: -1}); !domain.IsValidation(err) {
		t.Fatalf("negative copies: expected validation error, got %v", err)
	}

	if _, err := books.Create(ctx, CreateBookInput{Title: "First", ISBN: "1234567890"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := books.Create(ctx, CreateBookInput{Title: "Second", ISBN: "123-456-7890"})
	if !domain.IsConflict(err) {
		t.Fatalf("duplicate isbn (different formatting): expected conflict, got %v", err)
	}
	if err.Error() != "Book with this ISBN already exists" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestBookUpdate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	books := NewBookService(st)
	genres := NewGenreService(st)

	book, err := books.Create(ctx, CreateBookInput{Title: "Draft", ISBN: "1111111111"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	other, err := books.Create(ctx, CreateBookInput{Title: "Other", ISBN: "2222222222"})
	if err != nil {
		t.Fatalf("create other: %v", err)
	}

	title := "Final"
	updated, err := books.Update(ctx, book.ID, UpdateBookInput{Title: &title})
	if err != nil {
		t.Fatalf("update title: %v", err)
	}
	if updated.Title != "Final" || updated.ISBN != "1111111111" {
		t.Fatalf("unexpected result: %+v", updated)
	}

	taken := other.ISBN
	if _, err := books.Update(ctx, book.ID, UpdateBookInput{ISBN: &taken}); !domain.IsConflict(err) {
		t.Fatalf("taken isbn: expected conflict, got %v", err)
	}
	same := book.ISBN
	if _, err := books.Update(ctx, book.ID, UpdateBookInput{ISBN: &same}); err != nil {
		t.Fatalf("own isbn must not conflict: %v", err)
	}

	poetry, err := genres.Create(ctx, "Poetry")
	if err != nil {
		t.Fatalf("create genre: %v", err)
	}
	updated, err = books.Update(ctx, book.ID, UpdateBookInput{GenreIDs: []string{poetry.ID}})
	if err != nil {
		t.Fatalf("replace genres: %v", err)
	}
	if len(updated.Genres) != 1 || updated.Genres[0].Name != "Poetry" {
		t.Fatalf("genres not replaced: %+v", updated.Genres)
	}
	updated, err = books.Update(ctx, book.ID, UpdateBookInput{GenreIDs: []string{}})
	if err != nil {
		t.Fatalf("clear genres: %v", err)
	}
	if len(updated.Genres) != 0 {
		t.Fatalf("empty set must clear genres, got %+v", updated.Genres)
	}
}

func TestBookDeleteBlockedWhileOnLoan(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	books := NewBookService(st)
	members := NewMemberService(st)
	loans := NewLoanService(st, nil)

	book, err := books.Create(ctx, CreateBookInput{Title: "Held", ISBN: "3333333333", InitialCopies: 1})
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	member, err := members.Create(ctx, "Holder", "holder@example.com")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	loan, err := loans.Borrow(ctx, book.ID, member.ID, "")
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}

	err = books.Delete(ctx, book.ID)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error while on loan, got %v", err)
	}

	if _, err := loans.Return(ctx, loan.ID); err != nil {
		t.Fatalf("return: %v", err)
	}
	if err := books.Delete(ctx, book.ID); err != nil {
		t.Fatalf("delete after return: %v", err)
	}
	if _, err := books.Get(ctx, book.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestBookAddCopyAndListCopies(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	books := NewBookService(st)

	book, err := books.Create(ctx, CreateBookInput{Title: "Grows", ISBN: "4444444444", InitialCopies: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	added, err := books.AddCopy(ctx, book.ID)
	if err != nil {
		t.Fatalf("add copy: %v", err)
	}
	if !added.Available || added.Status != domain.StatusAvailable {
		t.Fatalf("new copy must start available: %+v", added)
	}

	page, err := books.ListCopies(ctx, book.ID, 1, 10)
	if err != nil {
		t.Fatalf("list copies: %v", err)
	}
	if len(page.Items) != 2 || page.TotalCount != 2 {
		t.Fatalf("expected 2 copies, got %d (total %d)", len(page.Items), page.TotalCount)
	}

	if _, err := books.AddCopy(ctx, "no-such-book"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := books.ListCopies(ctx, "no-such-book", 1, 10); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

package service

import (
	"context"
	"testing"

	"librarian/pkg/domain"
)

type loanFixture struct {
	books   *BookService
	members *MemberService
	loans   *LoanService
}

func newLoanFixture(t *testing.T) *loanFixture {
	t.Helper()
	st := newTestStore(t)
	return &loanFixture{
		books:   NewBookService(st),
		members: NewMemberService(st),
		loans:   NewLoanService(st, nil),
	}
}

func (f *loanFixture) seedBook(t *testing.T, title, isbn string, copies int) domain.Book {
	t.Helper()
	book, err := f.books.Create(context.Background(), CreateBookInput{
		Title: title, ISBN: isbn, InitialCopies: copies,
	})
	if err != nil {
		t.Fatalf("seed book: %v", err)
	}
	return book
}

func (f *loanFixture) seedMember(t *testing.T, name, email string) domain.Member {
	t.Helper()
	member, err := f.members.Create(context.Background(), name, email)
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return member
}

func TestBorrowExhaustsAndReplenishesCopies(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	book := f.seedBook(t, "Scarce", "1234567890", 2)
	alice := f.seedMember(t, "Alice", "alice@example.com")
	bob := f.seedMember(t, "Bob", "bob@example.com")
	carol := f.seedMember(t, "Carol", "carol@example.com")

	first, err := f.loans.Borrow(ctx, book.ID, alice.ID, "")
	if err != nil {
		t.Fatalf("first borrow: %v", err)
	}
	if _, err := f.loans.Borrow(ctx, book.ID, bob.ID, ""); err != nil {
		t.Fatalf("second borrow: %v", err)
	}

	_, err = f.loans.Borrow(ctx, book.ID, carol.ID, "")
	if !domain.IsValidation(err) {
		t.Fatalf("third borrow must fail, got %v", err)
	}
	if err.Error() != "Book is not available (no copies left)" &&
		err.Error() != "No available copies for this book" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	returned, err := f.loans.Return(ctx, first.ID)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if returned.ReturnedAt == nil {
		t.Fatalf("closed loan must carry a return time")
	}

	if _, err := f.loans.Borrow(ctx, book.ID, carol.ID, ""); err != nil {
		t.Fatalf("borrow after return: %v", err)
	}

	got, err := f.books.Get(ctx, book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if got.AvailableCopies != 0 || got.TotalCopies != 2 {
		t.Fatalf("copy counts after churn: available %d, total %d", got.AvailableCopies, got.TotalCopies)
	}
}

func TestBorrowValidatesBookAndMember(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	book := f.seedBook(t, "Real", "1111111111", 1)
	member := f.seedMember(t, "Real", "real@example.com")

	if _, err := f.loans.Borrow(ctx, "no-such-book", member.ID, ""); !domain.IsNotFound(err) {
		t.Fatalf("missing book: expected not found, got %v", err)
	}
	if _, err := f.loans.Borrow(ctx, book.ID, "no-such-member", ""); !domain.IsNotFound(err) {
		t.Fatalf("missing member: expected not found, got %v", err)
	}
}

func TestBorrowSpecificCopy(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	book := f.seedBook(t, "Picky", "2222222222", 2)
	member := f.seedMember(t, "Picky", "picky@example.com")

	page, err := f.books.ListCopies(ctx, book.ID, 1, 10)
	if err != nil {
		t.Fatalf("list copies: %v", err)
	}
	target := page.Items[1]

	loan, err := f.loans.Borrow(ctx, book.ID, member.ID, target.ID)
	if err != nil {
		t.Fatalf("borrow specific copy: %v", err)
	}
	if loan.CopyID != target.ID {
		t.Fatalf("loan bound to %s, wanted %s", loan.CopyID, target.ID)
	}

	other := f.seedMember(t, "Other", "other@example.com")
	_, err = f.loans.Borrow(ctx, book.ID, other.ID, target.ID)
	if !domain.IsValidation(err) {
		t.Fatalf("borrowed copy: expected validation error, got %v", err)
	}
	if err.Error() != "Requested copy is not available" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if _, err := f.loans.Borrow(ctx, book.ID, other.ID, "no-such-copy"); !domain.IsValidation(err) {
		t.Fatalf("unknown copy: expected validation error, got %v", err)
	}
}

func TestReturnRejectsClosedAndMissingLoans(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	book := f.seedBook(t, "Once", "3333333333", 1)
	member := f.seedMember(t, "Once", "once@example.com")

	loan, err := f.loans.Borrow(ctx, book.ID, member.ID, "")
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if _, err := f.loans.Return(ctx, loan.ID); err != nil {
		t.Fatalf("return: %v", err)
	}

	_, err = f.loans.Return(ctx, loan.ID)
	if !domain.IsValidation(err) {
		t.Fatalf("second return: expected validation error, got %v", err)
	}
	if err.Error() != "Book already returned" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	if _, err := f.loans.Return(ctx, "no-such-loan"); !domain.IsNotFound(err) {
		t.Fatalf("missing loan: expected not found, got %v", err)
	}
}

func TestListMemberLoans(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	book := f.seedBook(t, "Popular", "4444444444", 3)
	alice := f.seedMember(t, "Alice", "alice@example.com")
	bob := f.seedMember(t, "Bob", "bob@example.com")

	for i := 0; i < 2; i++ {
		if _, err := f.loans.Borrow(ctx, book.ID, alice.ID, ""); err != nil {
			t.Fatalf("alice borrow %d: %v", i, err)
		}
	}
	if _, err := f.loans.Borrow(ctx, book.ID, bob.ID, ""); err != nil {
		t.Fatalf("bob borrow: %v", err)
	}

	mine, err := f.loans.ListMemberLoans(ctx, alice.ID, 1, 10)
	if err != nil {
		t.Fatalf("list member loans: %v", err)
	}
	if len(mine.Items) != 2 || mine.TotalCount != 2 {
		t.Fatalf("alice should have 2 loans, got %d (total %d)", len(mine.Items), mine.TotalCount)
	}
	for _, l := range mine.Items {
		if l.MemberID != alice.ID {
			t.Fatalf("foreign loan in member listing: %+v", l)
		}
		if !l.Open() {
			t.Fatalf("loan should still be open: %+v", l)
		}
	}

	all, err := f.loans.ListAllLoans(ctx, 1, 10)
	if err != nil {
		t.Fatalf("list all loans: %v", err)
	}
	if len(all.Items) != 3 || all.TotalCount != 3 {
		t.Fatalf("expected 3 loans total, got %d (total %d)", len(all.Items), all.TotalCount)
	}
}

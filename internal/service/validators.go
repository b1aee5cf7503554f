package service

import (
	"librarian/pkg/domain"
	"librarian/pkg/store"
)

// LoanValidator is one precondition checked before a borrow mutates
// anything. Validators run in order inside the borrow transaction; all
// must pass before the loan is created.
type LoanValidator interface {
	Validate(tx *store.Tx, bookID, memberID string) error
}

// BookAvailabilityValidator checks that the book exists and still has an
// available copy.
type BookAvailabilityValidator struct{}

func (BookAvailabilityValidator) Validate(tx *store.Tx, bookID, memberID string) error {
	_, ok, err := tx.Books.GetByID(bookID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError("Book not found")
	}
	_, ok, err = tx.Books.AvailableCopy(bookID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewValidationError("Book is not available (no copies left)")
	}
	return nil
}

// MemberExistenceValidator checks that the borrowing member exists.
type MemberExistenceValidator struct{}

func (MemberExistenceValidator) Validate(tx *store.Tx, bookID, memberID string) error {
	_, ok, err := tx.Members.GetByID(memberID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError("Member not found")
	}
	return nil
}

// DefaultLoanValidators is the standard precondition list for borrows.
func DefaultLoanValidators() []LoanValidator {
	return []LoanValidator{
		BookAvailabilityValidator{},
		MemberExistenceValidator{},
	}
}

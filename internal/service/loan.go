package service

import (
	"context"
	"log/slog"
	"time"

	"librarian/pkg/domain"
	"librarian/pkg/store"
)

// LoanService drives the copy/loan state machine: Available -> Borrowed
// on borrow, Borrowed -> Available on return. No other transitions exist.
type LoanService struct {
	store      *store.Store
	validators []LoanValidator
}

// NewLoanService wires the service with its precondition validators.
// Passing nil installs the default validator list.
func NewLoanService(s *store.Store, validators []LoanValidator) *LoanService {
	if validators == nil {
		validators = DefaultLoanValidators()
	}
	return &LoanService{store: s, validators: validators}
}

// Borrow runs every validator, picks a copy and creates the loan while
// flipping the copy to Borrowed, all inside one transaction. When copyID
// is set that exact copy must be available; otherwise the oldest
// available copy of the book is chosen.
func (s *LoanService) Borrow(ctx context.Context, bookID, memberID, copyID string) (domain.Loan, error) {
	var loan domain.Loan
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		for _, v := range s.validators {
			if err := v.Validate(tx, bookID, memberID); err != nil {
				return err
			}
		}

		var chosen domain.Copy
		if copyID != "" {
			copyRec, ok, err := tx.Books.GetCopyByID(copyID)
			if err != nil {
				return err
			}
			if !ok || !copyRec.Available {
				return domain.NewValidationError("Requested copy is not available")
			}
			chosen = copyRec
		} else {
			copyRec, ok, err := tx.Books.AvailableCopy(bookID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.NewValidationError("No available copies for this book")
			}
			chosen = copyRec
		}

		// The earlier read is not trusted: the flip is conditional on the
		// copy still being available inside this transaction.
		flipped, err := tx.Books.MarkCopyBorrowed(chosen.ID)
		if err != nil {
			return err
		}
		if !flipped {
			return domain.NewValidationError("No available copies for this book")
		}

		loan = domain.Loan{CopyID: chosen.ID, MemberID: memberID}
		return tx.Loans.Add(&loan)
	})
	if err != nil {
		return domain.Loan{}, err
	}
	slog.Info("loan created", "loan_id", loan.ID, "copy_id", loan.CopyID, "member_id", loan.MemberID)
	return loan, nil
}

// Return closes the loan and flips its copy back to Available. Returning
// an already-closed loan is rejected; closed loans are retained.
func (s *LoanService) Return(ctx context.Context, loanID string) (domain.Loan, error) {
	var loan domain.Loan
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		found, ok, err := tx.Loans.GetByID(loanID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotFoundError("Loan record not found")
		}
		if !found.Open() {
			return domain.NewValidationError("Book already returned")
		}

		if err := tx.Books.MarkCopyReturned(found.CopyID); err != nil {
			return err
		}
		returnedAt := time.Now().UTC()
		if err := tx.Loans.Close(found.ID, returnedAt); err != nil {
			return err
		}
		found.ReturnedAt = &returnedAt
		loan = found
		return nil
	})
	if err != nil {
		return domain.Loan{}, err
	}
	slog.Info("loan returned", "loan_id", loan.ID, "copy_id", loan.CopyID)
	return loan, nil
}

// ListMemberLoans returns one page of the member's loans, newest borrowed
// first.
func (s *LoanService) ListMemberLoans(ctx context.Context, memberID string, page, limit int) (domain.Page[domain.Loan], error) {
	var result domain.Page[domain.Loan]
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		items, total, err := tx.Loans.PaginatedListByMember(memberID, page, limit)
		if err != nil {
			return err
		}
		result = domain.NewPage(items, total, limit)
		return nil
	})
	return result, err
}

// ListAllLoans is ListMemberLoans without a member filter.
func (s *LoanService) ListAllLoans(ctx context.Context, page, limit int) (domain.Page[domain.Loan], error) {
	return s.ListMemberLoans(ctx, "", page, limit)
}

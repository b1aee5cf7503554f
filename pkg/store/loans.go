package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"librarian/pkg/domain"
)

// LoanRepo is the loan accessor bound to one transaction.
type LoanRepo struct {
	db *gorm.DB
}

func (r *LoanRepo) Add(l *domain.Loan) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.BorrowedAt.IsZero() {
		l.BorrowedAt = time.Now().UTC()
	}
	model := loanToModel(*l)
	return r.db.Create(&model).Error
}

func (r *LoanRepo) GetByID(id string) (domain.Loan, bool, error) {
	var model LoanModel
	if err := r.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Loan{}, false, nil
		}
		return domain.Loan{}, false, err
	}
	return loanFromModel(model), true, nil
}

// Close stamps returned_at on the loan. Closed loans are retained.
func (r *LoanRepo) Close(id string, returnedAt time.Time) error {
	return r.db.Model(&LoanModel{}).Where("id = ?", id).
		Update("returned_at", returnedAt.UTC()).Error
}

// OpenLoanForCopy returns the copy's open loan, if any.
func (r *LoanRepo) OpenLoanForCopy(copyID string) (domain.Loan, bool, error) {
	var model LoanModel
	err := r.db.Where("copy_id = ? AND returned_at IS NULL", copyID).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Loan{}, false, nil
		}
		return domain.Loan{}, false, err
	}
	return loanFromModel(model), true, nil
}

// CountOpenLoansForBook counts open loans across all copies of the book.
func (r *LoanRepo) CountOpenLoansForBook(bookID string) (int64, error) {
	var count int64
	err := r.db.Model(&LoanModel{}).
		Where("returned_at IS NULL AND copy_id IN (?)",
			r.db.Model(&CopyModel{}).Select("id").Where("book_id = ?", bookID)).
		Count(&count).Error
	return count, err
}

func (r *LoanRepo) ListAll() ([]domain.Loan, error) {
	var models []LoanModel
	if err := r.db.Order("borrowed_at DESC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Loan, 0, len(models))
	for _, m := range models {
		res = append(res, loanFromModel(m))
	}
	return res, nil
}

// PaginatedListByMember returns one page of loans, newest borrowed first.
// An empty memberID lists loans for all members.
func (r *LoanRepo) PaginatedListByMember(memberID string, page, limit int) ([]domain.Loan, int64, error) {
	byMember := func() *gorm.DB {
		q := r.db.Model(&LoanModel{})
		if memberID != "" {
			q = q.Where("member_id = ?", memberID)
		}
		return q
	}
	var total int64
	if err := byMember().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		return []domain.Loan{}, total, nil
	}
	var models []LoanModel
	if err := applyPage(byMember().Order("borrowed_at DESC, id ASC"), page, limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	res := make([]domain.Loan, 0, len(models))
	for _, m := range models {
		res = append(res, loanFromModel(m))
	}
	return res, total, nil
}

func loanToModel(l domain.Loan) LoanModel {
	return LoanModel{
		ID:         l.ID,
		CopyID:     l.CopyID,
		MemberID:   l.MemberID,
		BorrowedAt: l.BorrowedAt,
		ReturnedAt: l.ReturnedAt,
	}
}

func loanFromModel(m LoanModel) domain.Loan {
	return domain.Loan{
		ID:         m.ID,
		CopyID:     m.CopyID,
		MemberID:   m.MemberID,
		BorrowedAt: m.BorrowedAt,
		ReturnedAt: m.ReturnedAt,
	}
}

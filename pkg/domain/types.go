package domain

import "time"

type CopyStatus string

const (
	StatusAvailable CopyStatus = "Available"
	StatusBorrowed  CopyStatus = "Borrowed"
)

type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Genre struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	ISBN            string    `json:"isbn"`
	AuthorID        string    `json:"authorId,omitempty"`
	Author          *Author   `json:"author,omitempty"`
	Genres          []Genre   `json:"genres"`
	TotalCopies     int       `json:"totalCopies"`
	AvailableCopies int       `json:"availableCopies"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Copy struct {
	ID        string     `json:"id"`
	BookID    string     `json:"bookId"`
	Available bool       `json:"available"`
	Status    CopyStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Loan links one copy to one member. ReturnedAt is nil while the loan is
// open; a copy has at most one open loan at any time.
type Loan struct {
	ID         string     `json:"id"`
	CopyID     string     `json:"copyId"`
	MemberID   string     `json:"memberId"`
	BorrowedAt time.Time  `json:"borrowedAt"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
}

// Open reports whether the loan has not been returned yet.
func (l Loan) Open() bool {
	return l.ReturnedAt == nil
}

// Page is a single page of a listing plus the totals callers need to
// render pagination controls.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// NewPage computes TotalPages as ceil(totalCount/limit), or 0 when limit
// is non-positive.
func NewPage[T any](items []T, totalCount int64, limit int) Page[T] {
	totalPages := 0
	if limit > 0 {
		totalPages = int((totalCount + int64(limit) - 1) / int64(limit))
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, TotalCount: totalCount, TotalPages: totalPages}
}

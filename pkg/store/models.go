package store

import "time"

// GORM models used for persistence.
type AuthorModel struct {
	ID        string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null;index"`
	Bio       string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

type GenreModel struct {
	ID        string    `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type BookModel struct {
	ID        string       `gorm:"primaryKey"`
	Title     string       `gorm:"not null"`
	ISBN      string       `gorm:"uniqueIndex;not null"`
	AuthorID  *string      `gorm:"index"`
	Author    *AuthorModel `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL"`
	Genres    []GenreModel `gorm:"many2many:book_genres;constraint:OnDelete:CASCADE"`
	Copies    []CopyModel  `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `gorm:"not null"`
	UpdatedAt time.Time    `gorm:"not null"`
}

type CopyModel struct {
	ID        string    `gorm:"primaryKey"`
	BookID    string    `gorm:"not null;index"`
	Available bool      `gorm:"not null"`
	Status    string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

type MemberModel struct {
	ID        string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

type LoanModel struct {
	ID         string    `gorm:"primaryKey"`
	CopyID     string    `gorm:"not null;index"`
	MemberID   string    `gorm:"not null;index"`
	BorrowedAt time.Time `gorm:"not null;index"`
	ReturnedAt *time.Time
}

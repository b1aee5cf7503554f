package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"librarian/pkg/domain"
)

// BookRepo is the book and copy accessor bound to one transaction.
type BookRepo struct {
	db *gorm.DB
}

// Add inserts the book together with its genre associations and any
// initial copies already attached to it.
func (r *BookRepo) Add(b *domain.Book) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	model := bookToModel(*b)
	// Associated genres already exist; Create only links them.
	if err := r.db.Omit("Genres.*").Create(&model).Error; err != nil {
		return err
	}
	return nil
}

// GetByID returns the book with author, genres and copy counts resolved.
func (r *BookRepo) GetByID(id string) (domain.Book, bool, error) {
	var model BookModel
	err := r.db.Preload("Author").Preload("Genres").Preload("Copies").
		First(&model, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, err
	}
	return bookFromModel(model), true, nil
}

// GetByISBN looks a book up by its normalized ISBN.
func (r *BookRepo) GetByISBN(isbn string) (domain.Book, bool, error) {
	var model BookModel
	err := r.db.Preload("Author").Preload("Genres").Preload("Copies").
		First(&model, "isbn = ?", isbn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, err
	}
	return bookFromModel(model), true, nil
}

// Update writes title, isbn and author reference for an existing book.
func (r *BookRepo) Update(b domain.Book) error {
	updates := map[string]any{
		"title":      b.Title,
		"isbn":       b.ISBN,
		"author_id":  nullableID(b.AuthorID),
		"updated_at": time.Now().UTC(),
	}
	return r.db.Model(&BookModel{}).Where("id = ?", b.ID).Updates(updates).Error
}

// ReplaceGenres fully replaces the book's genre association set.
func (r *BookRepo) ReplaceGenres(bookID string, genres []domain.Genre) error {
	models := make([]GenreModel, 0, len(genres))
	for _, g := range genres {
		models = append(models, genreToModel(g))
	}
	book := BookModel{ID: bookID}
	return r.db.Model(&book).Association("Genres").Replace(models)
}

// Delete removes the book, its copies and its genre links.
func (r *BookRepo) Delete(id string) error {
	book := BookModel{ID: id}
	if err := r.db.Model(&book).Association("Genres").Clear(); err != nil {
		return err
	}
	if err := r.db.Delete(&CopyModel{}, "book_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.Delete(&BookModel{}, "id = ?", id).Error
}

func (r *BookRepo) ListAll() ([]domain.Book, error) {
	var models []BookModel
	err := r.db.Preload("Author").Preload("Genres").Preload("Copies").
		Order("created_at ASC, id ASC").Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.Book, 0, len(models))
	for _, m := range models {
		res = append(res, bookFromModel(m))
	}
	return res, nil
}

func (r *BookRepo) PaginatedList(page, limit int) ([]domain.Book, int64, error) {
	var total int64
	if err := r.db.Model(&BookModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		return []domain.Book{}, total, nil
	}
	var models []BookModel
	err := applyPage(
		r.db.Preload("Author").Preload("Genres").Preload("Copies").Order("created_at ASC, id ASC"),
		page, limit,
	).Find(&models).Error
	if err != nil {
		return nil, 0, err
	}
	res := make([]domain.Book, 0, len(models))
	for _, m := range models {
		res = append(res, bookFromModel(m))
	}
	return res, total, nil
}

// AddCopy inserts a copy for the book, available by default.
func (r *BookRepo) AddCopy(c *domain.Copy) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Status == "" {
		c.Available = true
		c.Status = domain.StatusAvailable
	}
	model := copyToModel(*c)
	return r.db.Create(&model).Error
}

func (r *BookRepo) GetCopyByID(copyID string) (domain.Copy, bool, error) {
	var model CopyModel
	if err := r.db.First(&model, "id = ?", copyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Copy{}, false, nil
		}
		return domain.Copy{}, false, err
	}
	return copyFromModel(model), true, nil
}

// AvailableCopy picks the oldest available copy of the book. The chosen
// copy is only reserved once MarkCopyBorrowed confirms the flip.
func (r *BookRepo) AvailableCopy(bookID string) (domain.Copy, bool, error) {
	var model CopyModel
	err := r.db.Where("book_id = ? AND available = ?", bookID, true).
		Order("created_at ASC, id ASC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Copy{}, false, nil
		}
		return domain.Copy{}, false, err
	}
	return copyFromModel(model), true, nil
}

// MarkCopyBorrowed flips the copy to Borrowed with a conditional update.
// It reports false when the copy was not available anymore, so a race for
// the last copy loses cleanly instead of double-lending.
func (r *BookRepo) MarkCopyBorrowed(copyID string) (bool, error) {
	res := r.db.Model(&CopyModel{}).
		Where("id = ? AND available = ?", copyID, true).
		Updates(map[string]any{"available": false, "status": string(domain.StatusBorrowed)})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkCopyReturned flips the copy back to Available.
func (r *BookRepo) MarkCopyReturned(copyID string) error {
	return r.db.Model(&CopyModel{}).
		Where("id = ?", copyID).
		Updates(map[string]any{"available": true, "status": string(domain.StatusAvailable)}).Error
}

// PaginatedCopies returns one page of the book's copies plus the total.
func (r *BookRepo) PaginatedCopies(bookID string, page, limit int) ([]domain.Copy, int64, error) {
	var total int64
	if err := r.db.Model(&CopyModel{}).Where("book_id = ?", bookID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		return []domain.Copy{}, total, nil
	}
	var models []CopyModel
	err := applyPage(
		r.db.Where("book_id = ?", bookID).Order("created_at ASC, id ASC"),
		page, limit,
	).Find(&models).Error
	if err != nil {
		return nil, 0, err
	}
	res := make([]domain.Copy, 0, len(models))
	for _, m := range models {
		res = append(res, copyFromModel(m))
	}
	return res, total, nil
}

func bookToModel(b domain.Book) BookModel {
	genres := make([]GenreModel, 0, len(b.Genres))
	for _, g := range b.Genres {
		genres = append(genres, genreToModel(g))
	}
	return BookModel{
		ID:        b.ID,
		Title:     b.Title,
		ISBN:      b.ISBN,
		AuthorID:  nullableID(b.AuthorID),
		Genres:    genres,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func bookFromModel(m BookModel) domain.Book {
	var author *domain.Author
	if m.Author != nil {
		a := authorFromModel(*m.Author)
		author = &a
	}
	authorID := ""
	if m.AuthorID != nil {
		authorID = *m.AuthorID
	}
	genres := make([]domain.Genre, 0, len(m.Genres))
	for _, g := range m.Genres {
		genres = append(genres, genreFromModel(g))
	}
	available := 0
	for _, c := range m.Copies {
		if c.Available {
			available++
		}
	}
	return domain.Book{
		ID:              m.ID,
		Title:           m.Title,
		ISBN:            m.ISBN,
		AuthorID:        authorID,
		Author:          author,
		Genres:          genres,
		TotalCopies:     len(m.Copies),
		AvailableCopies: available,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func copyToModel(c domain.Copy) CopyModel {
	return CopyModel{
		ID:        c.ID,
		BookID:    c.BookID,
		Available: c.Available,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
	}
}

func copyFromModel(m CopyModel) domain.Copy {
	return domain.Copy{
		ID:        m.ID,
		BookID:    m.BookID,
		Available: m.Available,
		Status:    domain.CopyStatus(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"librarian/pkg/domain"
)

// AuthorRepo is the author accessor bound to one transaction.
type AuthorRepo struct {
	db *gorm.DB
}

// Add inserts the author, generating an ID when absent.
func (r *AuthorRepo) Add(a *domain.Author) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	model := authorToModel(*a)
	return r.db.Create(&model).Error
}

// GetByID returns the author, or ok=false when absent.
func (r *AuthorRepo) GetByID(id string) (domain.Author, bool, error) {
	var model AuthorModel
	if err := r.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Author{}, false, nil
		}
		return domain.Author{}, false, err
	}
	return authorFromModel(model), true, nil
}

// GetByName looks an author up by exact name.
func (r *AuthorRepo) GetByName(name string) (domain.Author, bool, error) {
	var model AuthorModel
	if err := r.db.First(&model, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Author{}, false, nil
		}
		return domain.Author{}, false, err
	}
	return authorFromModel(model), true, nil
}

// ListAll returns every author in insertion order.
func (r *AuthorRepo) ListAll() ([]domain.Author, error) {
	var models []AuthorModel
	if err := r.db.Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Author, 0, len(models))
	for _, m := range models {
		res = append(res, authorFromModel(m))
	}
	return res, nil
}

// PaginatedList returns one page of authors plus the total count.
func (r *AuthorRepo) PaginatedList(page, limit int) ([]domain.Author, int64, error) {
	var total int64
	if err := r.db.Model(&AuthorModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		return []domain.Author{}, total, nil
	}
	var models []AuthorModel
	if err := applyPage(r.db.Order("created_at ASC, id ASC"), page, limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	res := make([]domain.Author, 0, len(models))
	for _, m := range models {
		res = append(res, authorFromModel(m))
	}
	return res, total, nil
}

func authorToModel(a domain.Author) AuthorModel {
	return AuthorModel{
		ID:        a.ID,
		Name:      a.Name,
		Bio:       a.Bio,
		CreatedAt: a.CreatedAt,
	}
}

func authorFromModel(m AuthorModel) domain.Author {
	return domain.Author{
		ID:        m.ID,
		Name:      m.Name,
		Bio:       m.Bio,
		CreatedAt: m.CreatedAt,
	}
}

package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"librarian/pkg/domain"
)

// GenreRepo is the genre accessor bound to one transaction.
type GenreRepo struct {
	db *gorm.DB
}

func (r *GenreRepo) Add(g *domain.Genre) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	model := genreToModel(*g)
	return r.db.Create(&model).Error
}

func (r *GenreRepo) GetByID(id string) (domain.Genre, bool, error) {
	var model GenreModel
	if err := r.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Genre{}, false, nil
		}
		return domain.Genre{}, false, err
	}
	return genreFromModel(model), true, nil
}

func (r *GenreRepo) GetByName(name string) (domain.Genre, bool, error) {
	var model GenreModel
	if err := r.db.First(&model, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Genre{}, false, nil
		}
		return domain.Genre{}, false, err
	}
	return genreFromModel(model), true, nil
}

// ListByIDs resolves the given ids; ids that do not resolve are simply
// absent from the result.
func (r *GenreRepo) ListByIDs(ids []string) ([]domain.Genre, error) {
	if len(ids) == 0 {
		return []domain.Genre{}, nil
	}
	var models []GenreModel
	if err := r.db.Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Genre, 0, len(models))
	for _, m := range models {
		res = append(res, genreFromModel(m))
	}
	return res, nil
}

func (r *GenreRepo) ListAll() ([]domain.Genre, error) {
	var models []GenreModel
	if err := r.db.Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Genre, 0, len(models))
	for _, m := range models {
		res = append(res, genreFromModel(m))
	}
	return res, nil
}

func (r *GenreRepo) PaginatedList(page, limit int) ([]domain.Genre, int64, error) {
	var total int64
	if err := r.db.Model(&GenreModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		return []domain.Genre{}, total, nil
	}
	var models []GenreModel
	if err := applyPage(r.db.Order("created_at ASC, id ASC"), page, limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	res := make([]domain.Genre, 0, len(models))
	for _, m := range models {
		res = append(res, genreFromModel(m))
	}
	return res, total, nil
}

func genreToModel(g domain.Genre) GenreModel {
	return GenreModel{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
	}
}

func genreFromModel(m GenreModel) domain.Genre {
	return domain.Genre{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

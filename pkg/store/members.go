package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"librarian/pkg/domain"
)

// MemberRepo is the member accessor bound to one transaction.
type MemberRepo struct {
	db *gorm.DB
}

// Add inserts the member. Email uniqueness is enforced by the unique
// index; a violation surfaces as a conflict through WithTx translation.
func (r *MemberRepo) Add(m *domain.Member) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	model := memberToModel(*m)
	return r.db.Create(&model).Error
}

func (r *MemberRepo) GetByID(id string) (domain.Member, bool, error) {
	var model MemberModel
	if err := r.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Member{}, false, nil
		}
		return domain.Member{}, false, err
	}
	return memberFromModel(model), true, nil
}

func (r *MemberRepo) GetByEmail(email string) (domain.Member, bool, error) {
	var model MemberModel
	if err := r.db.First(&model, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Member{}, false, nil
		}
		return domain.Member{}, false, err
	}
	return memberFromModel(model), true, nil
}

// Update writes name and email for an existing member.
func (r *MemberRepo) Update(m domain.Member) error {
	return r.db.Model(&MemberModel{}).Where("id = ?", m.ID).Updates(map[string]any{
		"name":       m.Name,
		"email":      m.Email,
		"updated_at": time.Now().UTC(),
	}).Error
}

func (r *MemberRepo) ListAll() ([]domain.Member, error) {
	var models []MemberModel
	if err := r.db.Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Member, 0, len(models))
	for _, m := range models {
		res = append(res, memberFromModel(m))
	}
	return res, nil
}

func (r *MemberRepo) PaginatedList(page, limit int) ([]domain.Member, int64, error) {
	var total int64
	if err := r.db.Model(&MemberModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		return []domain.Member{}, total, nil
	}
	var models []MemberModel
	if err := applyPage(r.db.Order("created_at ASC, id ASC"), page, limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	res := make([]domain.Member, 0, len(models))
	for _, m := range models {
		res = append(res, memberFromModel(m))
	}
	return res, total, nil
}

func memberToModel(m domain.Member) MemberModel {
	return MemberModel{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func memberFromModel(m MemberModel) domain.Member {
	return domain.Member{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

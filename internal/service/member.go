package service

import (
	"context"

	"librarian/pkg/domain"
	"librarian/pkg/store"
)

// MemberService manages library members.
type MemberService struct {
	store *store.Store
}

func NewMemberService(s *store.Store) *MemberService {
	return &MemberService{store: s}
}

// UpdateMemberInput carries a partial update; nil fields stay unchanged.
type UpdateMemberInput struct {
	Name  *string
	Email *string
}

// Create validates the fields and inserts the member. Email uniqueness is
// enforced by the store's unique constraint; a violation comes back as a
// conflict through the transaction boundary.
func (s *MemberService) Create(ctx context.Context, name, email string) (domain.Member, error) {
	if err := domain.ValidateMemberName(name); err != nil {
		return domain.Member{}, err
	}
	if err := domain.ValidateMemberEmail(email); err != nil {
		return domain.Member{}, err
	}
	var created domain.Member
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		created = domain.Member{Name: name, Email: email}
		return tx.Members.Add(&created)
	})
	if err != nil {
		return domain.Member{}, err
	}
	return created, nil
}

// Get returns the member by id.
func (s *MemberService) Get(ctx context.Context, id string) (domain.Member, error) {
	var member domain.Member
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		m, ok, err := tx.Members.GetByID(id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotFoundError("Member not found")
		}
		member = m
		return nil
	})
	return member, err
}

// List returns one page of members in insertion order.
func (s *MemberService) List(ctx context.Context, page, limit int) (domain.Page[domain.Member], error) {
	var result domain.Page[domain.Member]
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		items, total, err := tx.Members.PaginatedList(page, limit)
		if err != nil {
			return err
		}
		result = domain.NewPage(items, total, limit)
		return nil
	})
	return result, err
}

// Update applies a partial update. The email uniqueness check excludes
// the member itself.
func (s *MemberService) Update(ctx context.Context, id string, in UpdateMemberInput) (domain.Member, error) {
	if in.Name != nil {
		if err := domain.ValidateMemberName(*in.Name); err != nil {
			return domain.Member{}, err
		}
	}
	if in.Email != nil {
		if err := domain.ValidateMemberEmail(*in.Email); err != nil {
			return domain.Member{}, err
		}
	}
	var updated domain.Member
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		member, ok, err := tx.Members.GetByID(id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotFoundError("Member not found")
		}
		if in.Name != nil {
			member.Name = *in.Name
		}
		if in.Email != nil && *in.Email != member.Email {
			if _, exists, err := tx.Members.GetByEmail(*in.Email); err != nil {
				return err
			} else if exists {
				return domain.NewConflictError("Member with this email already exists")
			}
			member.Email = *in.Email
		}
		if err := tx.Members.Update(member); err != nil {
			return err
		}
		updated = member
		return nil
	})
	if err != nil {
		return domain.Member{}, err
	}
	return updated, nil
}

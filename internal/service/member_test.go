package service

import (
	"context"
	"testing"

	"librarian/pkg/domain"
)

func TestMemberCreateAndGet(t *testing.T) {
	svc := NewMemberService(newTestStore(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Ada" || got.Email != "ada@example.com" {
		t.Fatalf("unexpected member: %+v", got)
	}
}

func TestMemberCreateValidatesEmail(t *testing.T) {
	svc := NewMemberService(newTestStore(t))
	ctx := context.Background()

	for _, email := range []string{"", "not-an-email", "a@b", "a b@c.com"} {
		if _, err := svc.Create(ctx, "Someone", email); !domain.IsValidation(err) {
			t.Fatalf("%q: expected validation error, got %v", email, err)
		}
	}
}

func TestMemberCreateDuplicateEmailConflicts(t *testing.T) {
	svc := NewMemberService(newTestStore(t))
	ctx := context.Background()

	if _, err := svc.Create(ctx, "First", "same@example.com"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, "Second", "same@example.com")
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != "Member with this email already exists" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestMemberUpdate(t *testing.T) {
	svc := NewMemberService(newTestStore(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, "Old Name", "old@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	other, err := svc.Create(ctx, "Other", "taken@example.com")
	if err != nil {
		t.Fatalf("create other: %v", err)
	}
	_ = other

	name := "New Name"
	email := "new@example.com"
	updated, err := svc.Update(ctx, created.ID, UpdateMemberInput{Name: &name, Email: &email})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "New Name" || updated.Email != "new@example.com" {
		t.Fatalf("unexpected result: %+v", updated)
	}

	taken := "taken@example.com"
	if _, err := svc.Update(ctx, created.ID, UpdateMemberInput{Email: &taken}); !domain.IsConflict(err) {
		t.Fatalf("expected conflict on taken email, got %v", err)
	}

	// Re-submitting the member's own email is not a conflict.
	if _, err := svc.Update(ctx, created.ID, UpdateMemberInput{Email: &email}); err != nil {
		t.Fatalf("same-email update: %v", err)
	}

	if _, err := svc.Update(ctx, "no-such-id", UpdateMemberInput{Name: &name}); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

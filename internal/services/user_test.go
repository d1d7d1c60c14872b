package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cbpricey/Motion-Industries/internal/domain"
	apperrors "github.com/cbpricey/Motion-Industries/internal/pkg/errors"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	m := map[uuid.UUID]*domain.User{}
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserRepo{users: m}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*domain.User) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range users {
		f.users[u.ID] = u
	}
	return users, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.User
	for _, id := range userIDs {
		if u, ok := f.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.User
	for _, email := range userEmails {
		for _, u := range f.users {
			if u.Email == email {
				cp := *u
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == userEmail {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) List(ctx context.Context, tx *gorm.DB) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.User
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if v, ok := fields["name"]; ok {
		u.Name = v.(string)
	}
	if v, ok := fields["email"]; ok {
		u.Email = v.(string)
	}
	if v, ok := fields["role"]; ok {
		u.Role = v.(domain.Role)
	}
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.users, userID)
	return nil
}

func TestUserServiceRejectsNonAdmins(t *testing.T) {
	svc := NewUserService(nil, testLogger(t), newFakeUserRepo(), nil)
	ctx := context.Background()

	if _, err := svc.ListUsers(ctx, reviewer()); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("ListUsers as reviewer: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.ListUsers(ctx, nil); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("ListUsers without actor: expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, reviewer(), CreateUserInput{}); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("CreateUser as reviewer: expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteUser(ctx, reviewer(), uuid.New()); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("DeleteUser as reviewer: expected ErrForbidden, got %v", err)
	}
}

func TestDeleteUserSelfByID(t *testing.T) {
	actor := admin()
	svc := NewUserService(nil, testLogger(t), newFakeUserRepo(), nil)

	if err := svc.DeleteUser(context.Background(), actor, actor.ID); !errors.Is(err, apperrors.ErrSelfDelete) {
		t.Fatalf("expected ErrSelfDelete, got %v", err)
	}
}

func TestDeleteUserSelfByEmail(t *testing.T) {
	actor := admin()
	// Same email under a different id still counts as self.
	twin := &domain.User{ID: uuid.New(), Name: "Twin", Email: actor.Email, Role: domain.RoleAdmin}
	svc := NewUserService(nil, testLogger(t), newFakeUserRepo(twin), nil)

	if err := svc.DeleteUser(context.Background(), actor, twin.ID); !errors.Is(err, apperrors.ErrSelfDelete) {
		t.Fatalf("expected ErrSelfDelete, got %v", err)
	}
}

func TestDeleteUserMissing(t *testing.T) {
	svc := NewUserService(nil, testLogger(t), newFakeUserRepo(), nil)
	if err := svc.DeleteUser(context.Background(), admin(), uuid.New()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc := NewUserService(nil, testLogger(t), newFakeUserRepo(), nil)
	ctx := context.Background()
	actor := admin()

	if _, err := svc.CreateUser(ctx, actor, CreateUserInput{Name: "A", Email: "a@example.com", Password: "short"}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("short password: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, actor, CreateUserInput{Name: "A", Email: "a@example.com", Password: "longenough", Role: "SUPERUSER"}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("unknown role: expected ErrInvalidArgument, got %v", err)
	}
}

func TestUpdateUserValidation(t *testing.T) {
	u := &domain.User{ID: uuid.New(), Name: "A", Email: "a@example.com", Role: domain.RoleReviewer}
	svc := NewUserService(nil, testLogger(t), newFakeUserRepo(u), nil)
	ctx := context.Background()
	actor := admin()

	bad := "WIZARD"
	if _, err := svc.UpdateUser(ctx, actor, u.ID, UpdateUserInput{Role: &bad}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("unknown role: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.UpdateUser(ctx, actor, u.ID, UpdateUserInput{}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("empty update: expected ErrInvalidArgument, got %v", err)
	}
}

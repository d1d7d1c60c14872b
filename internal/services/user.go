package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cbpricey/Motion-Industries/internal/domain"
	apperrors "github.com/cbpricey/Motion-Industries/internal/pkg/errors"
	"github.com/cbpricey/Motion-Industries/internal/pkg/logger"
	"github.com/cbpricey/Motion-Industries/internal/repos"
)

type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserInput carries a partial update. Nil fields are left untouched.
type UpdateUserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// UserService is the admin-facing account management surface. Every
// operation takes the acting caller explicitly and refuses non-admins.
type UserService interface {
	ListUsers(ctx context.Context, actor *domain.Actor) ([]*domain.User, error)
	CreateUser(ctx context.Context, actor *domain.Actor, input CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, actor *domain.Actor, userID uuid.UUID, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actor *domain.Actor, userID uuid.UUID) error
	GetUser(ctx context.Context, actor *domain.Actor, userID uuid.UUID) (*domain.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	tokens   repos.UserTokenRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, tokens repos.UserTokenRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{db: db, log: serviceLog, userRepo: userRepo, tokens: tokens}
}

func requireAdmin(actor *domain.Actor) error {
	if actor == nil {
		return apperrors.ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin role required", apperrors.ErrForbidden)
	}
	return nil
}

func (us *userService) ListUsers(ctx context.Context, actor *domain.Actor) ([]*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return us.userRepo.List(ctx, nil)
}

func (us *userService) GetUser(ctx context.Context, actor *domain.Actor, userID uuid.UUID) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	return users[0], nil
}

func (us *userService) CreateUser(ctx context.Context, actor *domain.Actor, input CreateUserInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", apperrors.ErrInvalidArgument)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrInvalidArgument)
	}

	role := domain.RoleReviewer
	if strings.TrimSpace(input.Role) != "" {
		parsed, rErr := domain.ParseRole(input.Role)
		if rErr != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, rErr)
		}
		role = parsed
	}

	exists, exErr := us.userRepo.EmailExists(ctx, nil, email)
	if exErr != nil {
		return nil, fmt.Errorf("failed to check email: %w", exErr)
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrInvalidArgument)
	}

	hash, hErr := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if hErr != nil {
		return nil, fmt.Errorf("failed to hash password: %w", hErr)
	}

	user := &domain.User{
		ID:       uuid.New(),
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := us.userRepo.Create(ctx, tx, []*domain.User{user})
		return cErr
	}); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	us.log.Info("Created user", "email", email, "role", role, "by", actor.Email)
	return user, nil
}

func (us *userService) UpdateUser(ctx context.Context, actor *domain.Actor, userID uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrInvalidArgument)
		}
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: invalid email", apperrors.ErrInvalidArgument)
		}
		fields["email"] = email
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrInvalidArgument)
		}
		hash, hErr := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if hErr != nil {
			return nil, fmt.Errorf("failed to hash password: %w", hErr)
		}
		fields["password"] = string(hash)
	}
	if input.Role != nil {
		role, rErr := domain.ParseRole(*input.Role)
		if rErr != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, rErr)
		}
		fields["role"] = role
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", apperrors.ErrInvalidArgument)
	}

	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return us.userRepo.UpdateFields(ctx, tx, userID, fields)
	}); err != nil {
		return nil, err
	}

	return us.GetUser(ctx, actor, userID)
}

// DeleteUser removes an account and its sessions. Admins cannot delete
// themselves, by id or by email, so a deployment always keeps at least the
// acting admin.
func (us *userService) DeleteUser(ctx context.Context, actor *domain.Actor, userID uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	if userID == actor.ID {
		return fmt.Errorf("cannot delete own account: %w", apperrors.ErrSelfDelete)
	}

	users, gErr := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if gErr != nil {
		return gErr
	}
	if len(users) == 0 {
		return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	if strings.EqualFold(users[0].Email, actor.Email) {
		return fmt.Errorf("cannot delete own account: %w", apperrors.ErrSelfDelete)
	}

	return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dErr := us.tokens.DeleteByUserIDs(ctx, tx, []uuid.UUID{userID}); dErr != nil {
			return fmt.Errorf("failed to delete user sessions: %w", dErr)
		}
		return us.userRepo.Delete(ctx, tx, userID)
	})
}

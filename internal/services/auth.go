package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cbpricey/Motion-Industries/internal/domain"
	"github.com/cbpricey/Motion-Industries/internal/observability"
	"github.com/cbpricey/Motion-Industries/internal/pkg/ctxutil"
	apperrors "github.com/cbpricey/Motion-Industries/internal/pkg/errors"
	"github.com/cbpricey/Motion-Industries/internal/pkg/logger"
	"github.com/cbpricey/Motion-Industries/internal/repos"
)

// JWTClaims carries the session identity inside the access token so the
// middleware can resolve an Actor without a user lookup per request.
type JWTClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, input RegisterInput) (*domain.User, error)
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	seedAdmins    map[string]bool
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	seedAdminEmails []string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	seedAdmins := make(map[string]bool, len(seedAdminEmails))
	for _, email := range seedAdminEmails {
		if e := strings.ToLower(strings.TrimSpace(email)); e != "" {
			seedAdmins[e] = true
		}
	}
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		seedAdmins:    seedAdmins,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RegisterUser creates a reviewer account. Emails listed in SEED_ADMIN_EMAILS
// come up as admins so a fresh deployment has someone who can promote others.
func (as *authService) RegisterUser(ctx context.Context, input RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if name == "" || email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", apperrors.ErrInvalidArgument)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", apperrors.ErrInvalidArgument)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrInvalidArgument)
	}

	exists, exErr := as.userRepo.EmailExists(ctx, nil, email)
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

	role := domain.RoleReviewer
	if as.seedAdmins[email] {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		ID:       uuid.New(),
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := as.userRepo.Create(ctx, tx, []*domain.User{user})
		return cErr
	}); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	as.log.Info("Registered user", "email", email, "role", role)
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", "", fmt.Errorf("%w: email and password are required", apperrors.ErrInvalidArgument)
	}

	users, uErr := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if uErr != nil {
		return "", "", fmt.Errorf("failed to fetch user: %w", uErr)
	}
	if len(users) == 0 {
		return "", "", fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		observability.Current().IncAuthAttempt("login", "bad_credentials")
		return "", "", fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}

	var accessToken, refreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var genErr error
		accessToken, refreshToken, genErr = as.issueTokens(ctx, tx, user)
		return genErr
	}); err != nil {
		return "", "", err
	}
	observability.Current().IncAuthAttempt("login", "ok")
	return accessToken, refreshToken, nil
}

// RefreshUser rotates the session. The presented refresh token is consumed
// whether or not it is still valid.
func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", "", fmt.Errorf("%w: missing refresh token", apperrors.ErrUnauthorized)
	}

	var accessToken, newRefreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tokens, ftErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{refreshToken})
		if ftErr != nil {
			return fmt.Errorf("failed to fetch refresh token: %w", ftErr)
		}
		if len(tokens) == 0 {
			return fmt.Errorf("%w: unknown refresh token", apperrors.ErrUnauthorized)
		}
		existing := tokens[0]

		if dErr := as.userTokenRepo.DeleteByRefreshTokens(ctx, tx, []string{refreshToken}); dErr != nil {
			return fmt.Errorf("failed to consume refresh token: %w", dErr)
		}
		if existing.ExpiresAt.Before(time.Now()) {
			return fmt.Errorf("%w: refresh token expired", apperrors.ErrUnauthorized)
		}

		users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
		if uErr != nil {
			return fmt.Errorf("failed to load user for refresh: %w", uErr)
		}
		if len(users) == 0 {
			return fmt.Errorf("%w: user no longer exists", apperrors.ErrUnauthorized)
		}

		var genErr error
		accessToken, newRefreshToken, genErr = as.issueTokens(ctx, tx, users[0])
		return genErr
	}); err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

// LogoutUser drops every session for the caller.
func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("%w: no session", apperrors.ErrUnauthorized)
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return as.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{rd.UserID})
	})
}

func (as *authService) issueTokens(ctx context.Context, tx *gorm.DB, user *domain.User) (string, string, error) {
	accessToken, genErr := as.generateAccessToken(user)
	if genErr != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", genErr)
	}

	refreshToken := uuid.New().String()
	userToken := &domain.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(as.refreshTTL),
	}
	if _, cErr := as.userTokenRepo.Create(ctx, tx, []*domain.UserToken{userToken}); cErr != nil {
		return "", "", fmt.Errorf("failed to store user token: %w", cErr)
	}
	return accessToken, refreshToken, nil
}

func (as *authService) generateAccessToken(user *domain.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: user.Email,
		Role:  string(user.Role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken validates the access token and attaches the resolved
// identity to the context. An empty token leaves the context untouched.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}

	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("%w: invalid token", apperrors.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("%w: invalid subject", apperrors.ErrUnauthorized)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return ctx, fmt.Errorf("%w: invalid role", apperrors.ErrUnauthorized)
	}

	rd := &ctxutil.RequestData{
		UserID:      userID,
		Email:       claims.Email,
		Role:        role,
		TokenString: tokenString,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

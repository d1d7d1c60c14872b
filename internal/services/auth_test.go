package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cbpricey/Motion-Industries/internal/domain"
	"github.com/cbpricey/Motion-Industries/internal/pkg/ctxutil"
	apperrors "github.com/cbpricey/Motion-Industries/internal/pkg/errors"
)

func testAuthService(t *testing.T, secret string) *authService {
	t.Helper()
	return &authService{
		log:          testLogger(t),
		jwtSecretKey: secret,
		accessTTL:    time.Hour,
		refreshTTL:   24 * time.Hour,
	}
}

func TestAccessTokenRoundtrip(t *testing.T) {
	as := testAuthService(t, "test-secret")
	user := &domain.User{ID: uuid.New(), Email: "rev@example.com", Role: domain.RoleReviewer}

	token, err := as.generateAccessToken(user)
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}

	ctx, err := as.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		t.Fatalf("no request data attached")
	}
	if rd.UserID != user.ID {
		t.Fatalf("user id: got %s want %s", rd.UserID, user.ID)
	}
	if rd.Email != user.Email {
		t.Fatalf("email: got %q", rd.Email)
	}
	if rd.Role != domain.RoleReviewer {
		t.Fatalf("role: got %s", rd.Role)
	}

	actor := rd.Actor()
	if actor == nil || actor.IsAdmin() {
		t.Fatalf("actor: %+v", actor)
	}
}

func TestSetContextFromTokenRejectsBadTokens(t *testing.T) {
	as := testAuthService(t, "test-secret")
	user := &domain.User{ID: uuid.New(), Email: "rev@example.com", Role: domain.RoleReviewer}

	token, err := as.generateAccessToken(user)
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}

	other := testAuthService(t, "different-secret")
	if _, err := other.SetContextFromToken(context.Background(), token); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("wrong secret: expected ErrUnauthorized, got %v", err)
	}

	if _, err := as.SetContextFromToken(context.Background(), "not.a.jwt"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("garbage token: expected ErrUnauthorized, got %v", err)
	}
}

func TestSetContextFromTokenEmptyIsNoop(t *testing.T) {
	as := testAuthService(t, "test-secret")
	ctx, err := as.SetContextFromToken(context.Background(), "")
	if err != nil {
		t.Fatalf("empty token: %v", err)
	}
	if ctxutil.GetRequestData(ctx) != nil {
		t.Fatalf("empty token must not attach request data")
	}
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	as := testAuthService(t, "test-secret")
	as.accessTTL = -time.Minute
	user := &domain.User{ID: uuid.New(), Email: "rev@example.com", Role: domain.RoleReviewer}

	token, err := as.generateAccessToken(user)
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}
	if _, err := as.SetContextFromToken(context.Background(), token); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expired token: expected ErrUnauthorized, got %v", err)
	}
}

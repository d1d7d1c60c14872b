package ctxutil

import (
	"context"

	"github.com/google/uuid"

	"github.com/cbpricey/Motion-Industries/internal/domain"
)

type requestDataKey struct{}

// RequestData is the per-request identity resolved by the auth middleware.
type RequestData struct {
	UserID      uuid.UUID
	Email       string
	Role        domain.Role
	TokenString string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// Actor returns the caller identity, or nil when no session was resolved.
func (rd *RequestData) Actor() *domain.Actor {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil
	}
	return &domain.Actor{ID: rd.UserID, Email: rd.Email, Role: rd.Role}
}

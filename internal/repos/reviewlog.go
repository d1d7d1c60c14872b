package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/cbpricey/Motion-Industries/internal/domain"
	"github.com/cbpricey/Motion-Industries/internal/pkg/logger"
)

// ReviewLogRepo is append-only. Entries are never updated or deleted once
// written.
type ReviewLogRepo interface {
	Append(ctx context.Context, tx *gorm.DB, entries []*domain.ReviewLogEntry) ([]*domain.ReviewLogEntry, error)
	GetByProductIDs(ctx context.Context, tx *gorm.DB, productIDs []string) ([]*domain.ReviewLogEntry, error)
}

type reviewLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewLogRepo(db *gorm.DB, baseLog *logger.Logger) ReviewLogRepo {
	repoLog := baseLog.With("repo", "ReviewLogRepo")
	return &reviewLogRepo{db: db, log: repoLog}
}

func (rr *reviewLogRepo) Append(ctx context.Context, tx *gorm.DB, entries []*domain.ReviewLogEntry) ([]*domain.ReviewLogEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if len(entries) == 0 {
		return []*domain.ReviewLogEntry{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (rr *reviewLogRepo) GetByProductIDs(ctx context.Context, tx *gorm.DB, productIDs []string) ([]*domain.ReviewLogEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*domain.ReviewLogEntry
	if len(productIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/cbpricey/Motion-Industries/internal/domain"
	"github.com/cbpricey/Motion-Industries/internal/pkg/logger"
)

// FeedbackRepo is append-only. Labels feed the retraining pipeline and are
// never rewritten.
type FeedbackRepo interface {
	Append(ctx context.Context, tx *gorm.DB, entries []*domain.FeedbackEntry) ([]*domain.FeedbackEntry, error)
	GetByOriginalIDs(ctx context.Context, tx *gorm.DB, originalIDs []string) ([]*domain.FeedbackEntry, error)
}

type feedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	repoLog := baseLog.With("repo", "FeedbackRepo")
	return &feedbackRepo{db: db, log: repoLog}
}

func (fr *feedbackRepo) Append(ctx context.Context, tx *gorm.DB, entries []*domain.FeedbackEntry) ([]*domain.FeedbackEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if len(entries) == 0 {
		return []*domain.FeedbackEntry{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (fr *feedbackRepo) GetByOriginalIDs(ctx context.Context, tx *gorm.DB, originalIDs []string) ([]*domain.FeedbackEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*domain.FeedbackEntry
	if len(originalIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("original_id IN ?", originalIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

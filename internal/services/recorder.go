package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	redisclient "github.com/cbpricey/Motion-Industries/internal/clients/redis"
	"github.com/cbpricey/Motion-Industries/internal/domain"
	"github.com/cbpricey/Motion-Industries/internal/observability"
	"github.com/cbpricey/Motion-Industries/internal/pkg/logger"
	"github.com/cbpricey/Motion-Industries/internal/repos"
)

// ReviewOutcome is everything the recorder needs to describe one completed
// transition.
type ReviewOutcome struct {
	Candidate  *domain.CandidateRecord
	Actor      *domain.Actor
	Action     domain.Action
	FromStatus domain.Status
	ToStatus   domain.Status
	Override   bool
	Timestamp  time.Time
}

// ReviewRecorder persists the audit trail and training labels for a
// transition. Recording is fire-and-forget: it runs after the transition has
// already committed and its failures are logged, never surfaced to the
// caller.
type ReviewRecorder interface {
	Record(ctx context.Context, outcome ReviewOutcome)
}

type reviewRecorder struct {
	log          *logger.Logger
	reviewLogs   repos.ReviewLogRepo
	feedback     repos.FeedbackRepo
	bus          redisclient.ReviewBus
	recordWindow time.Duration
}

// NewReviewRecorder builds the recorder. bus may be nil when no Redis is
// configured; events are then only written to the database.
func NewReviewRecorder(log *logger.Logger, reviewLogs repos.ReviewLogRepo, feedback repos.FeedbackRepo, bus redisclient.ReviewBus) ReviewRecorder {
	serviceLog := log.With("service", "ReviewRecorder")
	return &reviewRecorder{
		log:          serviceLog,
		reviewLogs:   reviewLogs,
		feedback:     feedback,
		bus:          bus,
		recordWindow: 10 * time.Second,
	}
}

func (rr *reviewRecorder) Record(ctx context.Context, outcome ReviewOutcome) {
	// Detach from the request so recording survives the response being sent.
	detached := context.WithoutCancel(ctx)
	go rr.record(detached, outcome)
}

func (rr *reviewRecorder) record(ctx context.Context, outcome ReviewOutcome) {
	ctx, cancel := context.WithTimeout(ctx, rr.recordWindow)
	defer cancel()

	candidate := outcome.Candidate
	entry := &domain.ReviewLogEntry{
		ID:              uuid.New(),
		ProductID:       candidate.ID,
		RequestedAction: string(outcome.Action),
		FinalStatus:     string(outcome.ToStatus),
		ReviewerID:      outcome.Actor.ID,
		ReviewerEmail:   outcome.Actor.Email,
		ReviewerRole:    string(outcome.Actor.Role),
		Snapshot:        outcomeSnapshot(outcome),
		CreatedAt:       outcome.Timestamp,
	}
	if _, err := rr.reviewLogs.Append(ctx, nil, []*domain.ReviewLogEntry{entry}); err != nil {
		rr.log.Error("Failed to append review log entry", "product_id", candidate.ID, "error", err)
		observability.Current().IncRecorderFailure("review_log")
	}

	if outcome.ToStatus.IsTerminal() {
		label := 0
		if outcome.ToStatus == domain.StatusApproved {
			label = 1
		}
		fb := &domain.FeedbackEntry{
			ID:           uuid.New(),
			OriginalID:   candidate.ID,
			SKUNumber:    candidate.SKUNumber,
			Manufacturer: candidate.Manufacturer,
			ImageURL:     candidate.ImageURL,
			Label:        label,
			CreatedAt:    outcome.Timestamp,
		}
		if _, err := rr.feedback.Append(ctx, nil, []*domain.FeedbackEntry{fb}); err != nil {
			rr.log.Error("Failed to append feedback entry", "product_id", candidate.ID, "error", err)
			observability.Current().IncRecorderFailure("feedback")
		}
	}

	if rr.bus != nil {
		event := redisclient.ReviewEvent{
			ProductID:     candidate.ID,
			Action:        string(outcome.Action),
			FromStatus:    string(outcome.FromStatus),
			ToStatus:      string(outcome.ToStatus),
			ReviewerEmail: outcome.Actor.Email,
			ReviewerRole:  string(outcome.Actor.Role),
			Override:      outcome.Override,
			Timestamp:     outcome.Timestamp,
		}
		if err := rr.bus.Publish(ctx, event); err != nil {
			rr.log.Warn("Failed to publish review event", "product_id", candidate.ID, "error", err)
			observability.Current().IncRecorderFailure("bus")
		}
	}
}

func outcomeSnapshot(outcome ReviewOutcome) datatypes.JSON {
	raw, err := json.Marshal(map[string]any{
		"manufacturer":     outcome.Candidate.Manufacturer,
		"sku_number":       outcome.Candidate.SKUNumber,
		"image_url":        outcome.Candidate.ImageURL,
		"confidence_score": outcome.Candidate.ConfidenceScore,
		"from_status":      string(outcome.FromStatus),
		"override":         outcome.Override,
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cbpricey/Motion-Industries/internal/domain"
	"github.com/cbpricey/Motion-Industries/internal/observability"
	apperrors "github.com/cbpricey/Motion-Industries/internal/pkg/errors"
	"github.com/cbpricey/Motion-Industries/internal/pkg/logger"
	"github.com/cbpricey/Motion-Industries/internal/repos"
)

// ReviewService applies review transitions. The transition policy itself
// lives in domain.NextStatus; this service loads the record, applies the
// resulting partial update and hands the outcome to the recorder.
type ReviewService interface {
	Transition(ctx context.Context, actor *domain.Actor, id string, action string, comment *string) (*domain.CandidateRecord, error)
}

type reviewService struct {
	log           *logger.Logger
	candidateRepo repos.CandidateRepo
	recorder      ReviewRecorder
}

func NewReviewService(log *logger.Logger, candidateRepo repos.CandidateRepo, recorder ReviewRecorder) ReviewService {
	serviceLog := log.With("service", "ReviewService")
	return &reviewService{log: serviceLog, candidateRepo: candidateRepo, recorder: recorder}
}

// Transition moves a candidate to the state the actor's role and action
// produce. Concurrent transitions are last-writer-wins; there is no
// optimistic locking on the record.
func (rs *reviewService) Transition(ctx context.Context, actor *domain.Actor, id string, action string, comment *string) (*domain.CandidateRecord, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if id == "" {
		return nil, fmt.Errorf("%w: missing candidate id", apperrors.ErrInvalidArgument)
	}

	parsedAction, err := domain.ParseAction(action)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextStatus(actor.Role, parsedAction)
	if err != nil {
		return nil, err
	}

	record, err := rs.candidateRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	fromStatus := record.Status

	now := time.Now().UTC()
	fields := map[string]any{
		"status":     string(next),
		"updated_by": actor.Email,
		"updated_at": now,
	}
	if next.IsProposal() {
		fields["reviewed_by"] = actor.Email
		// original_status is write-once; it keeps the first reviewer proposal
		// visible after an admin overrides it.
		if record.OriginalStatus == "" {
			fields["original_status"] = string(next)
		}
	}
	if next.IsTerminal() {
		fields["final_status"] = string(next)
	}
	// A nil comment leaves any existing rejection comment in place; an
	// explicit empty string clears it.
	if comment != nil {
		fields["rejection_comment"] = *comment
	}

	if err := rs.candidateRepo.UpdateFields(ctx, nil, id, fields); err != nil {
		return nil, err
	}

	override := next.IsTerminal() && domain.IsOverride(domain.NormalizeStatus(record.OriginalStatus), next)
	if override {
		rs.log.Info("Admin override", "product_id", id, "original_status", record.OriginalStatus, "final_status", next, "by", actor.Email)
		observability.Current().IncReviewOverride()
	}
	observability.Current().IncReviewTransition(string(actor.Role), string(parsedAction), string(next))

	record.Status = next
	record.UpdatedBy = actor.Email
	record.UpdatedAt = now
	if v, ok := fields["reviewed_by"]; ok {
		record.ReviewedBy = v.(string)
	}
	if v, ok := fields["original_status"]; ok {
		record.OriginalStatus = v.(string)
	}
	if v, ok := fields["final_status"]; ok {
		record.FinalStatus = v.(string)
	}
	if comment != nil {
		record.RejectionComment = *comment
	}

	rs.recorder.Record(ctx, ReviewOutcome{
		Candidate:  record,
		Actor:      actor,
		Action:     parsedAction,
		FromStatus: fromStatus,
		ToStatus:   next,
		Override:   override,
		Timestamp:  now,
	})

	return record, nil
}

package services

import (
	"context"
	"fmt"

	"github.com/cbpricey/Motion-Industries/internal/domain"
	apperrors "github.com/cbpricey/Motion-Industries/internal/pkg/errors"
	"github.com/cbpricey/Motion-Industries/internal/pkg/logger"
	"github.com/cbpricey/Motion-Industries/internal/repos"
)

// CandidateQuery is the raw listing request as it arrives from the handler.
// Sort and cursor are validated here so the transport layer stays thin.
type CandidateQuery struct {
	Filter repos.CandidateFilter
	Sort   string
	Cursor string
}

type CandidateService interface {
	ListCandidates(ctx context.Context, actor *domain.Actor, query CandidateQuery) (*repos.CandidatePage, error)
	GetCandidate(ctx context.Context, actor *domain.Actor, id string) (*domain.CandidateRecord, error)
	FacetCandidates(ctx context.Context, actor *domain.Actor, field string, filter repos.CandidateFilter) ([]repos.FacetBucket, error)
}

type candidateService struct {
	log           *logger.Logger
	candidateRepo repos.CandidateRepo
}

func NewCandidateService(log *logger.Logger, candidateRepo repos.CandidateRepo) CandidateService {
	serviceLog := log.With("service", "CandidateService")
	return &candidateService{log: serviceLog, candidateRepo: candidateRepo}
}

func requireActor(actor *domain.Actor) error {
	if actor == nil {
		return apperrors.ErrUnauthorized
	}
	return nil
}

func (cs *candidateService) ListCandidates(ctx context.Context, actor *domain.Actor, query CandidateQuery) (*repos.CandidatePage, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	if mc := query.Filter.MinConfidence; mc != nil && (*mc < 0 || *mc > 100) {
		return nil, fmt.Errorf("%w: min_confidence must be between 0 and 100", apperrors.ErrInvalidArgument)
	}

	sort, err := repos.ParseSortKey(query.Sort)
	if err != nil {
		return nil, err
	}
	return cs.candidateRepo.Search(ctx, nil, query.Filter, sort, query.Cursor)
}

func (cs *candidateService) GetCandidate(ctx context.Context, actor *domain.Actor, id string) (*domain.CandidateRecord, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: missing candidate id", apperrors.ErrInvalidArgument)
	}
	return cs.candidateRepo.GetByID(ctx, nil, id)
}

func (cs *candidateService) FacetCandidates(ctx context.Context, actor *domain.Actor, field string, filter repos.CandidateFilter) ([]repos.FacetBucket, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return cs.candidateRepo.Facets(ctx, nil, field, filter)
}

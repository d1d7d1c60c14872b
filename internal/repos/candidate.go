package repos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cbpricey/Motion-Industries/internal/domain"
	apperrors "github.com/cbpricey/Motion-Industries/internal/pkg/errors"
	"github.com/cbpricey/Motion-Industries/internal/pkg/logger"
)

// PageSize is the fixed listing page size.
const PageSize = 100

// CandidateFilter is the caller-supplied query criteria. MinConfidence is a
// percentage (0-100); the repo rescales it to the stored fraction before
// comparing.
type CandidateFilter struct {
	Manufacturer  string
	SKUNumber     string
	SKUPrefix     string
	MinConfidence *float64
	Status        string
	From          *time.Time
	To            *time.Time
}

type CandidatePage struct {
	Results    []*domain.CandidateRecord
	NextCursor string
	Total      int64
}

type FacetBucket struct {
	Key      string `json:"key"`
	DocCount int64  `json:"doc_count"`
}

// facetColumns whitelists the fields callers may bucket on.
var facetColumns = map[string]string{
	"manufacturer": "manufacturer",
	"status":       "status",
	"sku_number":   "sku_number",
}

type CandidateRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*domain.CandidateRecord, error)
	Search(ctx context.Context, tx *gorm.DB, filter CandidateFilter, sort SortKey, cursor string) (*CandidatePage, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]any) error
	Facets(ctx context.Context, tx *gorm.DB, field string, filter CandidateFilter) ([]FacetBucket, error)
}

type candidateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCandidateRepo(db *gorm.DB, baseLog *logger.Logger) CandidateRepo {
	repoLog := baseLog.With("repo", "CandidateRepo")
	return &candidateRepo{db: db, log: repoLog}
}

func (cr *candidateRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*domain.CandidateRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var doc domain.CandidateDoc
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("candidate %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return docToRecord(&doc), nil
}

func (cr *candidateRepo) Search(ctx context.Context, tx *gorm.DB, filter CandidateFilter, sort SortKey, cursor string) (*CandidatePage, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var total int64
	if err := applyFilter(transaction.WithContext(ctx).Model(&domain.CandidateDoc{}), filter).
		Count(&total).Error; err != nil {
		return nil, err
	}

	query := applyFilter(transaction.WithContext(ctx).Model(&domain.CandidateDoc{}), filter)
	if cursor != "" {
		cur, err := decodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		query = applyCursor(query, sort, cur)
	}

	var docs []*domain.CandidateDoc
	if err := query.Order(orderClause(sort)).Limit(PageSize).Find(&docs).Error; err != nil {
		return nil, err
	}

	page := &CandidatePage{
		Results: make([]*domain.CandidateRecord, 0, len(docs)),
		Total:   total,
	}
	for _, doc := range docs {
		page.Results = append(page.Results, docToRecord(doc))
	}
	if len(docs) == PageSize {
		page.NextCursor = encodeCursor(docs[len(docs)-1])
	}
	return page, nil
}

// UpdateFields applies a partial update to an existing document. A missing
// id is an error, never an insert.
func (cr *candidateRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields to update", apperrors.ErrInvalidArgument)
	}

	res := transaction.WithContext(ctx).
		Model(&domain.CandidateDoc{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("candidate %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (cr *candidateRepo) Facets(ctx context.Context, tx *gorm.DB, field string, filter CandidateFilter) ([]FacetBucket, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	column, ok := facetColumns[strings.TrimSpace(field)]
	if !ok {
		return nil, fmt.Errorf("%w: cannot facet on %q", apperrors.ErrInvalidArgument, field)
	}

	var buckets []FacetBucket
	if err := applyFilter(transaction.WithContext(ctx).Model(&domain.CandidateDoc{}), filter).
		Select(column+" AS key, COUNT(*) AS doc_count").
		Where(column+" <> ''").
		Group(column).
		Order("key ASC").
		Limit(1000).
		Scan(&buckets).Error; err != nil {
		return nil, err
	}
	return buckets, nil
}

func applyFilter(query *gorm.DB, f CandidateFilter) *gorm.DB {
	if m := strings.TrimSpace(f.Manufacturer); m != "" && m != "All" {
		query = query.Where("manufacturer = ?", m)
	}
	if s := strings.TrimSpace(f.SKUNumber); s != "" && s != "All" {
		// Ingestion is inconsistent about which column carries the SKU.
		query = query.Where("sku_number = ? OR part_number = ? OR sku = ?", s, s, s)
	}
	if p := strings.TrimSpace(f.SKUPrefix); p != "" {
		like := p + "%"
		query = query.Where("sku_number LIKE ? OR part_number LIKE ? OR sku LIKE ?", like, like, like)
	}
	if f.MinConfidence != nil {
		query = query.Where("confidence >= ?", *f.MinConfidence/100)
	}
	if s := strings.TrimSpace(f.Status); s != "" && s != "any" {
		query = query.Where("status IN ?", statusSpellings(domain.NormalizeStatus(s)))
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at <= ?", *f.To)
	}
	return query
}

// statusSpellings returns every stored spelling matching a canonical status,
// so filters still find rows written before the vocabulary was settled.
func statusSpellings(s domain.Status) []string {
	switch s {
	case domain.StatusPendingApprove:
		return []string{string(s), "pending_approval"}
	case domain.StatusPendingReject:
		return []string{string(s), "pending_rejected"}
	case domain.StatusApproved:
		return []string{string(s), "accepted"}
	default:
		return []string{string(s)}
	}
}

func orderClause(sort SortKey) string {
	switch sort {
	case SortConfidenceDesc:
		return "confidence DESC, created_at ASC, id ASC"
	case SortNewest:
		return "created_at DESC, confidence DESC, id ASC"
	case SortOldest:
		return "created_at ASC, confidence DESC, id ASC"
	default:
		// Filter-only queries have no text score, so relevance degrades to
		// its tiebreaker (created_at ascending).
		return "created_at ASC, id ASC"
	}
}

// applyCursor adds the search-after predicate for the record identified by
// cur under the given sort's total order.
func applyCursor(query *gorm.DB, sort SortKey, cur *pageCursor) *gorm.DB {
	switch sort {
	case SortConfidenceDesc:
		return query.Where(
			"confidence < ? OR (confidence = ? AND (created_at > ? OR (created_at = ? AND id > ?)))",
			cur.Confidence, cur.Confidence, cur.CreatedAt, cur.CreatedAt, cur.ID,
		)
	case SortNewest:
		return query.Where(
			"created_at < ? OR (created_at = ? AND (confidence < ? OR (confidence = ? AND id > ?)))",
			cur.CreatedAt, cur.CreatedAt, cur.Confidence, cur.Confidence, cur.ID,
		)
	case SortOldest:
		return query.Where(
			"created_at > ? OR (created_at = ? AND (confidence < ? OR (confidence = ? AND id > ?)))",
			cur.CreatedAt, cur.CreatedAt, cur.Confidence, cur.Confidence, cur.ID,
		)
	default:
		return query.Where(
			"created_at > ? OR (created_at = ? AND id > ?)",
			cur.CreatedAt, cur.CreatedAt, cur.ID,
		)
	}
}

// docToRecord normalizes a stored document into the caller-facing shape.
// The x100 confidence scaling happens here and only here, so list and
// single-get reads can never disagree.
func docToRecord(doc *domain.CandidateDoc) *domain.CandidateRecord {
	sku := firstNonEmpty(doc.SKUNumber, doc.PartNumber, doc.SKU, doc.ID)

	manufacturer := strings.TrimSpace(doc.Manufacturer)
	if manufacturer == "" {
		manufacturer = "Unknown"
	}

	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = strings.TrimSpace(doc.Description)
	}
	if title == "" {
		title = strings.TrimSpace(manufacturer + " " + sku)
	}

	return &domain.CandidateRecord{
		ID:               doc.ID,
		Manufacturer:     manufacturer,
		SKUNumber:        sku,
		Title:            title,
		Description:      doc.Description,
		ImageURL:         doc.ImageURL,
		ConfidenceScore:  doc.Confidence * 100,
		Status:           domain.NormalizeStatus(doc.Status),
		RejectionComment: doc.RejectionComment,
		ReviewedBy:       doc.ReviewedBy,
		UpdatedBy:        doc.UpdatedBy,
		OriginalStatus:   doc.OriginalStatus,
		FinalStatus:      doc.FinalStatus,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

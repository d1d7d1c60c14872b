package repos

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cbpricey/Motion-Industries/internal/domain"
	apperrors "github.com/cbpricey/Motion-Industries/internal/pkg/errors"
)

// SortKey selects the listing order. Every key ends in a deterministic
// tiebreaker chain terminated by id so that cursor pagination walks a total
// order.
type SortKey string

const (
	SortRelevance      SortKey = "relevance"
	SortConfidenceDesc SortKey = "confidence_desc"
	SortNewest         SortKey = "newest"
	SortOldest         SortKey = "oldest"
)

func ParseSortKey(s string) (SortKey, error) {
	switch strings.TrimSpace(s) {
	case "", string(SortRelevance):
		return SortRelevance, nil
	case string(SortConfidenceDesc):
		return SortConfidenceDesc, nil
	case string(SortNewest):
		return SortNewest, nil
	case string(SortOldest):
		return SortOldest, nil
	default:
		return "", fmt.Errorf("%w: unknown sort %q", apperrors.ErrInvalidArgument, s)
	}
}

// pageCursor captures the sort-key values of the last record on a page.
// Callers only ever see the encoded form; a cursor is valid for the
// filter+sort combination that produced it and nothing else.
type pageCursor struct {
	Confidence float64   `json:"c"`
	CreatedAt  time.Time `json:"t"`
	ID         string    `json:"i"`
}

func encodeCursor(doc *domain.CandidateDoc) string {
	raw, err := json.Marshal(pageCursor{
		Confidence: doc.Confidence,
		CreatedAt:  doc.CreatedAt,
		ID:         doc.ID,
	})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(s string) (*pageCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", apperrors.ErrInvalidArgument)
	}
	var cur pageCursor
	if err := json.Unmarshal(raw, &cur); err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", apperrors.ErrInvalidArgument)
	}
	return &cur, nil
}

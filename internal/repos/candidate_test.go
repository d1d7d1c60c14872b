package repos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cbpricey/Motion-Industries/internal/domain"
	apperrors "github.com/cbpricey/Motion-Industries/internal/pkg/errors"
	"github.com/cbpricey/Motion-Industries/internal/repos/testutil"
)

func TestCandidateRepoGetAndUpdate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewCandidateRepo(db, testutil.Logger(t))
	ctx := context.Background()

	doc := testutil.SeedCandidate(t, tx, 0.9, "pending", time.Now().UTC())

	got, err := repo.GetByID(ctx, tx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ConfidenceScore != 90 {
		t.Fatalf("GetByID: confidence score %v, want 90", got.ConfidenceScore)
	}
	if got.Status != domain.StatusPending {
		t.Fatalf("GetByID: status %s, want pending", got.Status)
	}

	if _, err := repo.GetByID(ctx, tx, "missing-id"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("GetByID missing: expected ErrNotFound, got %v", err)
	}

	if err := repo.UpdateFields(ctx, tx, doc.ID, map[string]any{"status": "pending-approve"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.Status != domain.StatusPendingApprove {
		t.Fatalf("after update: status %s, want pending-approve", got.Status)
	}

	if err := repo.UpdateFields(ctx, tx, "missing-id", map[string]any{"status": "approved"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("UpdateFields missing: expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateFields(ctx, tx, doc.ID, map[string]any{}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("UpdateFields empty: expected ErrInvalidArgument, got %v", err)
	}
}

func TestCandidateRepoSearchFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewCandidateRepo(db, testutil.Logger(t))
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	low := testutil.SeedCandidate(t, tx, 0.2, "pending", base)
	high := testutil.SeedCandidate(t, tx, 0.75, "pending_approval", base.Add(time.Minute))

	minConf := 50.0
	page, err := repo.Search(ctx, tx, CandidateFilter{MinConfidence: &minConf}, SortRelevance, "")
	if err != nil {
		t.Fatalf("Search min_confidence: %v", err)
	}
	for _, rec := range page.Results {
		if rec.ID == low.ID {
			t.Fatalf("min_confidence filter leaked low-confidence record")
		}
	}

	// The legacy spelling must be matched by its canonical status, and the
	// list path must scale confidence the same way get-by-id does.
	page, err = repo.Search(ctx, tx, CandidateFilter{Status: "pending-approve"}, SortRelevance, "")
	if err != nil {
		t.Fatalf("Search status: %v", err)
	}
	found := false
	for _, rec := range page.Results {
		if rec.ID == high.ID {
			found = true
			if rec.ConfidenceScore != 75 {
				t.Fatalf("list confidence score: got %v, want 75", rec.ConfidenceScore)
			}
		}
	}
	if !found {
		t.Fatalf("status filter missed legacy-spelled record")
	}
}

func TestCandidateRepoPagination(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewCandidateRepo(db, testutil.Logger(t))
	ctx := context.Background()

	manufacturer := "Pagination Test Mfg"
	base := time.Now().UTC().Add(-24 * time.Hour)
	total := PageSize + 25
	for i := 0; i < total; i++ {
		doc := testutil.SeedCandidate(t, tx, 0.5, "pending", base.Add(time.Duration(i)*time.Second))
		if err := tx.Model(&domain.CandidateDoc{}).Where("id = ?", doc.ID).
			Update("manufacturer", manufacturer).Error; err != nil {
			t.Fatalf("tag candidate: %v", err)
		}
	}

	filter := CandidateFilter{Manufacturer: manufacturer}

	first, err := repo.Search(ctx, tx, filter, SortOldest, "")
	if err != nil {
		t.Fatalf("Search page 1: %v", err)
	}
	if len(first.Results) != PageSize {
		t.Fatalf("page 1: got %d results, want %d", len(first.Results), PageSize)
	}
	if first.NextCursor == "" {
		t.Fatalf("page 1: expected a next cursor")
	}
	if first.Total != int64(total) {
		t.Fatalf("page 1: total %d, want %d", first.Total, total)
	}

	second, err := repo.Search(ctx, tx, filter, SortOldest, first.NextCursor)
	if err != nil {
		t.Fatalf("Search page 2: %v", err)
	}
	if len(second.Results) != total-PageSize {
		t.Fatalf("page 2: got %d results, want %d", len(second.Results), total-PageSize)
	}

	// No record may appear on both pages and none may be skipped.
	seen := map[string]bool{}
	for _, rec := range first.Results {
		seen[rec.ID] = true
	}
	for _, rec := range second.Results {
		if seen[rec.ID] {
			t.Fatalf("record %s appeared on both pages", rec.ID)
		}
		seen[rec.ID] = true
	}
	if len(seen) != total {
		t.Fatalf("pagination gap: saw %d distinct records, want %d", len(seen), total)
	}
}

func TestCandidateRepoKeysetPredicates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewCandidateRepo(db, testutil.Logger(t))
	ctx := context.Background()

	manufacturer := "Keyset Test Mfg"
	base := time.Now().UTC().Truncate(time.Microsecond).Add(-48 * time.Hour)
	seed := func(confidence float64, createdAt time.Time) string {
		doc := testutil.SeedCandidate(t, tx, confidence, "pending", createdAt)
		if err := tx.Model(&domain.CandidateDoc{}).Where("id = ?", doc.ID).
			Update("manufacturer", manufacturer).Error; err != nil {
			t.Fatalf("tag candidate: %v", err)
		}
		return doc.ID
	}

	// Confidences are exact binary fractions so the x100 scaling and the
	// cursor round-trip compare exactly.
	newest := seed(0.5, base.Add(2*time.Minute))
	tieHigh := seed(0.75, base.Add(time.Minute))
	tieLow := seed(0.25, base.Add(time.Minute))
	oldest := seed(0.75, base)
	dupA := seed(0.25, base)
	dupB := seed(0.25, base)

	// Full ties fall through to the id tiebreaker.
	dupFirst, dupSecond := dupA, dupB
	if dupB < dupA {
		dupFirst, dupSecond = dupB, dupA
	}

	filter := CandidateFilter{Manufacturer: manufacturer}

	checkOrder := func(sort SortKey, want []string) {
		t.Helper()

		page, err := repo.Search(ctx, tx, filter, sort, "")
		if err != nil {
			t.Fatalf("Search %s: %v", sort, err)
		}
		if len(page.Results) != len(want) {
			t.Fatalf("%s: got %d results, want %d", sort, len(page.Results), len(want))
		}
		for i, rec := range page.Results {
			if rec.ID != want[i] {
				t.Fatalf("%s: position %d is %s, want %s", sort, i, rec.ID, want[i])
			}
		}

		// Resuming from every boundary must continue exactly after it:
		// the boundary record is never re-returned and nothing is skipped.
		for i := 0; i < len(page.Results)-1; i++ {
			boundary := page.Results[i]
			cursor := encodeCursor(&domain.CandidateDoc{
				ID:         boundary.ID,
				Confidence: boundary.ConfidenceScore / 100,
				CreatedAt:  boundary.CreatedAt,
			})
			rest, err := repo.Search(ctx, tx, filter, sort, cursor)
			if err != nil {
				t.Fatalf("%s: resume after %d: %v", sort, i, err)
			}
			if len(rest.Results) != len(want)-i-1 {
				t.Fatalf("%s: resume after %d: got %d results, want %d", sort, i, len(rest.Results), len(want)-i-1)
			}
			for j, rec := range rest.Results {
				if rec.ID != want[i+1+j] {
					t.Fatalf("%s: resume after %d: position %d is %s, want %s", sort, i, j, rec.ID, want[i+1+j])
				}
			}
		}
	}

	// created_at desc, then confidence desc, then id asc.
	checkOrder(SortNewest, []string{newest, tieHigh, tieLow, oldest, dupFirst, dupSecond})
	// confidence desc, then created_at asc, then id asc.
	checkOrder(SortConfidenceDesc, []string{oldest, tieHigh, newest, dupFirst, dupSecond, tieLow})
}

func TestCandidateRepoFacets(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewCandidateRepo(db, testutil.Logger(t))
	ctx := context.Background()

	testutil.SeedCandidate(t, tx, 0.5, "pending", time.Now().UTC())

	buckets, err := repo.Facets(ctx, tx, "manufacturer", CandidateFilter{})
	if err != nil {
		t.Fatalf("Facets: %v", err)
	}
	found := false
	for _, b := range buckets {
		if b.Key == "Acme Bearings" && b.DocCount > 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("Facets: expected an Acme Bearings bucket, got %v", buckets)
	}

	if _, err := repo.Facets(ctx, tx, "password", CandidateFilter{}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("Facets on non-whitelisted field: expected ErrInvalidArgument, got %v", err)
	}
}

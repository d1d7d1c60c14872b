package repos

import (
	"testing"

	"github.com/cbpricey/Motion-Industries/internal/domain"
)

func TestDocToRecordSKUFallback(t *testing.T) {
	cases := []struct {
		name string
		doc  domain.CandidateDoc
		want string
	}{
		{"sku_number wins", domain.CandidateDoc{ID: "d1", SKUNumber: "A", PartNumber: "B", SKU: "C"}, "A"},
		{"part_number next", domain.CandidateDoc{ID: "d1", PartNumber: "B", SKU: "C"}, "B"},
		{"sku next", domain.CandidateDoc{ID: "d1", SKU: "C"}, "C"},
		{"id last", domain.CandidateDoc{ID: "d1"}, "d1"},
		{"whitespace skipped", domain.CandidateDoc{ID: "d1", SKUNumber: "  ", PartNumber: "B"}, "B"},
	}
	for _, tc := range cases {
		got := docToRecord(&tc.doc)
		if got.SKUNumber != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got.SKUNumber, tc.want)
		}
	}
}

func TestDocToRecordTitleFallback(t *testing.T) {
	doc := &domain.CandidateDoc{ID: "d1", Title: "Real Title", Description: "Desc"}
	if got := docToRecord(doc).Title; got != "Real Title" {
		t.Fatalf("title: got %q", got)
	}

	doc = &domain.CandidateDoc{ID: "d1", Description: "Desc"}
	if got := docToRecord(doc).Title; got != "Desc" {
		t.Fatalf("description fallback: got %q", got)
	}

	doc = &domain.CandidateDoc{ID: "d1", Manufacturer: "Acme", SKUNumber: "SKU-9"}
	if got := docToRecord(doc).Title; got != "Acme SKU-9" {
		t.Fatalf("synthesized title: got %q", got)
	}
}

func TestDocToRecordManufacturerDefault(t *testing.T) {
	doc := &domain.CandidateDoc{ID: "d1"}
	if got := docToRecord(doc).Manufacturer; got != "Unknown" {
		t.Fatalf("manufacturer default: got %q", got)
	}
}

func TestDocToRecordConfidenceScaling(t *testing.T) {
	doc := &domain.CandidateDoc{ID: "d1", Confidence: 0.25}
	if got := docToRecord(doc).ConfidenceScore; got != 25 {
		t.Fatalf("confidence: got %v want 25", got)
	}
}

func TestDocToRecordStatusNormalization(t *testing.T) {
	doc := &domain.CandidateDoc{ID: "d1", Status: "pending_approval"}
	if got := docToRecord(doc).Status; got != domain.StatusPendingApprove {
		t.Fatalf("legacy status: got %s", got)
	}
	doc = &domain.CandidateDoc{ID: "d1"}
	if got := docToRecord(doc).Status; got != domain.StatusPending {
		t.Fatalf("empty status: got %s", got)
	}
}

func TestStatusSpellings(t *testing.T) {
	spellings := statusSpellings(domain.StatusApproved)
	if len(spellings) != 2 || spellings[0] != "approved" || spellings[1] != "accepted" {
		t.Fatalf("approved spellings: got %v", spellings)
	}
	spellings = statusSpellings(domain.StatusPending)
	if len(spellings) != 1 || spellings[0] != "pending" {
		t.Fatalf("pending spellings: got %v", spellings)
	}
}

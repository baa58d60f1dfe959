package index

import (
	"testing"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

func allRegionMetadata() map[string]string {
	out := make(map[string]string)
	for _, region := range domain.ExpectedRegions {
		out[domain.RegionPriceKey(region)] = "100.00"
	}
	return out
}

func TestTitleMatchOutscoresCategoryMatch(t *testing.T) {
	docs := []domain.Document{
		{ID: "a", Seq: 0, SourceKind: domain.SourceGuidance, Title: "Transport Guidance", Content: "body"},
		{ID: "b", Seq: 1, SourceKind: domain.SourceGuidance, Title: "Other", Category: "Transport", Content: "body"},
		{ID: "c", Seq: 2, SourceKind: domain.SourceGuidance, Title: "Other", Content: "body mentions transport"},
	}
	ix := Build(docs)
	intent := domain.QueryIntent{Kind: domain.IntentGeneral}

	title, _ := ix.Score([]string{"transport"}, "a", intent)
	category, _ := ix.Score([]string{"transport"}, "b", intent)
	content, _ := ix.Score([]string{"transport"}, "c", intent)

	if !(title > category && category > content) {
		t.Fatalf("field weights out of order: title=%.1f category=%.1f content=%.1f", title, category, content)
	}
	if title != 3.0 || category != 2.0 || content != 1.0 {
		t.Fatalf("unexpected weights: title=%.1f category=%.1f content=%.1f", title, category, content)
	}
}

func TestKindAlignmentMultipliesScore(t *testing.T) {
	docs := []domain.Document{
		{ID: "rule_x", Seq: 0, SourceKind: domain.SourceRule, Title: "Transport Claims", Content: "body"},
	}
	ix := Build(docs)

	plain, _ := ix.Score([]string{"transport"}, "rule_x", domain.QueryIntent{Kind: domain.IntentGeneral})
	boosted, _ := ix.Score([]string{"transport"}, "rule_x", domain.QueryIntent{Kind: domain.IntentClaiming})

	if boosted != plain*1.5 {
		t.Fatalf("expected 1.5x alignment boost, got plain=%.2f boosted=%.2f", plain, boosted)
	}
}

func TestRegionBonusesApply(t *testing.T) {
	complete := domain.Document{
		ID: "pricing_full", Seq: 0, SourceKind: domain.SourcePricing,
		Title: "Occupational Therapy", Content: "body", Metadata: allRegionMetadata(),
	}
	partial := domain.Document{
		ID: "pricing_partial", Seq: 1, SourceKind: domain.SourcePricing,
		Title: "Occupational Therapy", Content: "body",
		Metadata: map[string]string{domain.RegionPriceKey("NSW"): "100.00"},
	}
	ix := Build([]domain.Document{complete, partial})

	intent := domain.QueryIntent{Kind: domain.IntentGeneral, Region: "NSW"}
	fullScore, _ := ix.Score([]string{"occupational"}, "pricing_full", intent)
	partialScore, _ := ix.Score([]string{"occupational"}, "pricing_partial", intent)

	// Base 3.0 plus completeness (1.0) and region presence (0.5)
	// against base plus region presence only.
	if fullScore != 4.5 {
		t.Fatalf("complete pricing doc score = %.2f, want 4.5", fullScore)
	}
	if partialScore != 3.5 {
		t.Fatalf("partial pricing doc score = %.2f, want 3.5", partialScore)
	}
}

func TestSearchExcludesZeroScoresAndBreaksTiesDeterministically(t *testing.T) {
	docs := []domain.Document{
		{ID: "b_doc", Seq: 0, SourceKind: domain.SourceGuidance, Title: "Therapy", Content: "x"},
		{ID: "a_doc", Seq: 1, SourceKind: domain.SourceGuidance, Title: "Therapy", Content: "x"},
		{ID: "unrelated", Seq: 2, SourceKind: domain.SourceGuidance, Title: "Gardening", Content: "x"},
	}
	ix := Build(docs)

	for range 5 {
		results := ix.Search([]string{"therapy"}, domain.QueryIntent{Kind: domain.IntentGeneral}, nil)
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Document.ID != "b_doc" || results[1].Document.ID != "a_doc" {
			t.Fatalf("tie-break not by ingestion sequence: %s, %s", results[0].Document.ID, results[1].Document.ID)
		}
	}
}

func TestSearchAppliesHardFilter(t *testing.T) {
	docs := []domain.Document{
		{ID: "a", Seq: 0, SourceKind: domain.SourcePricing, Title: "Therapy", Category: "Therapeutic Supports", Content: "x"},
		{ID: "b", Seq: 1, SourceKind: domain.SourcePricing, Title: "Therapy", Category: "Transport", Content: "x"},
	}
	ix := Build(docs)

	results := ix.Search([]string{"therapy"}, domain.QueryIntent{Kind: domain.IntentGeneral}, func(d domain.Document) bool {
		return d.Category == "Transport"
	})
	if len(results) != 1 || results[0].Document.ID != "b" {
		t.Fatalf("filter not applied: %v", results)
	}
}

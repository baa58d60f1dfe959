package intent

import (
	"testing"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestClassify(t *testing.T) {
	c := newClassifier(t)

	cases := []struct {
		query string
		want  domain.QueryIntent
	}{
		{
			query: "price for occupational therapy in NSW",
			want:  domain.QueryIntent{Kind: domain.IntentPricing, Region: "NSW"},
		},
		{
			query: "how to claim home modifications",
			want:  domain.QueryIntent{Kind: domain.IntentClaiming, Category: "home modifications"},
		},
		{
			query: "what is support coordination",
			want:  domain.QueryIntent{Kind: domain.IntentDefinition, Category: "support coordination"},
		},
		{
			query: "occupational therapy",
			want:  domain.QueryIntent{Kind: domain.IntentGeneral},
		},
		{
			query: "How much can I claim for transport in Victoria under the new framework?",
			want:  domain.QueryIntent{Kind: domain.IntentPricing, Region: "VIC", Category: "transport", Framework: "new"},
		},
	}

	for _, tc := range cases {
		got := c.Classify(tc.query)
		if got != tc.want {
			t.Errorf("Classify(%q) = %+v, want %+v", tc.query, got, tc.want)
		}
	}
}

func TestClassifyPricingWinsOverClaiming(t *testing.T) {
	c := newClassifier(t)
	got := c.Classify("price for claiming transport")
	if got.Kind != domain.IntentPricing {
		t.Fatalf("ambiguous query resolved to %q, want pricing", got.Kind)
	}
}

func TestClassifySingleTokenRegionNeedsWholeToken(t *testing.T) {
	c := newClassifier(t)
	// "wants" must not match WA, "transact" must not match ACT.
	got := c.Classify("participant wants to transact")
	if got.Region != "" {
		t.Fatalf("expected no region, got %q", got.Region)
	}
	if got := c.Classify("therapy in wa"); got.Region != "WA" {
		t.Fatalf("expected WA, got %q", got.Region)
	}
}

func TestClassifyNeverFails(t *testing.T) {
	c := newClassifier(t)
	for _, query := range []string{"", "   ", "!!!", "zzzz qqqq"} {
		got := c.Classify(query)
		if got.Kind != domain.IntentGeneral {
			t.Errorf("Classify(%q) = %q, want general", query, got.Kind)
		}
	}
}

func TestParseRejectsEmptyTable(t *testing.T) {
	if _, err := Parse([]byte("regions: {}")); err == nil {
		t.Fatalf("expected error for table without intents")
	}
}

package domain

type SourceKind string

const (
	SourcePricing  SourceKind = "pricing"
	SourceRule     SourceKind = "rule"
	SourceGuidance SourceKind = "guidance"
)

// ExpectedRegions are the state/territory codes a complete pricing
// document carries a price limit for.
var ExpectedRegions = []string{"ACT", "NSW", "NT", "QLD", "SA", "TAS", "VIC", "WA"}

// Document is the atomic retrievable unit produced by the chunker.
// Seq is the ingestion position and drives deterministic tie-breaks.
// Embedding stays nil until the provider has computed a vector; once
// set it is never mutated; a changed source record yields a new
// ContentHash, which invalidates any cached vector.
type Document struct {
	ID          string            `json:"id"`
	Seq         int               `json:"seq"`
	SourceKind  SourceKind        `json:"source_kind"`
	Title       string            `json:"title"`
	Category    string            `json:"category,omitempty"`
	Content     string            `json:"content"`
	ContentHash string            `json:"content_hash"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Embedding   []float32         `json:"-"`
}

// RegionPriceKey is the metadata key under which the chunker stores a
// region's price limit, e.g. "price_NSW".
func RegionPriceKey(region string) string {
	return "price_" + region
}

// HasAllRegionPrices reports whether a pricing document carries a price
// for every expected region.
func (d Document) HasAllRegionPrices() bool {
	if d.SourceKind != SourcePricing {
		return false
	}
	for _, region := range ExpectedRegions {
		if _, ok := d.Metadata[RegionPriceKey(region)]; !ok {
			return false
		}
	}
	return true
}

// HasRegionPrice reports whether the document has a price for one region.
func (d Document) HasRegionPrice(region string) bool {
	_, ok := d.Metadata[RegionPriceKey(region)]
	return ok
}

package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

// Chunker converts ingestor records into retrievable documents, one
// document per record. Records that cannot form non-empty content are
// skipped and reported, never fatal.
type Chunker struct{}

func New() *Chunker {
	return &Chunker{}
}

// Chunk renders every record into exactly one document. Document ids
// are stable across rebuilds as long as the underlying record is
// unchanged; the content hash changes whenever the rendered content
// does, which is what invalidates cached embeddings.
func (c *Chunker) Chunk(records []domain.RawRecord) ([]domain.Document, []domain.RecordError) {
	docs := make([]domain.Document, 0, len(records))
	var skipped []domain.RecordError
	seen := make(map[string]struct{}, len(records))

	for i, record := range records {
		doc, err := c.chunkOne(record)
		if err != nil {
			skipped = append(skipped, domain.RecordError{Index: i, Kind: record.Kind, Reason: err.Error()})
			continue
		}
		if _, dup := seen[doc.ID]; dup {
			skipped = append(skipped, domain.RecordError{Index: i, Kind: record.Kind, Reason: fmt.Sprintf("duplicate document id %q", doc.ID)})
			continue
		}
		seen[doc.ID] = struct{}{}

		doc.Seq = len(docs)
		doc.ContentHash = hashContent(doc.Content)
		docs = append(docs, doc)
	}
	return docs, skipped
}

func (c *Chunker) chunkOne(record domain.RawRecord) (domain.Document, error) {
	switch record.Kind {
	case domain.SourcePricing:
		return chunkPricing(record.Fields)
	case domain.SourceRule:
		return chunkRule(record.Fields)
	case domain.SourceGuidance:
		return chunkGuidance(record.Fields)
	default:
		return domain.Document{}, domain.WrapError(domain.ErrMalformedRecord, "chunk record", fmt.Errorf("unknown source kind %q", record.Kind))
	}
}

func chunkPricing(fields map[string]any) (domain.Document, error) {
	name := stringField(fields, "support_item_name")
	number := stringField(fields, "support_item_number")
	if name == "" || number == "" {
		return domain.Document{}, domain.WrapError(domain.ErrMalformedRecord, "chunk pricing record", fmt.Errorf("support_item_name and support_item_number are required"))
	}

	category := stringField(fields, "support_category")
	group := stringField(fields, "registration_group")
	unit := stringField(fields, "unit")

	metadata := map[string]string{
		"item_number": number,
	}
	if category != "" {
		metadata["category"] = category
	}
	if group != "" {
		metadata["registration_group"] = group
	}
	if unit != "" {
		metadata["unit"] = unit
	}
	if framework := stringField(fields, "framework"); framework != "" {
		metadata["framework"] = framework
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Support Item: %s\n", name)
	fmt.Fprintf(&sb, "Support Number: %s\n", number)
	fmt.Fprintf(&sb, "Category: %s\n", orDefault(category, "Not specified"))
	fmt.Fprintf(&sb, "Registration Group: %s\n", orDefault(group, "Not specified"))
	fmt.Fprintf(&sb, "Unit of Measure: %s\n", orDefault(unit, "Not specified"))

	if prices := regionPrices(fields); len(prices) > 0 {
		sb.WriteString("\nPricing by State:\n")
		regions := make([]string, 0, len(prices))
		for region := range prices {
			regions = append(regions, region)
		}
		sort.Strings(regions)
		for _, region := range regions {
			fmt.Fprintf(&sb, "- %s: $%.2f per %s\n", region, prices[region], orDefault(unit, "unit"))
			metadata[domain.RegionPriceKey(region)] = strconv.FormatFloat(prices[region], 'f', 2, 64)
		}
	}

	if boolField(fields, "quote_required") {
		sb.WriteString("\nNote: Quote required before claiming this support.")
	} else {
		sb.WriteString("\nNote: Price is set, no quote required.")
	}

	return domain.Document{
		ID:         "pricing_" + number,
		SourceKind: domain.SourcePricing,
		Title:      name,
		Category:   category,
		Content:    sb.String(),
		Metadata:   metadata,
	}, nil
}

func chunkRule(fields map[string]any) (domain.Document, error) {
	name := stringField(fields, "rule_name")
	if name == "" {
		return domain.Document{}, domain.WrapError(domain.ErrMalformedRecord, "chunk rule record", fmt.Errorf("rule_name is required"))
	}
	body, ok := fields["rule"]
	if !ok || body == nil {
		return domain.Document{}, domain.WrapError(domain.ErrMalformedRecord, "chunk rule record", fmt.Errorf("rule %q has no body", name))
	}

	rendered, err := yaml.Marshal(body)
	if err != nil {
		return domain.Document{}, domain.WrapError(domain.ErrMalformedRecord, "chunk rule record", fmt.Errorf("render rule %q: %w", name, err))
	}

	title := titleizeRuleName(name)
	metadata := map[string]string{"rule_name": name}
	if category := stringField(fields, "category"); category != "" {
		metadata["category"] = category
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Claiming Rule: %s\n", title)
	sb.WriteString("\nRule Details:\n")
	sb.WriteString(strings.TrimRight(string(rendered), "\n"))

	return domain.Document{
		ID:         "rule_" + name,
		SourceKind: domain.SourceRule,
		Title:      title,
		Category:   stringField(fields, "category"),
		Content:    sb.String(),
		Metadata:   metadata,
	}, nil
}

func chunkGuidance(fields map[string]any) (domain.Document, error) {
	title := strings.TrimSpace(stringField(fields, "title"))
	body := strings.TrimSpace(stringField(fields, "body"))
	if title == "" && body == "" {
		return domain.Document{}, domain.WrapError(domain.ErrMalformedRecord, "chunk guidance record", fmt.Errorf("guidance section is empty"))
	}

	index := intField(fields, "section_index")
	if title == "" {
		title = fmt.Sprintf("Section %d", index)
	}

	content := title
	if body != "" {
		content = title + "\n\n" + body
	}

	return domain.Document{
		ID:         "guidance_" + strconv.Itoa(index),
		SourceKind: domain.SourceGuidance,
		Title:      title,
		Content:    content,
		Metadata: map[string]string{
			"section_title": title,
			"section_index": strconv.Itoa(index),
		},
	}, nil
}

func regionPrices(fields map[string]any) map[string]float64 {
	raw, ok := fields["price_limits"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for region, v := range raw {
		switch price := v.(type) {
		case float64:
			out[region] = price
		case int:
			out[region] = float64(price)
		case map[string]any:
			if p, ok := price["price"].(float64); ok {
				out[region] = p
			}
		}
	}
	return out
}

func titleizeRuleName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string)
	return v
}

func boolField(fields map[string]any, key string) bool {
	v, _ := fields[key].(bool)
	return v
}

func intField(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

package localfs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

const (
	pricingFile  = "pricing.json"
	rulesFile    = "rules.yaml"
	guidanceFile = "guidance.md"
)

// Source reads the corpus hand-off files from one directory:
// pricing.json (support items), rules.yaml (claiming rules) and
// guidance.md (markdown sections). A missing file is logged and
// skipped so a partial corpus still serves; an unreadable or
// unparseable file fails the load.
type Source struct {
	dir string
}

func New(dir string) (*Source, error) {
	if dir == "" {
		dir = "./data/corpus"
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat corpus dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus path %s is not a directory", dir)
	}
	return &Source{dir: dir}, nil
}

// Load returns records in a deterministic order: pricing items in file
// order, rules by sorted rule name, guidance sections in document
// order. Ingestion position drives ranking tie-breaks downstream, so
// the order must be stable across reloads.
func (s *Source) Load(_ context.Context) ([]domain.RawRecord, error) {
	var records []domain.RawRecord

	pricing, err := s.loadPricing()
	if err != nil {
		return nil, err
	}
	records = append(records, pricing...)

	rules, err := s.loadRules()
	if err != nil {
		return nil, err
	}
	records = append(records, rules...)

	guidance, err := s.loadGuidance()
	if err != nil {
		return nil, err
	}
	records = append(records, guidance...)

	return records, nil
}

func (s *Source) loadPricing() ([]domain.RawRecord, error) {
	raw, ok, err := s.readFile(pricingFile)
	if err != nil || !ok {
		return nil, err
	}

	var payload struct {
		SupportItems []map[string]any `json:"support_items"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse %s: %w", pricingFile, err)
	}

	records := make([]domain.RawRecord, 0, len(payload.SupportItems))
	for _, item := range payload.SupportItems {
		records = append(records, domain.RawRecord{Kind: domain.SourcePricing, Fields: item})
	}
	return records, nil
}

func (s *Source) loadRules() ([]domain.RawRecord, error) {
	raw, ok, err := s.readFile(rulesFile)
	if err != nil || !ok {
		return nil, err
	}

	var payload struct {
		ClaimingRules map[string]any `yaml:"claiming_rules"`
	}
	if err := yaml.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse %s: %w", rulesFile, err)
	}

	names := make([]string, 0, len(payload.ClaimingRules))
	for name := range payload.ClaimingRules {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]domain.RawRecord, 0, len(names))
	for _, name := range names {
		fields := map[string]any{
			"rule_name": name,
			"rule":      payload.ClaimingRules[name],
		}
		if body, ok := payload.ClaimingRules[name].(map[string]any); ok {
			if category, ok := body["category"].(string); ok {
				fields["category"] = category
			}
		}
		records = append(records, domain.RawRecord{Kind: domain.SourceRule, Fields: fields})
	}
	return records, nil
}

func (s *Source) loadGuidance() ([]domain.RawRecord, error) {
	raw, ok, err := s.readFile(guidanceFile)
	if err != nil || !ok {
		return nil, err
	}

	records := make([]domain.RawRecord, 0)
	for i, section := range splitSections(string(raw)) {
		records = append(records, domain.RawRecord{
			Kind: domain.SourceGuidance,
			Fields: map[string]any{
				"section_index": i,
				"title":         section.title,
				"body":          section.body,
			},
		})
	}
	return records, nil
}

func (s *Source) readFile(name string) ([]byte, bool, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("corpus_file_missing", "file", name, "dir", s.dir)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", name, err)
	}
	return raw, true, nil
}

type section struct {
	title string
	body  string
}

// splitSections breaks a markdown document on level-two headings. Text
// before the first heading becomes an untitled leading section.
func splitSections(text string) []section {
	var out []section
	for i, part := range strings.Split("\n"+text, "\n## ") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i == 0 {
			out = append(out, section{body: part})
			continue
		}
		title, body, _ := strings.Cut(part, "\n")
		out = append(out, section{
			title: strings.TrimSpace(title),
			body:  strings.TrimSpace(body),
		})
	}
	return out
}

package service

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"meditrack/internal/model"
)

//go:embed assets/medications.json
var defaultDataset []byte

// KnowledgeBase holds the read-only drug reference dataset, loaded once at
// startup and searched with accent- and case-insensitive matching.
type KnowledgeBase struct {
	entries []model.ReferenceEntry
}

// NewKnowledgeBase wraps an already-loaded dataset. Mostly for tests.
func NewKnowledgeBase(entries []model.ReferenceEntry) *KnowledgeBase {
	return &KnowledgeBase{entries: entries}
}

// LoadKnowledgeBase reads the dataset from path, or the bundled dataset when
// path is empty. A missing or corrupt dataset degrades search to empty
// results instead of failing startup.
func LoadKnowledgeBase(path string, logger *zap.Logger) *KnowledgeBase {
	entries, err := loadEntries(path)
	if err != nil {
		logger.Warn("search degraded to empty results",
			zap.String("path", path),
			zap.Error(fmt.Errorf("%w: %w", ErrReferenceDataUnavailable, err)),
		)
		return &KnowledgeBase{}
	}
	logger.Info("reference dataset loaded", zap.Int("entries", len(entries)))
	return &KnowledgeBase{entries: entries}
}

func loadEntries(path string) ([]model.ReferenceEntry, error) {
	data := defaultDataset
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
	}

	var entries []model.ReferenceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return entries, nil
}

// Len reports how many reference entries are loaded.
func (kb *KnowledgeBase) Len() int {
	return len(kb.entries)
}

// Search matches the query against drug names and symptom lists. Matching is
// case- and diacritic-insensitive; results keep dataset order. An empty query
// matches nothing.
func (kb *KnowledgeBase) Search(query string) []model.ReferenceEntry {
	term := Normalize(query)
	if term == "" {
		return nil
	}

	var matches []model.ReferenceEntry
	for _, entry := range kb.entries {
		if strings.Contains(Normalize(entry.Name), term) {
			matches = append(matches, entry)
			continue
		}
		for _, symptom := range entry.Symptoms {
			if strings.Contains(Normalize(symptom), term) {
				matches = append(matches, entry)
				break
			}
		}
	}
	return matches
}

// Prefill maps a selected reference entry onto a treatment input, carrying
// the safety minimum along for the interval check.
func (kb *KnowledgeBase) Prefill(entry model.ReferenceEntry) TreatmentInput {
	return TreatmentInput{
		Name:             entry.Name,
		DoseAmount:       entry.DoseAmount,
		IntervalHours:    entry.IntervalHours,
		DurationDays:     entry.DurationDays,
		Indication:       strings.Join(entry.Symptoms, ", "),
		MinIntervalHours: entry.MinIntervalHours,
	}
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases and strips diacritics so that "Dipirona" and
// "dipirona", or "cabeça" and "cabeca", compare equal.
func Normalize(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

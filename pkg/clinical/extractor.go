// Package clinical extracts keyword entities from free-text clinical notes.
package clinical

import (
	"errors"
	"fmt"
	"strings"

	"github.com/optihealth/platform/pkg/common/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	SummaryNoNotes    = "No clinical notes provided."
	SummaryHigh       = "High clinical complexity detected based on multiple conditions and symptoms mentioned."
	SummaryModerate   = "Moderate clinical findings extracted from notes."
	SummaryNoEntities = "No significant clinical entities extracted from the text."

	SymptomSentiment = -0.4
	NeutralSentiment = 0.2
)

var ErrUnknownDictionary = errors.New("unknown keyword dictionary")

type compiledTerm struct {
	needle   string
	display  string
	category string
}

// Extractor matches a dictionary against text by case-insensitive substring.
// It is read-only after construction.
type Extractor struct {
	name    string
	terms   []compiledTerm
	weights map[string]float64
}

func NewExtractor(dict Dictionary) (*Extractor, error) {
	if len(dict.Terms) == 0 {
		return nil, fmt.Errorf("dictionary %q has no terms", dict.Name)
	}
	caser := cases.Title(language.English)
	seen := make(map[string]struct{}, len(dict.Terms))
	terms := make([]compiledTerm, 0, len(dict.Terms))
	for _, t := range dict.Terms {
		needle := strings.ToLower(strings.TrimSpace(t.Term))
		if needle == "" || t.Category == "" {
			return nil, fmt.Errorf("dictionary %q: term and category are required", dict.Name)
		}
		if _, dup := seen[needle]; dup {
			continue
		}
		seen[needle] = struct{}{}
		display := needle
		if dict.TitleCase {
			display = caser.String(needle)
		}
		terms = append(terms, compiledTerm{needle: needle, display: display, category: strings.ToUpper(t.Category)})
	}

	weights := make(map[string]float64, len(dict.Weights))
	for category, w := range dict.Weights {
		weights[strings.ToUpper(category)] = w
	}
	return &Extractor{name: dict.Name, terms: terms, weights: weights}, nil
}

// Extract returns at most one entity per dictionary term, in dictionary order.
func (e *Extractor) Extract(text string) []models.ClinicalEntity {
	entities := []models.ClinicalEntity{}
	if strings.TrimSpace(text) == "" {
		return entities
	}
	lowered := strings.ToLower(text)
	for _, t := range e.terms {
		if strings.Contains(lowered, t.needle) {
			entities = append(entities, models.ClinicalEntity{Text: t.display, Type: t.category})
		}
	}
	return entities
}

// Score sums the category weight of every entity.
func (e *Extractor) Score(entities []models.ClinicalEntity) float64 {
	var score float64
	for _, ent := range entities {
		score += e.weights[ent.Type]
	}
	return score
}

// Analyzer serves note analysis over a set of named dictionaries.
type Analyzer struct {
	extractors  map[string]*Extractor
	defaultName string
}

func NewAnalyzer(cfg DictionaryConfig) (*Analyzer, error) {
	a := &Analyzer{extractors: make(map[string]*Extractor), defaultName: DictionaryClinical}
	for _, d := range cfg.Dictionaries {
		ex, err := NewExtractor(d)
		if err != nil {
			return nil, err
		}
		a.extractors[d.Name] = ex
	}
	if _, ok := a.extractors[a.defaultName]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDictionary, a.defaultName)
	}
	return a, nil
}

func (a *Analyzer) Extractor(name string) (*Extractor, bool) {
	ex, ok := a.extractors[name]
	return ex, ok
}

// Analyze extracts entities with the named dictionary (the clinical one when
// name is empty) and summarises them.
func (a *Analyzer) Analyze(name, text string) (models.NotesAnalysis, error) {
	if name == "" {
		name = a.defaultName
	}
	ex, ok := a.extractors[name]
	if !ok {
		return models.NotesAnalysis{}, fmt.Errorf("%w: %s", ErrUnknownDictionary, name)
	}

	if strings.TrimSpace(text) == "" {
		return models.NotesAnalysis{Entities: []models.ClinicalEntity{}, Summary: SummaryNoNotes}, nil
	}

	entities := ex.Extract(text)
	sentiment := NeutralSentiment
	for _, ent := range entities {
		if ent.Type == CategorySymptom {
			sentiment = SymptomSentiment
			break
		}
	}
	return models.NotesAnalysis{
		Entities:       entities,
		SentimentScore: sentiment,
		Summary:        summarise(len(entities)),
	}, nil
}

func summarise(count int) string {
	switch {
	case count > 3:
		return SummaryHigh
	case count > 0:
		return SummaryModerate
	default:
		return SummaryNoEntities
	}
}

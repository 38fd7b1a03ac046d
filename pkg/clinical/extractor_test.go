package clinical

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/optihealth/platform/pkg/common/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func riskExtractor(t *testing.T) *Extractor {
	t.Helper()
	dict, ok := DefaultDictionaries().Get(DictionaryRisk)
	require.True(t, ok)
	ex, err := NewExtractor(dict)
	require.NoError(t, err)
	return ex
}

func TestExtractDeduplicatesRepeatedTerms(t *testing.T) {
	entities := riskExtractor(t).Extract("fever fever fever")
	assert.Equal(t, []models.ClinicalEntity{{Text: "fever", Type: CategorySymptom}}, entities)
}

func TestExtractIsCaseInsensitiveAndOrdered(t *testing.T) {
	ex := riskExtractor(t)

	entities := ex.Extract("Patient reports CHEST PAIN and is Non-Compliant with Metformin")

	assert.Equal(t, []models.ClinicalEntity{
		{Text: "chest pain", Type: CategorySymptom},
		{Text: "metformin", Type: CategoryMedication},
		{Text: "non-compliant", Type: CategoryRisk},
	}, entities)
	assert.Equal(t, 15.0, ex.Score(entities))
}

func TestExtractEmptyText(t *testing.T) {
	entities := riskExtractor(t).Extract("   ")
	require.NotNil(t, entities)
	assert.Empty(t, entities)
}

func TestClinicalDictionaryTitleCases(t *testing.T) {
	analyzer, err := NewAnalyzer(DefaultDictionaries())
	require.NoError(t, err)

	analysis, err := analyzer.Analyze("", "history of heart failure, now with shortness of breath")
	require.NoError(t, err)

	assert.Contains(t, analysis.Entities, models.ClinicalEntity{Text: "Heart Failure", Type: CategoryDisease})
	assert.Contains(t, analysis.Entities, models.ClinicalEntity{Text: "Shortness Of Breath", Type: CategorySymptom})
	assert.Equal(t, SymptomSentiment, analysis.SentimentScore)
	assert.Equal(t, SummaryModerate, analysis.Summary)
}

func TestAnalyzeSummaries(t *testing.T) {
	analyzer, err := NewAnalyzer(DefaultDictionaries())
	require.NoError(t, err)

	cases := []struct {
		name      string
		text      string
		summary   string
		sentiment float64
	}{
		{"empty", "", SummaryNoNotes, 0},
		{"nothing matched", "routine follow-up, all clear", SummaryNoEntities, NeutralSentiment},
		{"medication only", "continue insulin", SummaryModerate, NeutralSentiment},
		{"complex", "diabetes, hypertension, copd with cough and fatigue", SummaryHigh, SymptomSentiment},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analysis, err := analyzer.Analyze(DictionaryClinical, tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.summary, analysis.Summary)
			assert.Equal(t, tc.sentiment, analysis.SentimentScore)
		})
	}
}

func TestAnalyzeTriageDictionary(t *testing.T) {
	analyzer, err := NewAnalyzer(DefaultDictionaries())
	require.NoError(t, err)

	analysis, err := analyzer.Analyze(DictionaryTriage, "suspected pneumonia")
	require.NoError(t, err)
	assert.Equal(t, []models.ClinicalEntity{{Text: "pneumonia", Type: CategoryDiagnosis}}, analysis.Entities)

	_, err = analyzer.Analyze("oncology", "text")
	assert.ErrorIs(t, err, ErrUnknownDictionary)
}

func TestNewExtractorRejectsInvalidDictionaries(t *testing.T) {
	_, err := NewExtractor(Dictionary{Name: "empty"})
	assert.Error(t, err)

	_, err = NewExtractor(Dictionary{Name: "bad", Terms: []Term{{Term: "fever"}}})
	assert.Error(t, err)
}

func TestLoadDictionaries(t *testing.T) {
	cfg, err := LoadDictionaries("")
	require.NoError(t, err)
	assert.Len(t, cfg.Dictionaries, 3)

	path := filepath.Join(t.TempDir(), "dictionaries.yaml")
	content := `dictionaries:
  - name: risk
    terms:
      - term: sepsis
        category: risk
    weights:
      RISK: 20
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err = LoadDictionaries(path)
	require.NoError(t, err)
	risk, ok := cfg.Get(DictionaryRisk)
	require.True(t, ok)
	assert.Equal(t, []Term{{Term: "sepsis", Category: "risk"}}, risk.Terms)
	_, ok = cfg.Get(DictionaryClinical)
	assert.True(t, ok, "missing dictionaries fall back to defaults")

	ex, err := NewExtractor(risk)
	require.NoError(t, err)
	entities := ex.Extract("Sepsis protocol")
	assert.Equal(t, 20.0, ex.Score(entities))
}

func TestLoadedDictionariesAlwaysProvideRiskExtractor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`dictionaries:
  - name: triage
    terms:
      - term: fracture
        category: diagnosis
`), 0o600))

	cfg, err := LoadDictionaries(path)
	require.NoError(t, err)
	analyzer, err := NewAnalyzer(cfg)
	require.NoError(t, err)

	ex, ok := analyzer.Extractor(DictionaryRisk)
	require.True(t, ok)
	require.NotNil(t, ex)
	assert.NotEmpty(t, ex.Extract("patient reports chest pain"))
}

func TestLoadDictionariesErrors(t *testing.T) {
	_, err := LoadDictionaries(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dictionaries: []\n"), 0o600))
	_, err = LoadDictionaries(path)
	assert.Error(t, err)
}

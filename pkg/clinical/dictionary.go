package clinical

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Built-in dictionary names.
const (
	DictionaryRisk     = "risk"
	DictionaryClinical = "clinical"
	DictionaryTriage   = "triage"
)

// Entity categories.
const (
	CategorySymptom    = "SYMPTOM"
	CategoryMedication = "MEDICATION"
	CategoryRisk       = "RISK"
	CategoryDisease    = "DISEASE"
	CategoryDiagnosis  = "DIAGNOSIS"
)

type Term struct {
	Term     string `yaml:"term" json:"term"`
	Category string `yaml:"category" json:"category"`
}

// Dictionary is an ordered keyword table. Weights map a category to the score
// it adds when at least one of its terms matches a note.
type Dictionary struct {
	Name      string             `yaml:"name" json:"name"`
	TitleCase bool               `yaml:"title_case" json:"title_case"`
	Terms     []Term             `yaml:"terms" json:"terms"`
	Weights   map[string]float64 `yaml:"weights" json:"weights"`
}

type DictionaryConfig struct {
	Dictionaries []Dictionary `yaml:"dictionaries" json:"dictionaries"`
}

// Get returns the dictionary with the given name.
func (c DictionaryConfig) Get(name string) (Dictionary, bool) {
	for _, d := range c.Dictionaries {
		if d.Name == name {
			return d, true
		}
	}
	return Dictionary{}, false
}

// LoadDictionaries reads a YAML dictionary file. An empty path yields the
// compiled-in defaults; dictionaries missing from the file fall back to them.
func LoadDictionaries(path string) (DictionaryConfig, error) {
	if path == "" {
		return DefaultDictionaries(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultDictionaries(), fmt.Errorf("read dictionaries: %w", err)
	}

	var cfg DictionaryConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return DictionaryConfig{}, fmt.Errorf("parse dictionaries: %w", err)
	}
	if len(cfg.Dictionaries) == 0 {
		return DictionaryConfig{}, errors.New("no keyword dictionaries configured")
	}

	for _, d := range DefaultDictionaries().Dictionaries {
		if _, ok := cfg.Get(d.Name); !ok {
			cfg.Dictionaries = append(cfg.Dictionaries, d)
		}
	}
	return cfg, nil
}

func DefaultDictionaries() DictionaryConfig {
	return DictionaryConfig{Dictionaries: []Dictionary{
		{
			Name: DictionaryRisk,
			Terms: []Term{
				{Term: "shortness of breath", Category: CategorySymptom},
				{Term: "chest pain", Category: CategorySymptom},
				{Term: "fever", Category: CategorySymptom},
				{Term: "lisinopril", Category: CategoryMedication},
				{Term: "metformin", Category: CategoryMedication},
				{Term: "non-compliant", Category: CategoryRisk},
				{Term: "refused", Category: CategoryRisk},
			},
			Weights: map[string]float64{
				CategorySymptom:    5,
				CategoryRisk:       10,
				CategoryMedication: 0,
			},
		},
		{
			Name:      DictionaryClinical,
			TitleCase: true,
			Terms: []Term{
				{Term: "diabetes", Category: CategoryDisease},
				{Term: "hypertension", Category: CategoryDisease},
				{Term: "copd", Category: CategoryDisease},
				{Term: "chf", Category: CategoryDisease},
				{Term: "pneumonia", Category: CategoryDisease},
				{Term: "sepsis", Category: CategoryDisease},
				{Term: "asthma", Category: CategoryDisease},
				{Term: "cancer", Category: CategoryDisease},
				{Term: "heart failure", Category: CategoryDisease},
				{Term: "pain", Category: CategorySymptom},
				{Term: "fever", Category: CategorySymptom},
				{Term: "cough", Category: CategorySymptom},
				{Term: "shortness of breath", Category: CategorySymptom},
				{Term: "dizziness", Category: CategorySymptom},
				{Term: "fatigue", Category: CategorySymptom},
				{Term: "nausea", Category: CategorySymptom},
				{Term: "swelling", Category: CategorySymptom},
				{Term: "lisinopril", Category: CategoryMedication},
				{Term: "metformin", Category: CategoryMedication},
				{Term: "insulin", Category: CategoryMedication},
				{Term: "antibiotics", Category: CategoryMedication},
				{Term: "aspirin", Category: CategoryMedication},
				{Term: "statin", Category: CategoryMedication},
				{Term: "beta blocker", Category: CategoryMedication},
			},
		},
		{
			Name: DictionaryTriage,
			Terms: []Term{
				{Term: "shortness of breath", Category: CategorySymptom},
				{Term: "chest pain", Category: CategorySymptom},
				{Term: "fever", Category: CategorySymptom},
				{Term: "lisinopril", Category: CategoryMedication},
				{Term: "metformin", Category: CategoryMedication},
				{Term: "pneumonia", Category: CategoryDiagnosis},
			},
		},
	}}
}

// Package ml trains and serves the readmission classifier artifact.
package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/optihealth/platform/pkg/common/models"
	"github.com/optihealth/platform/pkg/ml/linear"
)

const (
	ModelType      = "readmission_risk"
	AlgorithmLR    = "logistic_regression"
	topFeatures    = 7
	MinExamples    = 10
	artifactPerms  = 0o644
	artifactDirMod = 0o755
)

var (
	ErrInsufficientData = errors.New("insufficient training data")
	ErrNoArtifact       = errors.New("model artifact not found")
)

type Model struct {
	Type         string         `json:"type"`
	Algorithm    string         `json:"algorithm"`
	FeatureNames []string       `json:"feature_names"`
	Weights      linear.Weights `json:"weights"`
}

type Artifact struct {
	Model     Model          `json:"model"`
	Metrics   linear.Metrics `json:"metrics"`
	TrainedAt time.Time      `json:"trained_at"`
}

// Predict scores a raw feature vector ordered like Model.FeatureNames.
func (a Artifact) Predict(sample []float64) (float64, error) {
	if len(sample) != len(a.Model.Weights.Coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(a.Model.Weights.Coefficients), len(sample))
	}
	return linear.Predict(a.Model.Weights, sample), nil
}

// FeatureImportance ranks features by normalised absolute coefficient and
// keeps the top seven.
func (a Artifact) FeatureImportance() []models.FeatureImportance {
	coef := a.Model.Weights.Coefficients
	var total float64
	for _, c := range coef {
		total += math.Abs(c)
	}
	out := make([]models.FeatureImportance, 0, len(coef))
	for i, c := range coef {
		if i >= len(a.Model.FeatureNames) {
			break
		}
		importance := 0.0
		if total > 0 {
			importance = math.Round(math.Abs(c)/total*1000) / 1000
		}
		out = append(out, models.FeatureImportance{Feature: a.Model.FeatureNames[i], Importance: importance})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	if len(out) > topFeatures {
		out = out[:topFeatures]
	}
	return out
}

// Save writes the artifact as indented JSON, creating parent directories.
func Save(path string, artifact Artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), artifactDirMod); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	content, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, artifactPerms); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return os.Rename(tmp, path)
}

// Store loads the artifact from disk and reloads it when the file changes.
type Store struct {
	path    string
	mu      sync.RWMutex
	cached  Artifact
	modTime int64
	loaded  bool
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load() (Artifact, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Artifact{}, ErrNoArtifact
		}
		return Artifact{}, err
	}
	mod := info.ModTime().UnixNano()

	s.mu.RLock()
	if s.loaded && s.modTime == mod {
		cached := s.cached
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	content, err := os.ReadFile(filepath.Clean(s.path))
	if err != nil {
		return Artifact{}, err
	}
	var artifact Artifact
	if err := json.Unmarshal(content, &artifact); err != nil {
		return Artifact{}, fmt.Errorf("decode artifact: %w", err)
	}
	if len(artifact.Model.FeatureNames) == 0 {
		return Artifact{}, errors.New("artifact missing feature names")
	}

	s.mu.Lock()
	s.cached, s.modTime, s.loaded = artifact, mod, true
	s.mu.Unlock()
	return artifact, nil
}

// FeatureImportance is empty, without error, until a model has been trained.
func (s *Store) FeatureImportance() ([]models.FeatureImportance, error) {
	artifact, err := s.Load()
	if errors.Is(err, ErrNoArtifact) {
		return []models.FeatureImportance{}, nil
	}
	if err != nil {
		return nil, err
	}
	return artifact.FeatureImportance(), nil
}

package estimator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"route-traffic-api/features"
)

const (
	KindForest = "forest"
	KindLinear = "linear"
)

// Regressor maps one feature row, in features.Schema order, to a speed in km/h.
type Regressor interface {
	Predict(row []float64) (float64, error)
}

// Artifact is the on-disk model format. Trees use the flat node arrays of a
// scikit-learn tree export, so a fitted ensemble can be dumped without
// conversion: a leaf has children_left == -1 and its prediction in value.
type Artifact struct {
	Kind         string    `json:"kind"`
	Version      string    `json:"version"`
	Features     []string  `json:"features"`
	Trees        []Tree    `json:"trees,omitempty"`
	Intercept    float64   `json:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`
}

type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// Forest averages the leaf values reached in each tree.
type Forest struct {
	trees []Tree
}

func (f *Forest) Predict(row []float64) (float64, error) {
	if len(f.trees) == 0 {
		return 0, errors.New("forest has no trees")
	}
	var sum float64
	for i := range f.trees {
		v, err := f.trees[i].predict(row)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += v
	}
	return sum / float64(len(f.trees)), nil
}

func (t *Tree) predict(row []float64) (float64, error) {
	node := 0
	// a valid tree reaches a leaf in at most len(nodes) steps
	for steps := 0; steps <= len(t.Value); steps++ {
		left := t.ChildrenLeft[node]
		if left < 0 {
			return t.Value[node], nil
		}
		feature := t.Feature[node]
		if feature < 0 || feature >= len(row) {
			return 0, fmt.Errorf("node %d splits on unknown feature %d", node, feature)
		}
		if row[feature] <= t.Threshold[node] {
			node = left
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return 0, errors.New("tree has a cycle")
}

func (t *Tree) validate(numFeatures int) error {
	n := len(t.Value)
	if n == 0 {
		return errors.New("empty tree")
	}
	if len(t.ChildrenLeft) != n || len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n {
		return errors.New("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left < 0 {
			continue
		}
		if left >= n || right < 0 || right >= n {
			return fmt.Errorf("node %d has child out of range", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= numFeatures {
			return fmt.Errorf("node %d splits on unknown feature %d", i, t.Feature[i])
		}
	}
	return nil
}

// Linear is intercept + coefficients·row.
type Linear struct {
	Intercept    float64
	Coefficients []float64
}

func (l *Linear) Predict(row []float64) (float64, error) {
	if len(row) != len(l.Coefficients) {
		return 0, fmt.Errorf("row has %d values, model expects %d", len(row), len(l.Coefficients))
	}
	y := l.Intercept
	for i, c := range l.Coefficients {
		y += c * row[i]
	}
	return y, nil
}

// Regressor validates the artifact and returns the model it describes.
func (a *Artifact) Regressor() (Regressor, error) {
	if !features.MatchesSchema(a.Features) {
		return nil, fmt.Errorf("artifact features %v do not match schema %v", a.Features, features.Schema())
	}

	switch a.Kind {
	case KindForest:
		for i := range a.Trees {
			if err := a.Trees[i].validate(features.NumFeatures()); err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
		}
		if len(a.Trees) == 0 {
			return nil, errors.New("forest artifact has no trees")
		}
		return &Forest{trees: a.Trees}, nil
	case KindLinear:
		if len(a.Coefficients) != features.NumFeatures() {
			return nil, fmt.Errorf("linear artifact has %d coefficients, want %d", len(a.Coefficients), features.NumFeatures())
		}
		return &Linear{Intercept: a.Intercept, Coefficients: a.Coefficients}, nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", a.Kind)
	}
}

func ReadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return &a, nil
}

func WriteArtifact(path string, a *Artifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

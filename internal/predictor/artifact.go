package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"attendance/internal/features"

	"gonum.org/v1/gonum/floats"
)

const (
	artifactFormat  = "attendance-ensemble"
	artifactVersion = 1

	kindLinear = "linear"
	kindTree   = "tree"

	aggregateMean = "mean"
)

// Artifact is the JSON export of the trained ensemble. Each estimator is a
// linear model or a regression tree; the prediction is their (optionally
// weighted) mean, like a voting regressor.
type Artifact struct {
	Format          string      `json:"format"`
	Version         int         `json:"version"`
	EncodingVersion string      `json:"encoding_version"`
	Features        []string    `json:"features"`
	Aggregation     string      `json:"aggregation"`
	Weights         []float64   `json:"weights,omitempty"`
	Estimators      []Estimator `json:"estimators"`
}

// Estimator is one ensemble member
type Estimator struct {
	Kind         string     `json:"kind"`
	Intercept    float64    `json:"intercept,omitempty"`
	Coefficients []float64  `json:"coefficients,omitempty"`
	Nodes        []TreeNode `json:"nodes,omitempty"`
}

// TreeNode follows the scikit-learn layout: samples with
// x[Feature] <= Threshold go Left, and Left == -1 marks a leaf holding Value.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

func (n TreeNode) leaf() bool { return n.Left == -1 }

// DecodeArtifact parses and validates an artifact export.
func DecodeArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decoding artifact: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Artifact) validate() error {
	if a.Format != artifactFormat {
		return fmt.Errorf("unexpected artifact format %q", a.Format)
	}
	if a.Version != artifactVersion {
		return fmt.Errorf("unsupported artifact version %d", a.Version)
	}
	if err := checkSchema(a.Features, a.EncodingVersion); err != nil {
		return err
	}
	if a.Aggregation == "" {
		a.Aggregation = aggregateMean
	}
	if a.Aggregation != aggregateMean {
		return fmt.Errorf("unsupported aggregation %q", a.Aggregation)
	}
	if len(a.Estimators) == 0 {
		return errors.New("artifact has no estimators")
	}
	if a.Weights != nil {
		if len(a.Weights) != len(a.Estimators) {
			return fmt.Errorf("got %d weights for %d estimators", len(a.Weights), len(a.Estimators))
		}
		if floats.Min(a.Weights) < 0 || floats.Sum(a.Weights) <= 0 {
			return errors.New("weights must be non-negative with a positive sum")
		}
	}
	for i, e := range a.Estimators {
		if err := e.validate(len(a.Features)); err != nil {
			return fmt.Errorf("estimator %d: %w", i, err)
		}
	}
	return nil
}

func (e Estimator) validate(width int) error {
	switch e.Kind {
	case kindLinear:
		if len(e.Coefficients) != width {
			return fmt.Errorf("linear model has %d coefficients, want %d", len(e.Coefficients), width)
		}
		return nil
	case kindTree:
		return validateTree(e.Nodes, width)
	}
	return fmt.Errorf("unknown estimator kind %q", e.Kind)
}

// validateTree checks indices and that every node is reachable exactly once
// from the root, which rules out cycles and shared subtrees.
func validateTree(nodes []TreeNode, width int) error {
	if len(nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	seen := make([]bool, len(nodes))
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[i] {
			return fmt.Errorf("node %d is reachable more than once", i)
		}
		seen[i] = true

		n := nodes[i]
		if n.leaf() {
			continue
		}
		if n.Feature < 0 || n.Feature >= width {
			return fmt.Errorf("node %d splits on feature %d", i, n.Feature)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= 0 || child >= len(nodes) {
				return fmt.Errorf("node %d has child index %d out of range", i, child)
			}
			stack = append(stack, child)
		}
	}
	return nil
}

func (e Estimator) predict(x []float64) float64 {
	if e.Kind == kindLinear {
		return e.Intercept + floats.Dot(e.Coefficients, x)
	}
	i := 0
	for !e.Nodes[i].leaf() {
		n := e.Nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return e.Nodes[i].Value
}

// Predict evaluates the ensemble on one row.
func (a *Artifact) Predict(x []float64) float64 {
	out := make([]float64, len(a.Estimators))
	for i, e := range a.Estimators {
		out[i] = e.predict(x)
	}
	if a.Weights == nil {
		return floats.Sum(out) / float64(len(out))
	}
	return floats.Dot(out, a.Weights) / floats.Sum(a.Weights)
}

type artifactPredictor struct {
	artifact *Artifact
	source   string
}

// NewArtifactPredictor wraps a decoded artifact.
func NewArtifactPredictor(a *Artifact, source string) Predictor {
	return &artifactPredictor{artifact: a, source: source}
}

func (p *artifactPredictor) Predict(_ context.Context, v features.Vector) (float64, error) {
	y := p.artifact.Predict(v.Values())
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, ErrInvalidOutput
	}
	return y, nil
}

func (p *artifactPredictor) Info() Info {
	return Info{
		Kind:            "artifact",
		Source:          p.source,
		EncodingVersion: p.artifact.EncodingVersion,
		Features:        append([]string(nil), p.artifact.Features...),
		Estimators:      len(p.artifact.Estimators),
	}
}

package domain

import (
	"math"
	"testing"
)

func TestCosine_SelfSimilarity(t *testing.T) {
	v := Vector{0.3, -0.5, 0.81, 0.02}
	got := Cosine(v, v)
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("expected self similarity 1.0, got %f", got)
	}
}

func TestCosine_Symmetric(t *testing.T) {
	a := Vector{0.1, 0.9, -0.2}
	b := Vector{0.7, 0.05, 0.4}
	if Cosine(a, b) != Cosine(b, a) {
		t.Errorf("cosine not symmetric: %f vs %f", Cosine(a, b), Cosine(b, a))
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	a := Vector{1, 0}
	b := Vector{0, 1}
	if got := Cosine(a, b); math.Abs(got) > 1e-6 {
		t.Errorf("expected ~0 for orthogonal vectors, got %f", got)
	}
}

func TestCosine_Opposite(t *testing.T) {
	a := Vector{1, 1}
	b := Vector{-1, -1}
	if got := Cosine(a, b); math.Abs(got+1.0) > 1e-6 {
		t.Errorf("expected ~-1 for opposite vectors, got %f", got)
	}
}

func TestCosine_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
	}{
		{"both zero", Vector{0, 0, 0}, Vector{0, 0, 0}},
		{"empty", nil, nil},
		{"length mismatch", Vector{1, 2}, Vector{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); got != 0 {
				t.Errorf("expected 0, got %f", got)
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{"", StrategyAuto},
		{"auto", StrategyAuto},
		{"standard", StrategyStandard},
		{"corrective", StrategyCorrective},
		{"speculative", StrategySpeculative},
		{"fusion", StrategyFusion},
		{"turbo", StrategyStandard},
		{"Standard", StrategyStandard}, // unknown casing degrades too
	}
	for _, tt := range tests {
		if got := ParseStrategy(tt.in); got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

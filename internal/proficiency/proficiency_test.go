package proficiency

import (
	"math"
	"testing"
)

func TestUpdate(t *testing.T) {
	testCases := []struct {
		name     string
		score    float64
		correct  bool
		expected float64
	}{
		{"correct adds 0.2", 5.0, true, 5.2},
		{"incorrect subtracts 0.1", 5.0, false, 4.9},
		{"clamped at upper bound", 9.0, true, 9.0},
		{"near upper bound clamps", 8.9, true, 9.0},
		{"clamped at lower bound", 1.0, false, 1.0},
		{"near lower bound clamps", 1.05, false, 1.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Update(tc.score, tc.correct)
			if math.Abs(got-tc.expected) > 0.0001 {
				t.Errorf("Update(%.2f, %v) = %.4f, want %.4f", tc.score, tc.correct, got, tc.expected)
			}
		})
	}
}

func TestUpdateStaysInRange(t *testing.T) {
	for score := MinScore; score <= MaxScore; score += 0.1 {
		if got := Update(score, true); got > MaxScore {
			t.Fatalf("Update(%.2f, true) = %.4f exceeds max", score, got)
		}
		if got := Update(score, false); got < MinScore {
			t.Fatalf("Update(%.2f, false) = %.4f below min", score, got)
		}
	}
}

func TestToDifficulty(t *testing.T) {
	testCases := []struct {
		name       string
		score      float64
		multiplier float64
		expected   int
	}{
		{"midline grade 8 learner", 5.0, 1.0, 5}, // ceil(5/9*8) = 5
		{"floor score", 1.0, 1.0, 1},
		{"ceiling score", 9.0, 1.0, 8},
		{"low grade compresses", 9.0, 0.70, 6}, // round(8 * 0.7)
		{"high grade stretches clamps", 9.0, 1.15, 8},
		{"high grade stretches mid", 5.0, 1.15, 6}, // round(5 * 1.15)
		{"tiny multiplier clamps low", 1.0, 0.1, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDifficulty(tc.score, tc.multiplier)
			if got != tc.expected {
				t.Errorf("ToDifficulty(%.2f, %.2f) = %d, want %d", tc.score, tc.multiplier, got, tc.expected)
			}
		})
	}
}

func TestToDifficultyAlwaysInRange(t *testing.T) {
	for grade := 1; grade <= 12; grade++ {
		mult := GradeMultiplier(grade)
		for score := MinScore; score <= MaxScore; score += 0.05 {
			bucket := ToDifficulty(score, mult)
			if bucket < 1 || bucket > 8 {
				t.Fatalf("ToDifficulty(%.2f, %.2f) = %d out of [1,8]", score, mult, bucket)
			}
		}
	}
}

func TestGradeMultiplier(t *testing.T) {
	testCases := []struct {
		grade    int
		expected float64
	}{
		{1, 0.70},
		{3, 0.70},
		{4, 0.85},
		{5, 0.85},
		{6, 1.00},
		{8, 1.00},
		{10, 1.00},
		{11, 1.15},
		{12, 1.15},
	}

	for _, tc := range testCases {
		if got := GradeMultiplier(tc.grade); got != tc.expected {
			t.Errorf("GradeMultiplier(%d) = %.2f, want %.2f", tc.grade, got, tc.expected)
		}
	}
}

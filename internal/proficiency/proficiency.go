// Package proficiency maps a learner's continuous skill estimate to the
// discrete difficulty buckets the content pool is keyed by. Everything here
// is pure and total; callers never see an error.
package proficiency

import "math"

const (
	MinScore = 1.0
	MaxScore = 9.0

	correctDelta   = 0.2
	incorrectDelta = 0.1
)

// Update applies one answer to the score: +0.2 on correct, -0.1 on incorrect,
// clamped to [1,9].
func Update(score float64, wasCorrect bool) float64 {
	if wasCorrect {
		score += correctDelta
	} else {
		score -= incorrectDelta
	}
	return clamp(score, MinScore, MaxScore)
}

// GradeMultiplier is a step function of grade: lower grades compress toward
// easier buckets, grade 11 and up stretches toward harder ones.
func GradeMultiplier(grade int) float64 {
	switch {
	case grade <= 3:
		return 0.70
	case grade <= 5:
		return 0.85
	case grade <= 10:
		return 1.00
	default:
		return 1.15
	}
}

// ToDifficulty converts a score to a difficulty bucket:
// round(ceil(score/9 * 8) * multiplier), clamped to [1,8].
func ToDifficulty(score, multiplier float64) int {
	base := math.Ceil(score / MaxScore * 8)
	bucket := int(math.Round(base * multiplier))
	if bucket < 1 {
		return 1
	}
	if bucket > 8 {
		return 8
	}
	return bucket
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

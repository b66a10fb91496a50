package analyzer

import "math"

// categoryWeights is the fixed weight table for the overall score. Weights
// sum to 1.0; categories absent from an analysis are excluded from both
// numerator and denominator, which renormalizes the remaining weight.
var categoryWeights = map[Category]float64{
	CategoryMeta:         0.15,
	CategoryHeadings:     0.10,
	CategoryImages:       0.08,
	CategoryContent:      0.15,
	CategoryLinks:        0.08,
	CategoryURLStructure: 0.05,
	CategoryMobile:       0.10,
	CategoryTechnical:    0.10,
	CategorySocial:       0.05,
	CategorySecurity:     0.10,
	CategoryPerformance:  0.04,
}

const (
	strengthThreshold = 80
	weaknessThreshold = 60

	fillerStrength = "Good foundation for SEO"
	fillerWeakness = "Minor optimizations needed"
)

// Aggregation combines per-category scores into the overall verdict.
type Aggregation struct {
	Overall    int
	Grade      string
	Strengths  []string
	Weaknesses []string
}

// Aggregate computes the weighted overall score, letter grade, and the
// strengths/weaknesses lists from per-category thresholds.
func Aggregate(scores map[Category]int) Aggregation {
	var weightedSum, weightTotal float64
	for category, score := range scores {
		weight, ok := categoryWeights[category]
		if !ok {
			continue
		}
		weightedSum += float64(score) * weight
		weightTotal += weight
	}

	overall := 0
	if weightTotal > 0 {
		overall = clampScore(int(math.Round(weightedSum / weightTotal)))
	}

	agg := Aggregation{
		Overall: overall,
		Grade:   gradeFor(overall),
	}

	for _, category := range categoryOrder {
		score, present := scores[category]
		if !present {
			continue
		}
		if score >= strengthThreshold {
			agg.Strengths = append(agg.Strengths, string(category))
		}
		if score < weaknessThreshold {
			agg.Weaknesses = append(agg.Weaknesses, string(category))
		}
	}

	// Non-empty UX contract: substitute a generic filler rather than
	// fabricating false specifics.
	if len(agg.Strengths) == 0 {
		agg.Strengths = []string{fillerStrength}
	}
	if len(agg.Weaknesses) == 0 {
		agg.Weaknesses = []string{fillerWeakness}
	}

	return agg
}

// gradeFor maps an overall score to a letter grade. Thresholds are monotonic
// and cover every integer in [0,100].
func gradeFor(score int) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 85:
		return "A-"
	case score >= 80:
		return "B+"
	case score >= 75:
		return "B"
	case score >= 70:
		return "B-"
	case score >= 65:
		return "C+"
	case score >= 60:
		return "C"
	case score >= 55:
		return "C-"
	case score >= 50:
		return "D+"
	case score >= 45:
		return "D"
	default:
		return "F"
	}
}

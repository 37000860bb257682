package services

import "math"

// Category buckets a 0-10 likelihood-to-recommend score.
type Category string

const (
	CategoryPromoter  Category = "promoter"
	CategoryPassive   Category = "passive"
	CategoryDetractor Category = "detractor"
)

// Classify maps a score to its eNPS category: 9-10 promoter, 7-8 passive,
// 0-6 detractor. Scores outside [0, 10] fail with an invalid error.
func Classify(score int) (Category, error) {
	if score < 0 || score > 10 {
		return "", NewInvalidError("score must be between 0 and 10")
	}
	switch {
	case score >= 9:
		return CategoryPromoter, nil
	case score >= 7:
		return CategoryPassive, nil
	default:
		return CategoryDetractor, nil
	}
}

// Summary holds aggregated eNPS figures for a set of scores.
// Promoters+Passives+Detractors always equals Count; ENPS is in [-100, 100].
type Summary struct {
	Count      int `json:"count"`
	Promoters  int `json:"promoters"`
	Passives   int `json:"passives"`
	Detractors int `json:"detractors"`
	ENPS       int `json:"enps"`
}

// ComputeENPS aggregates scores into a Summary in a single pass.
// The empty input is a defined identity: all counts zero, ENPS zero.
// Out-of-range scores are skipped entirely, keeping the partition invariant
// unconditional even for unvalidated input.
// ENPS = round(((promoters - detractors) / count) * 100), rounding half away
// from zero.
func ComputeENPS(scores []int) Summary {
	var s Summary
	for _, v := range scores {
		cat, err := Classify(v)
		if err != nil {
			continue
		}
		s.Count++
		switch cat {
		case CategoryPromoter:
			s.Promoters++
		case CategoryPassive:
			s.Passives++
		case CategoryDetractor:
			s.Detractors++
		}
	}
	if s.Count == 0 {
		return s
	}
	s.ENPS = int(math.Round(float64(s.Promoters-s.Detractors) / float64(s.Count) * 100))
	return s
}

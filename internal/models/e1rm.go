package models

import "math"

// EstimateOneRM computes an Epley-style estimated one-rep max. A single-rep
// set is taken at face value; multi-rep sets extrapolate with reps/30.
func EstimateOneRM(weight float64, reps int) float64 {
	if reps == 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}

// BestOneRM returns the exercise's maximum estimated 1RM across completed
// working sets, rounded to the nearest integer. Sets with non-positive
// weight or reps carry no PR information and are skipped. Returns 0 when no
// set qualifies.
func (e *ExercisePlan) BestOneRM() float64 {
	var best float64
	for _, set := range e.Sets {
		if set.Kind != SetWorking || !set.Completed {
			continue
		}
		if set.Weight <= 0 || set.Reps <= 0 {
			continue
		}
		if est := EstimateOneRM(set.Weight, set.Reps); est > best {
			best = est
		}
	}
	return math.Round(best)
}

// PercentOfPR expresses a weight as a whole percentage of the given PR.
// Returns 0 when no PR is known.
func PercentOfPR(weight, pr float64) int {
	if pr <= 0 {
		return 0
	}
	return int(math.Round(weight / pr * 100))
}

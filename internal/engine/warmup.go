package engine

import (
	"context"
	"math"

	"github.com/claude/ironlog/internal/models"
)

// WarmupAdvisor produces suggested warm-up sets for an exercise. Suggested
// sets arrive uncompleted with kind warmup; the engine replaces any existing
// warmups with them wholesale.
type WarmupAdvisor interface {
	Suggest(ctx context.Context, exerciseName string, targetWeight, currentPR float64) ([]models.SetRecord, error)
}

// RampAdvisor is the built-in warm-up strategy: a three-set ramp at 50%,
// 70% and 90% of the target weight for 10, 5 and 1 reps. The first set gets
// blood flowing, the second acclimates to load, the single at 90% primes
// the nervous system without accumulating fatigue.
type RampAdvisor struct{}

var _ WarmupAdvisor = RampAdvisor{}

var rampSteps = []struct {
	fraction float64
	reps     int
}{
	{0.5, 10},
	{0.7, 5},
	{0.9, 1},
}

// Suggest implements WarmupAdvisor. Weights are rounded to the nearest
// whole unit and clamped at zero for very light targets.
func (RampAdvisor) Suggest(_ context.Context, _ string, targetWeight, _ float64) ([]models.SetRecord, error) {
	sets := make([]models.SetRecord, 0, len(rampSteps))
	for _, step := range rampSteps {
		sets = append(sets, models.SetRecord{
			ID:     models.NewID(),
			Kind:   models.SetWarmup,
			Weight: max(math.Round(targetWeight*step.fraction), 0),
			Reps:   step.reps,
		})
	}
	return sets, nil
}

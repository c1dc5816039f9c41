package models

// DefaultTemplates returns the starter templates seeded into an empty
// template store on first run.
func DefaultTemplates() []WorkoutTemplate {
	return []WorkoutTemplate{
		{
			ID:   "tpl-push",
			Name: "Upper Push",
			Exercises: []ExerciseTemplate{
				{ID: "te-1", Name: "Barbell Bench Press", DefaultSets: 5, DefaultReps: 5},
				{ID: "te-2", Name: "Dumbbell Shoulder Press", DefaultSets: 4, DefaultReps: 8},
				{ID: "te-3", Name: "Cable Triceps Pushdown", DefaultSets: 3, DefaultReps: 12},
			},
		},
		{
			ID:   "tpl-pull",
			Name: "Upper Pull",
			Exercises: []ExerciseTemplate{
				{ID: "te-4", Name: "Pull-Up", DefaultSets: 4, DefaultReps: 8},
				{ID: "te-5", Name: "Barbell Row", DefaultSets: 4, DefaultReps: 8},
				{ID: "te-6", Name: "Dumbbell Curl", DefaultSets: 3, DefaultReps: 12},
			},
		},
	}
}

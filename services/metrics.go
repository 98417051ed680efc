package services

import (
	"dailydiet/models"
	"dailydiet/utils"
)

// Metrics is the adherence snapshot for one session.
type Metrics struct {
	TotalMeals             int     `json:"totalMeals"`
	MealsInsideOfDiet      int     `json:"mealsInsideOfDiet"`
	MealsOutsideOfDiet     int     `json:"mealsOutsideOfDiet"`
	BestStreakInsideOfDiet int     `json:"bestStreakInsideOfDiet"`
	DietAdherenceRatio     float64 `json:"dietAdherenceRatio"`
}

// ComputeMetrics expects meals in insertion order; the streak is meaningless otherwise.
func ComputeMetrics(meals []models.Meal) Metrics {
	var current, best, inside, outside int

	for _, m := range meals {
		if m.IsUnderDiet {
			inside++
			current++
			if current > best {
				best = current
			}
			continue
		}
		outside++
		current = 0
	}

	total := len(meals)
	ratio := 0.0
	if total > 0 {
		ratio = utils.Round2(float64(inside) / float64(total) * 100)
	}

	return Metrics{
		TotalMeals:             total,
		MealsInsideOfDiet:      inside,
		MealsOutsideOfDiet:     outside,
		BestStreakInsideOfDiet: best,
		DietAdherenceRatio:     ratio,
	}
}

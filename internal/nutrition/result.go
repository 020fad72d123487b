// Package nutrition turns a food diary transcript into structured calorie
// and macronutrient estimates using a chat-completion model.
package nutrition

import (
	"fmt"
	"math"
	"strings"
)

// FoodItem is one food the model identified.
type FoodItem struct {
	Food     string  `json:"food"`
	Grams    float64 `json:"grams"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// Result is the model's breakdown. Totals are expected to equal the sum of
// the per-item fields; that is only checked when validation is enabled.
type Result struct {
	Foods         []FoodItem `json:"foods"`
	TotalCalories float64    `json:"totalCalories"`
	TotalProtein  float64    `json:"totalProtein"`
	TotalFat      float64    `json:"totalFat"`
	TotalCarbs    float64    `json:"totalCarbs"`
}

// Rounding slack per food item when comparing totals.
const (
	calorieTolerance = 1.0
	macroTolerance   = 0.15
)

// Validate checks for negative values and that the totals match the item
// sums within rounding tolerance.
func (r *Result) Validate() error {
	var problems []string

	var cal, protein, fat, carbs float64
	for i, f := range r.Foods {
		if f.Grams < 0 || f.Calories < 0 || f.Protein < 0 || f.Fat < 0 || f.Carbs < 0 {
			problems = append(problems, fmt.Sprintf("foods[%d] %q has a negative value", i, f.Food))
		}
		cal += f.Calories
		protein += f.Protein
		fat += f.Fat
		carbs += f.Carbs
	}

	n := float64(max(len(r.Foods), 1))
	check := func(name string, sum, total, tol float64) {
		if math.Abs(sum-total) > tol*n {
			problems = append(problems, fmt.Sprintf("%s is %g but items sum to %g", name, total, sum))
		}
	}
	check("totalCalories", cal, r.TotalCalories, calorieTolerance)
	check("totalProtein", protein, r.TotalProtein, macroTolerance)
	check("totalFat", fat, r.TotalFat, macroTolerance)
	check("totalCarbs", carbs, r.TotalCarbs, macroTolerance)

	if len(problems) > 0 {
		return fmt.Errorf("inconsistent nutrition result: %s", strings.Join(problems, "; "))
	}
	return nil
}

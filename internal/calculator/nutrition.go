package calculator

import (
	"errors"
	"fmt"
	"math"
)

// ErrIncompleteProfile is returned by NutritionInputs.Validate when a field is
// missing or holds an unknown value.
var ErrIncompleteProfile = errors.New("please fill in all pet details")

type PetType string

const (
	Dog PetType = "dog"
	Cat PetType = "cat"
)

type AgeClass string

const (
	Puppy  AgeClass = "puppy"
	Adult  AgeClass = "adult"
	Senior AgeClass = "senior"
)

type ActivityLevel string

const (
	ActivityLow      ActivityLevel = "low"
	ActivityModerate ActivityLevel = "moderate"
	ActivityHigh     ActivityLevel = "high"
)

type HealthCondition string

const (
	Healthy     HealthCondition = "healthy"
	Overweight  HealthCondition = "overweight"
	Underweight HealthCondition = "underweight"
	Special     HealthCondition = "special"
)

// Energy density of macronutrients in kcal per gram.
const (
	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
	kcalPerGramCarbs   = 4
)

// Share of daily calories per macronutrient.
const (
	proteinShare = 0.25
	fatShare     = 0.15
	carbsShare   = 0.45
)

var (
	baseCaloriesPerKg = map[PetType]float64{Dog: 70, Cat: 60}
	ageFactors        = map[AgeClass]float64{Puppy: 2.0, Adult: 1.6, Senior: 1.4}
	activityFactors   = map[ActivityLevel]float64{ActivityLow: 1.2, ActivityModerate: 1.6, ActivityHigh: 2.0}
	healthFactors     = map[HealthCondition]float64{Healthy: 1.0, Overweight: 0.8, Underweight: 1.2, Special: 1.1}
)

// NutritionInputs describe one pet.
type NutritionInputs struct {
	PetType         PetType         `json:"petType"`
	Weight          float64         `json:"weight"` // kg
	Age             AgeClass        `json:"age"`
	ActivityLevel   ActivityLevel   `json:"activityLevel"`
	HealthCondition HealthCondition `json:"healthCondition"`
}

// Validate checks that every field is present and known. The error wraps
// ErrIncompleteProfile and names the first offending field.
func (in NutritionInputs) Validate() error {
	if _, ok := baseCaloriesPerKg[in.PetType]; !ok {
		return fmt.Errorf("%w: pet type", ErrIncompleteProfile)
	}
	if !(in.Weight > 0) {
		return fmt.Errorf("%w: weight", ErrIncompleteProfile)
	}
	if _, ok := ageFactors[in.Age]; !ok {
		return fmt.Errorf("%w: age", ErrIncompleteProfile)
	}
	if _, ok := activityFactors[in.ActivityLevel]; !ok {
		return fmt.Errorf("%w: activity level", ErrIncompleteProfile)
	}
	if _, ok := healthFactors[in.HealthCondition]; !ok {
		return fmt.Errorf("%w: health condition", ErrIncompleteProfile)
	}
	return nil
}

// NutritionResult is a daily feeding plan. Macronutrients are in grams.
type NutritionResult struct {
	DailyCalories   float64  `json:"dailyCalories"`
	Protein         float64  `json:"protein"`
	Fat             float64  `json:"fat"`
	Carbs           float64  `json:"carbs"`
	Fiber           float64  `json:"fiber"`
	FeedingTimes    int      `json:"feedingTimes"`
	PortionSize     float64  `json:"portionSize"`
	Recommendations []string `json:"recommendations"`
}

// CalculateNutrition derives daily calories with allometric scaling
// (base × weight^0.75) adjusted for age, activity and health, then splits them
// into macronutrients.
//
// Inputs are expected to have passed Validate. An unknown age, activity or
// health value contributes a factor of 1.
func CalculateNutrition(in NutritionInputs) NutritionResult {
	calories := baseCaloriesPerKg[in.PetType] * math.Pow(in.Weight, 0.75)
	calories *= factor(ageFactors, in.Age)
	calories *= factor(activityFactors, in.ActivityLevel)
	calories *= factor(healthFactors, in.HealthCondition)
	dailyCalories := math.Round(calories)

	feedingTimes := 2
	if in.Age == Puppy || in.Age == Senior {
		feedingTimes = 3
	}

	return NutritionResult{
		DailyCalories:   dailyCalories,
		Protein:         math.Round(dailyCalories * proteinShare / kcalPerGramProtein),
		Fat:             math.Round(dailyCalories * fatShare / kcalPerGramFat),
		Carbs:           math.Round(dailyCalories * carbsShare / kcalPerGramCarbs),
		Fiber:           in.Weight * 2,
		FeedingTimes:    feedingTimes,
		PortionSize:     math.Round(dailyCalories / float64(feedingTimes)),
		Recommendations: recommendations(in),
	}
}

func factor[K comparable](table map[K]float64, key K) float64 {
	if f, ok := table[key]; ok {
		return f
	}
	return 1
}

func recommendations(in NutritionInputs) []string {
	var recs []string

	switch in.Age {
	case Puppy:
		recs = append(recs, "Choose a growth formula rich in protein, calcium and DHA.")
	case Senior:
		recs = append(recs, "Prefer easily digestible food with joint support such as glucosamine.")
	}

	switch in.HealthCondition {
	case Overweight:
		recs = append(recs, "Cut back on treats and pick a low-fat, high-fiber recipe.")
	case Underweight:
		recs = append(recs, "Increase portions gradually with an energy-dense recipe.")
	case Special:
		recs = append(recs, "Ask your veterinarian before changing the diet.")
	}

	switch in.ActivityLevel {
	case ActivityHigh:
		recs = append(recs, "Keep fresh water available and add a snack around exercise.")
	case ActivityLow:
		recs = append(recs, "Plan daily walks or play sessions to keep weight in check.")
	}

	if len(recs) == 0 {
		recs = append(recs, "Keep the current routine and weigh your pet monthly.")
	}
	return recs
}

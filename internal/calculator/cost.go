package calculator

import (
	"errors"
	"fmt"
)

// ErrWeightOutOfRange is returned by CalculateCost for weights outside (0, 100] kg.
var ErrWeightOutOfRange = errors.New("pet weight must be greater than 0 and at most 100 kg")

const (
	MaxPetWeight = 100.0 // kg

	gramsPerKgPerDay   = 25
	freshCostPer100g   = 18
	dryCostPer100g     = 12
	daysPerYear        = 365
	vetSavingsFraction = 0.3
)

// CostCalculation compares fresh and dry food spending for one pet.
type CostCalculation struct {
	PetWeight           float64 `json:"petWeight"`
	DailyPortion        float64 `json:"dailyPortion"` // grams
	FreshFoodCost       float64 `json:"freshFoodCost"`
	DryFoodCost         float64 `json:"dryFoodCost"`
	MonthlyFreshFood    float64 `json:"monthlyFreshFood"`
	MonthlyDryFood      float64 `json:"monthlyDryFood"`
	YearlyFreshFood     float64 `json:"yearlyFreshFood"`
	YearlyDryFood       float64 `json:"yearlyDryFood"`
	PotentialVetSavings float64 `json:"potentialVetSavings"`
}

// CalculateCost projects daily, monthly and yearly food spending for a pet of
// the given weight in kg.
func CalculateCost(weight float64) (CostCalculation, error) {
	if weight <= 0 || weight > MaxPetWeight {
		return CostCalculation{}, fmt.Errorf("%w: got %v", ErrWeightOutOfRange, weight)
	}

	dailyPortion := weight * gramsPerKgPerDay
	fresh := dailyPortion / 100 * freshCostPer100g
	dry := dailyPortion / 100 * dryCostPer100g
	yearlyFresh := fresh * daysPerYear

	return CostCalculation{
		PetWeight:           weight,
		DailyPortion:        dailyPortion,
		FreshFoodCost:       fresh,
		DryFoodCost:         dry,
		MonthlyFreshFood:    fresh * DaysPerMonth,
		MonthlyDryFood:      dry * DaysPerMonth,
		YearlyFreshFood:     yearlyFresh,
		YearlyDryFood:       dry * daysPerYear,
		PotentialVetSavings: yearlyFresh * vetSavingsFraction,
	}, nil
}

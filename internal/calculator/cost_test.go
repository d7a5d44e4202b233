package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name         string
		weight       float64
		wantErr      bool
		validateFunc func(t *testing.T, c CostCalculation)
	}{
		{
			name:   "ten kilogram dog",
			weight: 10,
			validateFunc: func(t *testing.T, c CostCalculation) {
				checks := []struct {
					field     string
					got, want float64
				}{
					{"DailyPortion", c.DailyPortion, 250},
					{"FreshFoodCost", c.FreshFoodCost, 45},
					{"DryFoodCost", c.DryFoodCost, 30},
					{"MonthlyFreshFood", c.MonthlyFreshFood, 1350},
					{"MonthlyDryFood", c.MonthlyDryFood, 900},
					{"YearlyFreshFood", c.YearlyFreshFood, 16425},
					{"YearlyDryFood", c.YearlyDryFood, 10950},
					{"PotentialVetSavings", c.PotentialVetSavings, 4927.5},
				}
				for _, ch := range checks {
					if math.Abs(ch.got-ch.want) > 0.01 {
						t.Errorf("%s = %v, want %v", ch.field, ch.got, ch.want)
					}
				}
			},
		},
		{
			name:   "upper bound is accepted",
			weight: 100,
			validateFunc: func(t *testing.T, c CostCalculation) {
				if c.DailyPortion != 2500 {
					t.Errorf("DailyPortion = %v, want 2500", c.DailyPortion)
				}
			},
		},
		{
			name:   "tiny pet is accepted",
			weight: 0.1,
			validateFunc: func(t *testing.T, c CostCalculation) {
				if math.Abs(c.DailyPortion-2.5) > 1e-9 {
					t.Errorf("DailyPortion = %v, want 2.5", c.DailyPortion)
				}
			},
		},
		{name: "zero weight", weight: 0, wantErr: true},
		{name: "negative weight", weight: -5, wantErr: true},
		{name: "above maximum", weight: 101, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := CalculateCost(tt.weight)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CalculateCost(%v) error = %v, wantErr %v", tt.weight, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrWeightOutOfRange) {
					t.Errorf("error = %v, want ErrWeightOutOfRange", err)
				}
				return
			}
			if c.PetWeight != tt.weight {
				t.Errorf("PetWeight = %v, want %v", c.PetWeight, tt.weight)
			}
			tt.validateFunc(t, c)
		})
	}
}

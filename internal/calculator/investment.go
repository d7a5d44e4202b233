// Package calculator holds the franchise investment, pet nutrition and food
// cost formulas. Every function is pure: inputs in, freshly built results out.
package calculator

import "strconv"

// Fixed business parameters for the investment model.
const (
	DaysPerMonth = 30
	// MarginShare is the share of revenue kept as gross profit.
	MarginShare = 0.3
)

// Scenario multipliers applied to sales volume by CompareScenarios.
const (
	ConservativeMultiplier = 0.7
	RealisticMultiplier    = 1.0
	OptimisticMultiplier   = 1.3
)

// RiskLevel is the qualitative risk tier of an investment.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// InvestmentInputs are the parameters of a single vending location.
// Money values share one currency; the multipliers are usually in (0, 2].
type InvestmentInputs struct {
	DailySales        float64 `json:"dailySales"`
	AveragePrice      float64 `json:"averagePrice"`
	MonthlyRent       float64 `json:"monthlyRent"`
	MonthlyUtilities  float64 `json:"monthlyUtilities"`
	InitialInvestment float64 `json:"initialInvestment"`
	LocationFactor    float64 `json:"locationFactor"`
	CompetitionLevel  float64 `json:"competitionLevel"`
	SeasonalFactor    float64 `json:"seasonalFactor"`
}

// InvestmentForm is InvestmentInputs as typed into a form, before normalization.
type InvestmentForm struct {
	DailySales        string `json:"dailySales"`
	AveragePrice      string `json:"averagePrice"`
	MonthlyRent       string `json:"monthlyRent"`
	MonthlyUtilities  string `json:"monthlyUtilities"`
	InitialInvestment string `json:"initialInvestment"`
	LocationFactor    string `json:"locationFactor"`
	CompetitionLevel  string `json:"competitionLevel"`
	SeasonalFactor    string `json:"seasonalFactor"`
}

// Inputs normalizes every field with ParseNumberOrZero.
func (f InvestmentForm) Inputs() InvestmentInputs {
	return InvestmentInputs{
		DailySales:        ParseNumberOrZero(f.DailySales),
		AveragePrice:      ParseNumberOrZero(f.AveragePrice),
		MonthlyRent:       ParseNumberOrZero(f.MonthlyRent),
		MonthlyUtilities:  ParseNumberOrZero(f.MonthlyUtilities),
		InitialInvestment: ParseNumberOrZero(f.InitialInvestment),
		LocationFactor:    ParseNumberOrZero(f.LocationFactor),
		CompetitionLevel:  ParseNumberOrZero(f.CompetitionLevel),
		SeasonalFactor:    ParseNumberOrZero(f.SeasonalFactor),
	}
}

// Form renders the inputs back into form fields, in their shortest form.
func (in InvestmentInputs) Form() InvestmentForm {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return InvestmentForm{
		DailySales:        f(in.DailySales),
		AveragePrice:      f(in.AveragePrice),
		MonthlyRent:       f(in.MonthlyRent),
		MonthlyUtilities:  f(in.MonthlyUtilities),
		InitialInvestment: f(in.InitialInvestment),
		LocationFactor:    f(in.LocationFactor),
		CompetitionLevel:  f(in.CompetitionLevel),
		SeasonalFactor:    f(in.SeasonalFactor),
	}
}

// DefaultInvestmentInputs are the values the franchise calculator starts with.
func DefaultInvestmentInputs() InvestmentInputs {
	return InvestmentInputs{
		DailySales:        50,
		AveragePrice:      180,
		MonthlyRent:       15000,
		MonthlyUtilities:  3000,
		InitialInvestment: 500000,
		LocationFactor:    1,
		CompetitionLevel:  0.8,
		SeasonalFactor:    1,
	}
}

// InvestmentResults are the metrics derived from InvestmentInputs.
type InvestmentResults struct {
	MonthlyRevenue     float64 `json:"monthlyRevenue"`
	MonthlyGrossProfit float64 `json:"monthlyGrossProfit"`
	MonthlyNetProfit   float64 `json:"monthlyNetProfit"`

	// PaybackMonths is 0 when the location never pays back; check PaysBack
	// before presenting it as a duration.
	PaybackMonths float64 `json:"paybackMonths"`
	PaysBack      bool    `json:"paysBack"`

	// AnnualROI is a percentage.
	AnnualROI float64 `json:"annualROI"`

	// BreakEvenPoint is the number of sales per month that covers rent and utilities.
	BreakEvenPoint        float64   `json:"breakEvenPoint"`
	RiskLevel             RiskLevel `json:"riskLevel"`
	ProjectedYearlyProfit float64   `json:"projectedYearlyProfit"`
}

// ScenarioComparison holds the same inputs projected under three sales scenarios.
type ScenarioComparison struct {
	Conservative InvestmentResults `json:"conservative"`
	Realistic    InvestmentResults `json:"realistic"`
	Optimistic   InvestmentResults `json:"optimistic"`
}

// CalculateInvestment projects the monthly economics of one location.
//
// Algorithm:
//   - adjusted daily sales = sales × location × competition × seasonal × scenario
//   - revenue = adjusted sales × price × 30, gross profit = 30% of revenue
//   - net profit = gross profit − rent − utilities
//   - payback = investment / net profit, or 0 when net profit is not positive
//   - ROI = net profit × 12 / investment × 100, or 0 without an investment
//   - break-even = fixed costs / (price × 0.3)
//
// Risk tiers are evaluated in order and the first match wins: low needs a
// payback of at most 8 months and ROI of at least 20%, medium at most 12 months
// and at least 15%, anything else is high.
func CalculateInvestment(in InvestmentInputs, scenarioMultiplier float64) InvestmentResults {
	adjustedDailySales := in.DailySales * in.LocationFactor * in.CompetitionLevel * in.SeasonalFactor * scenarioMultiplier

	monthlyRevenue := adjustedDailySales * in.AveragePrice * DaysPerMonth
	monthlyGrossProfit := monthlyRevenue * MarginShare
	monthlyNetProfit := monthlyGrossProfit - in.MonthlyRent - in.MonthlyUtilities

	var paybackMonths float64
	paysBack := monthlyNetProfit > 0
	if paysBack {
		paybackMonths = in.InitialInvestment / monthlyNetProfit
	}

	var annualROI float64
	if in.InitialInvestment > 0 {
		annualROI = (monthlyNetProfit * 12 / in.InitialInvestment) * 100
	}

	breakEvenPoint := (in.MonthlyRent + in.MonthlyUtilities) / (in.AveragePrice * MarginShare)

	return InvestmentResults{
		MonthlyRevenue:        monthlyRevenue,
		MonthlyGrossProfit:    monthlyGrossProfit,
		MonthlyNetProfit:      monthlyNetProfit,
		PaybackMonths:         paybackMonths,
		PaysBack:              paysBack,
		AnnualROI:             annualROI,
		BreakEvenPoint:        breakEvenPoint,
		RiskLevel:             riskLevel(paybackMonths, annualROI),
		ProjectedYearlyProfit: monthlyNetProfit * 12,
	}
}

func riskLevel(paybackMonths, annualROI float64) RiskLevel {
	switch {
	case paybackMonths <= 8 && annualROI >= 20:
		return RiskLow
	case paybackMonths <= 12 && annualROI >= 15:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// CompareScenarios runs CalculateInvestment with the conservative, realistic
// and optimistic multipliers. The three runs share nothing but the inputs.
func CompareScenarios(in InvestmentInputs) ScenarioComparison {
	return ScenarioComparison{
		Conservative: CalculateInvestment(in, ConservativeMultiplier),
		Realistic:    CalculateInvestment(in, RealisticMultiplier),
		Optimistic:   CalculateInvestment(in, OptimisticMultiplier),
	}
}

// List returns the scenarios from conservative to optimistic.
func (c ScenarioComparison) List() []InvestmentResults {
	return []InvestmentResults{c.Conservative, c.Realistic, c.Optimistic}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"connectrpc.com/connect"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/petvend/site/internal/calculator"
	"github.com/petvend/site/internal/rpc"
	"github.com/petvend/site/internal/service"
)

var (
	calcServer string
	calcJSON   bool

	investmentForm calculator.InvestmentForm
	scenario       string

	nutritionReq rpc.CalculateNutritionRequest
	costWeight   string
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run a calculator",
	Long: `Runs the franchise, nutrition and food cost calculators locally, or against
a running server with --server.

Examples:
  petvend calc investment --daily-sales 60 --initial-investment 400000
  petvend calc scenarios --json
  petvend calc nutrition --pet-type dog --weight 10 --age adult --activity moderate --health healthy
  petvend calc cost --weight 12 --server http://localhost:8080`,
}

var calcInvestmentCmd = &cobra.Command{
	Use:   "investment",
	Short: "Project the monthly economics of one location",
	RunE: func(cmd *cobra.Command, args []string) error {
		multiplier, err := scenarioMultiplier(scenario)
		if err != nil {
			return err
		}
		resp, err := calculatorService().CalculateInvestment(cmd.Context(), connect.NewRequest(&rpc.CalculateInvestmentRequest{
			Form:               investmentForm,
			ScenarioMultiplier: multiplier,
		}))
		if err != nil {
			return err
		}
		if calcJSON {
			return writeJSON(cmd.OutOrStdout(), resp.Msg)
		}
		return writeTable(cmd.OutOrStdout(), []string{"", scenario}, investmentRows(resp.Msg.Results))
	},
}

var calcScenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Compare conservative, realistic and optimistic projections",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := calculatorService().CompareScenarios(cmd.Context(), connect.NewRequest(&rpc.CompareScenariosRequest{
			Form: investmentForm,
		}))
		if err != nil {
			return err
		}
		if calcJSON {
			return writeJSON(cmd.OutOrStdout(), resp.Msg)
		}

		s := resp.Msg.Scenarios
		cons, mid, opt := investmentRows(s.Conservative), investmentRows(s.Realistic), investmentRows(s.Optimistic)
		rows := make([][]string, len(mid))
		for i := range mid {
			rows[i] = []string{mid[i][0], cons[i][1], mid[i][1], opt[i][1]}
		}
		return writeTable(cmd.OutOrStdout(), []string{"", "conservative", "realistic", "optimistic"}, rows)
	},
}

var calcNutritionCmd = &cobra.Command{
	Use:   "nutrition",
	Short: "Build a daily feeding plan for a pet",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := calculatorService().CalculateNutrition(cmd.Context(), connect.NewRequest(&nutritionReq))
		if err != nil {
			return err
		}
		if calcJSON {
			return writeJSON(cmd.OutOrStdout(), resp.Msg)
		}

		r := resp.Msg.Result
		rows := [][]string{
			{"Daily calories", number(r.DailyCalories) + " kcal"},
			{"Protein", number(r.Protein) + " g"},
			{"Fat", number(r.Fat) + " g"},
			{"Carbs", number(r.Carbs) + " g"},
			{"Fiber", number(r.Fiber) + " g"},
			{"Feedings per day", strconv.Itoa(r.FeedingTimes)},
			{"Portion", number(r.PortionSize) + " kcal"},
		}
		if err := writeTable(cmd.OutOrStdout(), []string{"", "per day"}, rows); err != nil {
			return err
		}
		for _, rec := range r.Recommendations {
			fmt.Fprintln(cmd.OutOrStdout(), "  •", rec)
		}
		return nil
	},
}

var calcCostCmd = &cobra.Command{
	Use:   "cost",
	Short: "Compare fresh and dry food costs for a pet",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := calculatorService().CalculateCost(cmd.Context(), connect.NewRequest(&rpc.CalculateCostRequest{
			Weight: costWeight,
		}))
		if err != nil {
			return err
		}
		if calcJSON {
			return writeJSON(cmd.OutOrStdout(), resp.Msg)
		}

		r := resp.Msg.Result
		rows := [][]string{
			{"Daily portion", number(r.DailyPortion) + " g", ""},
			{"Per day", number(r.FreshFoodCost), number(r.DryFoodCost)},
			{"Per month", number(r.MonthlyFreshFood), number(r.MonthlyDryFood)},
			{"Per year", number(r.YearlyFreshFood), number(r.YearlyDryFood)},
			{"Vet savings per year", number(r.PotentialVetSavings), ""},
		}
		return writeTable(cmd.OutOrStdout(), []string{"", "fresh", "dry"}, rows)
	},
}

func init() {
	calcCmd.PersistentFlags().StringVar(&calcServer, "server", "", "base URL of a running petvend server; calculates locally when empty")
	calcCmd.PersistentFlags().BoolVar(&calcJSON, "json", false, "print the response as JSON")

	defaults := calculator.DefaultInvestmentInputs().Form()
	for _, cmd := range []*cobra.Command{calcInvestmentCmd, calcScenariosCmd} {
		f := cmd.Flags()
		f.StringVar(&investmentForm.DailySales, "daily-sales", defaults.DailySales, "sales per day")
		f.StringVar(&investmentForm.AveragePrice, "average-price", defaults.AveragePrice, "average price per sale")
		f.StringVar(&investmentForm.MonthlyRent, "monthly-rent", defaults.MonthlyRent, "rent per month")
		f.StringVar(&investmentForm.MonthlyUtilities, "monthly-utilities", defaults.MonthlyUtilities, "utilities per month")
		f.StringVar(&investmentForm.InitialInvestment, "initial-investment", defaults.InitialInvestment, "initial investment")
		f.StringVar(&investmentForm.LocationFactor, "location-factor", defaults.LocationFactor, "location quality multiplier")
		f.StringVar(&investmentForm.CompetitionLevel, "competition-level", defaults.CompetitionLevel, "competition multiplier")
		f.StringVar(&investmentForm.SeasonalFactor, "seasonal-factor", defaults.SeasonalFactor, "seasonal multiplier")
	}
	calcInvestmentCmd.Flags().StringVar(&scenario, "scenario", "realistic", "conservative, realistic or optimistic")

	f := calcNutritionCmd.Flags()
	f.StringVar(&nutritionReq.PetType, "pet-type", "", "dog or cat")
	f.StringVar(&nutritionReq.Weight, "weight", "", "weight in kg")
	f.StringVar(&nutritionReq.Age, "age", "", "puppy, adult or senior")
	f.StringVar(&nutritionReq.ActivityLevel, "activity", "", "low, moderate or high")
	f.StringVar(&nutritionReq.HealthCondition, "health", "", "healthy, overweight, underweight or special")

	calcCostCmd.Flags().StringVar(&costWeight, "weight", "", "weight in kg")
	_ = calcCostCmd.MarkFlagRequired("weight")

	calcCmd.AddCommand(calcInvestmentCmd, calcScenariosCmd, calcNutritionCmd, calcCostCmd)
}

// calculatorAPI is implemented by both the in-process service and the RPC client.
type calculatorAPI interface {
	CalculateInvestment(context.Context, *connect.Request[rpc.CalculateInvestmentRequest]) (*connect.Response[rpc.CalculateInvestmentResponse], error)
	CompareScenarios(context.Context, *connect.Request[rpc.CompareScenariosRequest]) (*connect.Response[rpc.CompareScenariosResponse], error)
	CalculateNutrition(context.Context, *connect.Request[rpc.CalculateNutritionRequest]) (*connect.Response[rpc.CalculateNutritionResponse], error)
	CalculateCost(context.Context, *connect.Request[rpc.CalculateCostRequest]) (*connect.Response[rpc.CalculateCostResponse], error)
}

func calculatorService() calculatorAPI {
	if calcServer != "" {
		return rpc.NewCalculatorServiceClient(http.DefaultClient, calcServer)
	}
	return service.NewCalculatorService(nil, nil, logger)
}

func scenarioMultiplier(name string) (float64, error) {
	switch name {
	case "conservative":
		return calculator.ConservativeMultiplier, nil
	case "realistic", "":
		return calculator.RealisticMultiplier, nil
	case "optimistic":
		return calculator.OptimisticMultiplier, nil
	}
	return 0, fmt.Errorf("unknown scenario %q", name)
}

func investmentRows(r calculator.InvestmentResults) [][]string {
	payback := "never"
	if r.PaysBack {
		payback = number(r.PaybackMonths) + " months"
	}
	return [][]string{
		{"Monthly revenue", number(r.MonthlyRevenue)},
		{"Monthly gross profit", number(r.MonthlyGrossProfit)},
		{"Monthly net profit", number(r.MonthlyNetProfit)},
		{"Payback", payback},
		{"Annual ROI", number(r.AnnualROI) + "%"},
		{"Break-even sales per month", number(r.BreakEvenPoint)},
		{"Projected yearly profit", number(r.ProjectedYearlyProfit)},
		{"Risk", string(r.RiskLevel)},
	}
}

// number formats v with thousands separators and up to two decimals.
func number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	if v == math.Trunc(v) {
		return humanize.FormatFloat("#,###.", v)
	}
	return humanize.FormatFloat("#,###.##", v)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col > 0 {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

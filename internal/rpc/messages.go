package rpc

import (
	"github.com/petvend/site/internal/calculator"
	"github.com/petvend/site/internal/models"
)

type CalculateInvestmentRequest struct {
	Form calculator.InvestmentForm `json:"form"`
	// ScenarioMultiplier defaults to 1 when omitted or zero.
	ScenarioMultiplier float64 `json:"scenarioMultiplier,omitempty"`
}

type CalculateInvestmentResponse struct {
	Inputs  calculator.InvestmentInputs  `json:"inputs"`
	Results calculator.InvestmentResults `json:"results"`
}

type CompareScenariosRequest struct {
	Form calculator.InvestmentForm `json:"form"`
}

type CompareScenariosResponse struct {
	Inputs    calculator.InvestmentInputs   `json:"inputs"`
	Scenarios calculator.ScenarioComparison `json:"scenarios"`
}

type CalculateNutritionRequest struct {
	PetType         string `json:"petType"`
	Weight          string `json:"weight"`
	Age             string `json:"age"`
	ActivityLevel   string `json:"activityLevel"`
	HealthCondition string `json:"healthCondition"`
}

type CalculateNutritionResponse struct {
	Result calculator.NutritionResult `json:"result"`
}

type CalculateCostRequest struct {
	Weight string `json:"weight"`
}

type CalculateCostResponse struct {
	Result calculator.CostCalculation `json:"result"`
}

type SubmitLeadRequest struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Budget  string `json:"budget"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

type SubmitLeadResponse struct {
	ID string `json:"id"`
}

type ListLeadsRequest struct {
	Kind  string `json:"kind,omitempty"`
	Since int64  `json:"since,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type ListLeadsResponse struct {
	Leads  []*models.Lead          `json:"leads"`
	Counts map[models.LeadKind]int `json:"counts"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

// UserFromModel converts a stored user to its wire form.
func UserFromModel(u *models.User) User {
	return User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

package rpc

const (
	CalculatorServiceName = "petvend.v1.CalculatorService"
	LeadServiceName       = "petvend.v1.LeadService"
	AuthServiceName       = "petvend.v1.AuthService"
)

// Procedure paths, as mounted on the HTTP router.
const (
	CalculateInvestmentProcedure = "/" + CalculatorServiceName + "/CalculateInvestment"
	CompareScenariosProcedure    = "/" + CalculatorServiceName + "/CompareScenarios"
	CalculateNutritionProcedure  = "/" + CalculatorServiceName + "/CalculateNutrition"
	CalculateCostProcedure       = "/" + CalculatorServiceName + "/CalculateCost"

	SubmitLeadProcedure = "/" + LeadServiceName + "/SubmitLead"
	ListLeadsProcedure  = "/" + LeadServiceName + "/ListLeads"

	LoginProcedure          = "/" + AuthServiceName + "/Login"
	GetCurrentUserProcedure = "/" + AuthServiceName + "/GetCurrentUser"
)

// PublicProcedures can be called without an admin token.
var PublicProcedures = map[string]bool{
	CalculateInvestmentProcedure: true,
	CompareScenariosProcedure:    true,
	CalculateNutritionProcedure:  true,
	CalculateCostProcedure:       true,
	SubmitLeadProcedure:          true,
	LoginProcedure:               true,
}

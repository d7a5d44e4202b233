package rpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// CalculatorServiceClient calls the calculator procedures of a PetVend server.
type CalculatorServiceClient struct {
	calculateInvestment *connect.Client[CalculateInvestmentRequest, CalculateInvestmentResponse]
	compareScenarios    *connect.Client[CompareScenariosRequest, CompareScenariosResponse]
	calculateNutrition  *connect.Client[CalculateNutritionRequest, CalculateNutritionResponse]
	calculateCost       *connect.Client[CalculateCostRequest, CalculateCostResponse]
}

// NewCalculatorServiceClient returns a client for the server at baseURL,
// e.g. http://localhost:8080.
func NewCalculatorServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CalculatorServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = ClientOptions(opts...)
	return &CalculatorServiceClient{
		calculateInvestment: connect.NewClient[CalculateInvestmentRequest, CalculateInvestmentResponse](httpClient, baseURL+CalculateInvestmentProcedure, opts...),
		compareScenarios:    connect.NewClient[CompareScenariosRequest, CompareScenariosResponse](httpClient, baseURL+CompareScenariosProcedure, opts...),
		calculateNutrition:  connect.NewClient[CalculateNutritionRequest, CalculateNutritionResponse](httpClient, baseURL+CalculateNutritionProcedure, opts...),
		calculateCost:       connect.NewClient[CalculateCostRequest, CalculateCostResponse](httpClient, baseURL+CalculateCostProcedure, opts...),
	}
}

func (c *CalculatorServiceClient) CalculateInvestment(ctx context.Context, req *connect.Request[CalculateInvestmentRequest]) (*connect.Response[CalculateInvestmentResponse], error) {
	return c.calculateInvestment.CallUnary(ctx, req)
}

func (c *CalculatorServiceClient) CompareScenarios(ctx context.Context, req *connect.Request[CompareScenariosRequest]) (*connect.Response[CompareScenariosResponse], error) {
	return c.compareScenarios.CallUnary(ctx, req)
}

func (c *CalculatorServiceClient) CalculateNutrition(ctx context.Context, req *connect.Request[CalculateNutritionRequest]) (*connect.Response[CalculateNutritionResponse], error) {
	return c.calculateNutrition.CallUnary(ctx, req)
}

func (c *CalculatorServiceClient) CalculateCost(ctx context.Context, req *connect.Request[CalculateCostRequest]) (*connect.Response[CalculateCostResponse], error) {
	return c.calculateCost.CallUnary(ctx, req)
}

// LeadServiceClient calls the lead procedures of a PetVend server.
type LeadServiceClient struct {
	submitLead *connect.Client[SubmitLeadRequest, SubmitLeadResponse]
	listLeads  *connect.Client[ListLeadsRequest, ListLeadsResponse]
}

func NewLeadServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LeadServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = ClientOptions(opts...)
	return &LeadServiceClient{
		submitLead: connect.NewClient[SubmitLeadRequest, SubmitLeadResponse](httpClient, baseURL+SubmitLeadProcedure, opts...),
		listLeads:  connect.NewClient[ListLeadsRequest, ListLeadsResponse](httpClient, baseURL+ListLeadsProcedure, opts...),
	}
}

func (c *LeadServiceClient) SubmitLead(ctx context.Context, req *connect.Request[SubmitLeadRequest]) (*connect.Response[SubmitLeadResponse], error) {
	return c.submitLead.CallUnary(ctx, req)
}

func (c *LeadServiceClient) ListLeads(ctx context.Context, req *connect.Request[ListLeadsRequest]) (*connect.Response[ListLeadsResponse], error) {
	return c.listLeads.CallUnary(ctx, req)
}

// AuthServiceClient calls the auth procedures of a PetVend server.
type AuthServiceClient struct {
	login          *connect.Client[LoginRequest, LoginResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
}

func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = ClientOptions(opts...)
	return &AuthServiceClient{
		login:          connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+LoginProcedure, opts...),
		getCurrentUser: connect.NewClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL+GetCurrentUserProcedure, opts...),
	}
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

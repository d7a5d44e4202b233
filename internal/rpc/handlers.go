package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// CalculatorServiceHandler is implemented by the calculator service.
type CalculatorServiceHandler interface {
	CalculateInvestment(context.Context, *connect.Request[CalculateInvestmentRequest]) (*connect.Response[CalculateInvestmentResponse], error)
	CompareScenarios(context.Context, *connect.Request[CompareScenariosRequest]) (*connect.Response[CompareScenariosResponse], error)
	CalculateNutrition(context.Context, *connect.Request[CalculateNutritionRequest]) (*connect.Response[CalculateNutritionResponse], error)
	CalculateCost(context.Context, *connect.Request[CalculateCostRequest]) (*connect.Response[CalculateCostResponse], error)
}

// LeadServiceHandler is implemented by the lead service.
type LeadServiceHandler interface {
	SubmitLead(context.Context, *connect.Request[SubmitLeadRequest]) (*connect.Response[SubmitLeadResponse], error)
	ListLeads(context.Context, *connect.Request[ListLeadsRequest]) (*connect.Response[ListLeadsResponse], error)
}

// AuthServiceHandler is implemented by the auth service.
type AuthServiceHandler interface {
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
}

// NewCalculatorServiceHandler builds an HTTP handler for every calculator
// procedure. It returns the path prefix to mount the handler on.
func NewCalculatorServiceHandler(svc CalculatorServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	return "/" + CalculatorServiceName + "/", route(map[string]http.Handler{
		CalculateInvestmentProcedure: connect.NewUnaryHandler(CalculateInvestmentProcedure, svc.CalculateInvestment, opts...),
		CompareScenariosProcedure:    connect.NewUnaryHandler(CompareScenariosProcedure, svc.CompareScenarios, opts...),
		CalculateNutritionProcedure:  connect.NewUnaryHandler(CalculateNutritionProcedure, svc.CalculateNutrition, opts...),
		CalculateCostProcedure:       connect.NewUnaryHandler(CalculateCostProcedure, svc.CalculateCost, opts...),
	})
}

// NewLeadServiceHandler builds an HTTP handler for the lead procedures.
func NewLeadServiceHandler(svc LeadServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	return "/" + LeadServiceName + "/", route(map[string]http.Handler{
		SubmitLeadProcedure: connect.NewUnaryHandler(SubmitLeadProcedure, svc.SubmitLead, opts...),
		ListLeadsProcedure:  connect.NewUnaryHandler(ListLeadsProcedure, svc.ListLeads, opts...),
	})
}

// NewAuthServiceHandler builds an HTTP handler for the auth procedures.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	return "/" + AuthServiceName + "/", route(map[string]http.Handler{
		LoginProcedure:          connect.NewUnaryHandler(LoginProcedure, svc.Login, opts...),
		GetCurrentUserProcedure: connect.NewUnaryHandler(GetCurrentUserProcedure, svc.GetCurrentUser, opts...),
	})
}

func withCodec(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func route(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

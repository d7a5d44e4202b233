package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/petvend/site/internal/cache"
	"github.com/petvend/site/internal/calculator"
	"github.com/petvend/site/internal/metrics"
	"github.com/petvend/site/internal/rpc"
)

// Calculator names used as metric labels.
const (
	calcInvestment = "investment"
	calcScenarios  = "scenarios"
	calcNutrition  = "nutrition"
	calcCost       = "cost"
)

// CalculatorService implements the Connect CalculatorService.
// Requests are normalized before calculating, and responses are memoized in
// the result cache keyed by the normalized input.
type CalculatorService struct {
	cache   cache.Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

var _ rpc.CalculatorServiceHandler = (*CalculatorService)(nil)

// NewCalculatorService creates a CalculatorService. A nil cache disables
// memoization and a nil metrics skips instrumentation.
func NewCalculatorService(c cache.Cache, m *metrics.Metrics, logger *slog.Logger) *CalculatorService {
	if c == nil {
		c = cache.Nop{}
	}
	return &CalculatorService{cache: c, metrics: m, logger: logger}
}

// CalculateInvestment projects one location. A zero multiplier means the
// realistic scenario.
func (s *CalculatorService) CalculateInvestment(ctx context.Context, req *connect.Request[rpc.CalculateInvestmentRequest]) (*connect.Response[rpc.CalculateInvestmentResponse], error) {
	multiplier := req.Msg.ScenarioMultiplier
	if multiplier == 0 {
		multiplier = calculator.RealisticMultiplier
	}
	in := req.Msg.Form.Inputs()

	key := struct {
		Inputs     calculator.InvestmentInputs
		Multiplier float64
	}{in, multiplier}
	res, err := memoize(ctx, s, rpc.CalculateInvestmentProcedure, key, func() (*rpc.CalculateInvestmentResponse, error) {
		return &rpc.CalculateInvestmentResponse{
			Inputs:  in,
			Results: calculator.CalculateInvestment(in, multiplier),
		}, nil
	})
	s.metrics.ObserveCalculation(calcInvestment, outcome(err))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(res), nil
}

// CompareScenarios projects one location under all three scenarios.
func (s *CalculatorService) CompareScenarios(ctx context.Context, req *connect.Request[rpc.CompareScenariosRequest]) (*connect.Response[rpc.CompareScenariosResponse], error) {
	in := req.Msg.Form.Inputs()

	res, err := memoize(ctx, s, rpc.CompareScenariosProcedure, in, func() (*rpc.CompareScenariosResponse, error) {
		return &rpc.CompareScenariosResponse{
			Inputs:    in,
			Scenarios: calculator.CompareScenarios(in),
		}, nil
	})
	s.metrics.ObserveCalculation(calcScenarios, outcome(err))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(res), nil
}

// CalculateNutrition builds a feeding plan. Incomplete profiles are rejected
// with InvalidArgument and the prompt shown to the visitor.
func (s *CalculatorService) CalculateNutrition(ctx context.Context, req *connect.Request[rpc.CalculateNutritionRequest]) (*connect.Response[rpc.CalculateNutritionResponse], error) {
	in := NutritionInputs(req.Msg)

	res, err := memoize(ctx, s, rpc.CalculateNutritionProcedure, in, func() (*rpc.CalculateNutritionResponse, error) {
		if err := in.Validate(); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return &rpc.CalculateNutritionResponse{Result: calculator.CalculateNutrition(in)}, nil
	})
	s.metrics.ObserveCalculation(calcNutrition, outcome(err))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(res), nil
}

// CalculateCost compares fresh and dry food spending.
func (s *CalculatorService) CalculateCost(ctx context.Context, req *connect.Request[rpc.CalculateCostRequest]) (*connect.Response[rpc.CalculateCostResponse], error) {
	weight := calculator.ParseNumberOrZero(req.Msg.Weight)

	res, err := memoize(ctx, s, rpc.CalculateCostProcedure, weight, func() (*rpc.CalculateCostResponse, error) {
		result, err := calculator.CalculateCost(weight)
		if err != nil {
			if errors.Is(err, calculator.ErrWeightOutOfRange) {
				return nil, connect.NewError(connect.CodeInvalidArgument, err)
			}
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		return &rpc.CalculateCostResponse{Result: result}, nil
	})
	s.metrics.ObserveCalculation(calcCost, outcome(err))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(res), nil
}

// NutritionInputs normalizes a nutrition request the way the calculator form
// does: enum values are taken verbatim and the weight is coerced to a number.
func NutritionInputs(req *rpc.CalculateNutritionRequest) calculator.NutritionInputs {
	return calculator.NutritionInputs{
		PetType:         calculator.PetType(req.PetType),
		Weight:          calculator.ParseNumberOrZero(req.Weight),
		Age:             calculator.AgeClass(req.Age),
		ActivityLevel:   calculator.ActivityLevel(req.ActivityLevel),
		HealthCondition: calculator.HealthCondition(req.HealthCondition),
	}
}

// memoize returns the cached response for key or computes and stores it.
// Errors are never cached, and cache failures only log.
func memoize[T any](ctx context.Context, s *CalculatorService, procedure string, key any, compute func() (*T, error)) (*T, error) {
	cacheKey, err := cache.Key(procedure, key)
	if err != nil {
		s.logger.Warn("Skipping result cache", "procedure", procedure, "error", err)
		return compute()
	}

	data, ok, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		s.logger.Warn("Result cache lookup failed", "key", cacheKey, "error", err)
	}
	if ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			s.metrics.ObserveCacheLookup(true)
			return &cached, nil
		}
		s.logger.Warn("Discarding undecodable cache entry", "key", cacheKey)
	}
	s.metrics.ObserveCacheLookup(false)

	res, err := compute()
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(res)
	if err != nil {
		s.logger.Warn("Failed to encode result for cache", "procedure", procedure, "error", err)
		return res, nil
	}
	if err := s.cache.Set(ctx, cacheKey, data); err != nil {
		s.logger.Warn("Failed to store cached result", "key", cacheKey, "error", err)
	}
	return res, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return connect.CodeOf(err).String()
}

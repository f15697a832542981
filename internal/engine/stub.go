package engine

import (
	"context"

	"github.com/wildlens/gateway/internal/gateway"
)

// StubEngine returns a fixed prediction for every instance. It exists for
// local development against the gateway without a running engine.
type StubEngine struct {
	model string
}

func NewStubEngine(model string) *StubEngine {
	return &StubEngine{model: model}
}

func (e *StubEngine) Predict(_ context.Context, instances []gateway.Instance) ([]gateway.Result, error) {
	results := make([]gateway.Result, 0, len(instances))
	for _, inst := range instances {
		results = append(results, gateway.Result{
			FilePath:         inst.FilePath,
			Prediction:       "blank",
			PredictionScore:  1.0,
			PredictionSource: "stub",
		})
	}
	return results, nil
}

package gateway

import (
	"context"
)

type MockEngine struct {
	Results       []Result
	Err           error
	Calls         int
	LastInstances []Instance
}

func (m *MockEngine) Predict(ctx context.Context, instances []Instance) ([]Result, error) {
	m.Calls++
	m.LastInstances = instances
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Results != nil {
		return m.Results, nil
	}
	// Echo one success record per instance.
	results := make([]Result, 0, len(instances))
	for _, inst := range instances {
		results = append(results, Result{
			FilePath:   inst.FilePath,
			Prediction: "fox",
		})
	}
	return results, nil
}

package gateway

import "encoding/json"

// Instance is the canonical unit submitted to the prediction engine.
// Exactly one normalizer adapter constructs each instance; it is not
// mutated afterwards. Extra holds caller-supplied fields that are carried
// through for response reassembly and never sent to the engine.
type Instance struct {
	FilePath     string         `json:"filepath"`
	Country      string         `json:"country,omitempty"`
	Admin1Region string         `json:"admin1_region,omitempty"`
	Latitude     *float64       `json:"latitude,omitempty"`
	Longitude    *float64       `json:"longitude,omitempty"`
	Extra        map[string]any `json:"-"`
}

type Classifications struct {
	Classes []string  `json:"classes"`
	Scores  []float64 `json:"scores"`
}

type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Result is one engine output record, correlated to its instance by
// FilePath. A record carries either prediction fields or Failures.
// Extra holds fields re-attached by the assembler; they are folded into
// the JSON object next to the engine's own fields.
type Result struct {
	FilePath         string           `json:"filepath"`
	Prediction       string           `json:"prediction,omitempty"`
	PredictionScore  float64          `json:"prediction_score,omitempty"`
	PredictionSource string           `json:"prediction_source,omitempty"`
	Classifications  *Classifications `json:"classifications,omitempty"`
	Detections       []Detection      `json:"detections,omitempty"`
	Failures         []string         `json:"failures,omitempty"`
	Extra            map[string]any   `json:"-"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	base, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return base, nil
	}
	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if _, taken := merged[k]; !taken {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// PredictRequest is the wire shape shared by the filepath and base64
// endpoints. Records are kept as raw maps so caller-declared extra fields
// survive decoding.
type PredictRequest struct {
	Instances []map[string]any `json:"instances"`
}

// UploadMeta is the batch-wide metadata of an upload request. Unlike the
// base64 endpoint, location fields apply to every file in the batch.
type UploadMeta struct {
	Country      string
	Admin1Region string
	Latitude     *float64
	Longitude    *float64
}

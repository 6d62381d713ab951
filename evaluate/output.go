package evaluate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cwbudde/algo-doa/doa"
	"github.com/cwbudde/algo-doa/internal/fsutil"
)

// AlgorithmOutput is the persisted result of one algorithm, keyed by
// "tx_<i>_rx_<j>".
type AlgorithmOutput struct {
	SourceDirection    map[string]float64      `json:"source_direction"`
	DoA                map[string]doa.Envelope `json:"DoA"`
	EstimatedDirection map[string]float64      `json:"estimated_direction"`
	Error              map[string]float64      `json:"error"`
}

// Output is the persisted result document, keyed by algorithm name.
type Output map[string]*AlgorithmOutput

// Output converts the report to its persisted form.
func (r *Report) Output() Output {
	out := make(Output, len(r.Algorithms))
	for _, name := range r.Algorithms {
		a := &AlgorithmOutput{
			SourceDirection:    make(map[string]float64),
			DoA:                make(map[string]doa.Envelope),
			EstimatedDirection: make(map[string]float64),
			Error:              make(map[string]float64),
		}
		for _, res := range r.Results[name] {
			k := res.Key.String()
			a.SourceDirection[k] = res.TrueBearing
			a.DoA[k] = doa.Envelope{Response: res.Response}
			a.EstimatedDirection[k] = res.Estimated
			a.Error[k] = res.Error
		}
		out[name] = a
	}
	return out
}

// Save writes the report's output document to path in one atomic write.
func (r *Report) Save(path string) error {
	return fsutil.WriteJSONAtomic(path, r.Output())
}

// LoadOutput reads a document written by [Report.Save].
func LoadOutput(path string) (Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("evaluate: decoding %s: %w", path, err)
	}
	return out, nil
}

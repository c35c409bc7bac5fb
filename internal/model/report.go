package model

import "sort"

// MetalStatus tags the outcome of one metal's computation.
type MetalStatus string

const (
	StatusOK                  MetalStatus = "ok"
	StatusMalformed           MetalStatus = "malformed"
	StatusInsufficientHistory MetalStatus = "insufficient_history"
)

// MetalResult is either a decision record or a failure marker.
type MetalResult struct {
	Metal  Metal           `json:"metal"`
	Status MetalStatus     `json:"status"`
	Record *DecisionRecord `json:"record,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// OK reports whether the result carries a record.
func (r MetalResult) OK() bool { return r.Status == StatusOK && r.Record != nil }

// Report is the immutable snapshot of one update cycle.
type Report struct {
	Metals  []Metal               `json:"metals"`
	Results map[Metal]MetalResult `json:"results"`
}

// Records returns the successful decision records keyed by metal.
func (r *Report) Records() map[Metal]*DecisionRecord {
	out := make(map[Metal]*DecisionRecord, len(r.Results))
	for m, res := range r.Results {
		if res.OK() {
			out[m] = res.Record
		}
	}
	return out
}

// Failed returns the metals whose computation failed, in configured order.
func (r *Report) Failed() []Metal {
	var out []Metal
	for _, m := range r.Metals {
		if res, ok := r.Results[m]; ok && !res.OK() {
			out = append(out, m)
		}
	}
	return out
}

// Result returns the result for one metal.
func (r *Report) Result(m Metal) (MetalResult, bool) {
	res, ok := r.Results[m]
	return res, ok
}

// SortedMetals returns the metals in name order.
func SortedMetals(metals []Metal) []Metal {
	out := append([]Metal(nil), metals...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

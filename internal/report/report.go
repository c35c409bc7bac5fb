// Package report assembles per-metal decision records into one immutable
// snapshot and publishes it.
package report

import (
	"errors"
	"sync"

	"github.com/thivinthegreat/gold-rate-tracker/internal/history"
	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
	"github.com/thivinthegreat/gold-rate-tracker/internal/strategy"
)

// Input is one metal's loaded history, or the error that prevented loading it.
type Input struct {
	Metal  model.Metal
	Series *model.PriceSeries
	Err    error
}

// Assemble evaluates every metal in parallel and builds the report.
// A failure for one metal never affects another.
func Assemble(inputs []Input) *model.Report {
	slots := make([]model.MetalResult, len(inputs))

	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in Input) {
			defer wg.Done()
			slots[i] = evaluate(in)
		}(i, in)
	}
	wg.Wait()

	r := &model.Report{
		Metals:  make([]model.Metal, 0, len(inputs)),
		Results: make(map[model.Metal]model.MetalResult, len(inputs)),
	}
	for _, res := range slots {
		if _, dup := r.Results[res.Metal]; dup {
			continue
		}
		r.Metals = append(r.Metals, res.Metal)
		r.Results[res.Metal] = res
	}
	return r
}

func evaluate(in Input) model.MetalResult {
	res := model.MetalResult{Metal: in.Metal}
	if in.Err != nil {
		res.Status = statusOf(in.Err)
		res.Error = in.Err.Error()
		return res
	}
	if in.Series == nil {
		res.Status = model.StatusInsufficientHistory
		res.Error = model.ErrInsufficientHistory.Error()
		return res
	}

	rec, err := strategy.Evaluate(in.Series)
	if err != nil {
		res.Status = statusOf(err)
		res.Error = err.Error()
		return res
	}
	res.Status = model.StatusOK
	res.Record = rec
	return res
}

func statusOf(err error) model.MetalStatus {
	if errors.Is(err, model.ErrInsufficientHistory) {
		return model.StatusInsufficientHistory
	}
	return model.StatusMalformed
}

// Inputs collects one Input per metal of a loaded history, in the store's order.
func Inputs(store *history.Store) []Input {
	metals := store.Metals()
	inputs := make([]Input, len(metals))
	for i, m := range metals {
		series, err := store.Series(m)
		inputs[i] = Input{Metal: m, Series: series, Err: err}
	}
	return inputs
}

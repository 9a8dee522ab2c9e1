package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/cliplens/match-cli/pkg/shopsearch"
	"github.com/cliplens/match-cli/pkg/vision"
)

// fakeSearch returns canned shopping results.
type fakeSearch struct {
	resp      *shopsearch.SearchResponse
	err       error
	lastQuery string
}

func (f *fakeSearch) Search(_ context.Context, query string, _ ...shopsearch.SearchOption) (*shopsearch.SearchResponse, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	if f.resp == nil {
		return &shopsearch.SearchResponse{}, nil
	}
	return f.resp, nil
}

// fakeVision serves canned extractions keyed by image URL and a single canned
// comparison result.
type fakeVision struct {
	extracts    map[string]*vision.ExtractResult
	extractErrs map[string]error

	compare      *vision.CompareResult
	compareErr   error
	compareCalls atomic.Int64
	lastCompare  vision.CompareRequest
}

func (f *fakeVision) ExtractAttributes(_ context.Context, req vision.ExtractRequest) (*vision.ExtractResult, error) {
	if err := f.extractErrs[req.ImageURL]; err != nil {
		return nil, err
	}
	if res := f.extracts[req.ImageURL]; res != nil {
		return res, nil
	}
	return &vision.ExtractResult{Attributes: map[string]any{}, Confidence: 0.5}, nil
}

func (f *fakeVision) CompareProducts(_ context.Context, req vision.CompareRequest) (*vision.CompareResult, error) {
	f.compareCalls.Add(1)
	f.lastCompare = req
	if f.compareErr != nil {
		return nil, f.compareErr
	}
	return f.compare, nil
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/meet447/surgedb/internal/filter"
)

// filterWire is the JSON shape a search request's optional "filter" field
// takes. Exactly one of its fields should be set; And/Or/Not recurse into
// nested filterWire values.
type filterWire struct {
	Eq     *eqWire      `json:"eq"`
	In     *inWire      `json:"in"`
	Range  *rangeWire   `json:"range"`
	Exists *existsWire  `json:"exists"`
	And    []filterWire `json:"and"`
	Or     []filterWire `json:"or"`
	Not    *filterWire  `json:"not"`
}

type eqWire struct {
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

type inWire struct {
	Path   string        `json:"path"`
	Values []interface{} `json:"values"`
}

type rangeWire struct {
	Path string      `json:"path"`
	Gt   interface{} `json:"gt"`
	Gte  interface{} `json:"gte"`
	Lt   interface{} `json:"lt"`
	Lte  interface{} `json:"lte"`
}

type existsWire struct {
	Path string `json:"path"`
}

// parseFilter decodes a raw "filter" field into a filter.Filter tree. An
// empty or absent field yields a nil Filter (no restriction).
func parseFilter(raw json.RawMessage) (filter.Filter, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var w filterWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decoding filter: %w", err)
	}
	return buildFilter(w)
}

func buildFilter(w filterWire) (filter.Filter, error) {
	switch {
	case w.Eq != nil:
		return filter.NewEq(w.Eq.Path, w.Eq.Value), nil
	case w.In != nil:
		return filter.NewIn(w.In.Path, w.In.Values), nil
	case w.Range != nil:
		return filter.NewRange(w.Range.Path, w.Range.Gt, w.Range.Gte, w.Range.Lt, w.Range.Lte), nil
	case w.Exists != nil:
		return filter.NewExists(w.Exists.Path), nil
	case len(w.And) > 0:
		children, err := buildFilters(w.And)
		if err != nil {
			return nil, err
		}
		return filter.NewAnd(children...), nil
	case len(w.Or) > 0:
		children, err := buildFilters(w.Or)
		if err != nil {
			return nil, err
		}
		return filter.NewOr(children...), nil
	case w.Not != nil:
		child, err := buildFilter(*w.Not)
		if err != nil {
			return nil, err
		}
		return filter.NewNot(child), nil
	default:
		return nil, nil
	}
}

func buildFilters(wires []filterWire) ([]filter.Filter, error) {
	out := make([]filter.Filter, 0, len(wires))
	for _, w := range wires {
		f, err := buildFilter(w)
		if err != nil {
			return nil, err
		}
		if f != nil {
			out = append(out, f)
		}
	}
	return out, nil
}

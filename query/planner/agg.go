package planner

import (
	"math"

	"veloxdb/query"
	"veloxdb/value"
)

// aggState accumulates one aggregate function's running state across
// the rows of a HashAggregate bucket.
type aggState interface {
	add(v value.Value)
	result() value.Value
}

func newAggState(fn query.AggregateFunc) aggState {
	switch fn {
	case query.AggCount:
		return &countState{}
	case query.AggSum:
		return &sumState{}
	case query.AggAvg:
		return &avgState{}
	case query.AggMin:
		return &minMaxState{wantMin: true}
	case query.AggMax:
		return &minMaxState{wantMin: false}
	case query.AggDistinct:
		return &distinctState{seen: make(map[string]bool)}
	case query.AggStdDev:
		return &stdDevState{}
	case query.AggGeoMean:
		return &geoMeanState{}
	default:
		return &countState{}
	}
}

func asFloat(v value.Value) (float64, bool) {
	if f, ok := v.AsFloat64(); ok {
		return f, true
	}
	if i, ok := v.AsInt64(); ok {
		return float64(i), true
	}
	return 0, false
}

type countState struct{ n int64 }

func (s *countState) add(v value.Value) {
	if !v.IsNull() {
		s.n++
	}
}
func (s *countState) result() value.Value { return value.Int64(s.n) }

type sumState struct {
	total float64
	any   bool
}

func (s *sumState) add(v value.Value) {
	if f, ok := asFloat(v); ok {
		s.total += f
		s.any = true
	}
}
func (s *sumState) result() value.Value {
	if !s.any {
		return value.Null()
	}
	return value.Float64(s.total)
}

type avgState struct {
	total float64
	n     int64
}

func (s *avgState) add(v value.Value) {
	if f, ok := asFloat(v); ok {
		s.total += f
		s.n++
	}
}
func (s *avgState) result() value.Value {
	if s.n == 0 {
		return value.Null()
	}
	return value.Float64(s.total / float64(s.n))
}

type minMaxState struct {
	best    value.Value
	has     bool
	wantMin bool
}

func (s *minMaxState) add(v value.Value) {
	if v.IsNull() {
		return
	}
	if !s.has {
		s.best, s.has = v, true
		return
	}
	c := value.Compare(v, s.best)
	if (s.wantMin && c < 0) || (!s.wantMin && c > 0) {
		s.best = v
	}
}
func (s *minMaxState) result() value.Value {
	if !s.has {
		return value.Null()
	}
	return s.best
}

type distinctState struct {
	seen  map[string]bool
	count int64
}

func (s *distinctState) add(v value.Value) {
	if v.IsNull() {
		return
	}
	k := v.String()
	if !s.seen[k] {
		s.seen[k] = true
		s.count++
	}
}
func (s *distinctState) result() value.Value { return value.Int64(s.count) }

type stdDevState struct {
	vals []float64
}

func (s *stdDevState) add(v value.Value) {
	if f, ok := asFloat(v); ok {
		s.vals = append(s.vals, f)
	}
}
func (s *stdDevState) result() value.Value {
	n := len(s.vals)
	if n == 0 {
		return value.Null()
	}
	var mean float64
	for _, f := range s.vals {
		mean += f
	}
	mean /= float64(n)
	var variance float64
	for _, f := range s.vals {
		d := f - mean
		variance += d * d
	}
	variance /= float64(n)
	return value.Float64(math.Sqrt(variance))
}

type geoMeanState struct {
	logSum float64
	n      int64
}

func (s *geoMeanState) add(v value.Value) {
	f, ok := asFloat(v)
	if !ok || f <= 0 {
		return
	}
	s.logSum += math.Log(f)
	s.n++
}
func (s *geoMeanState) result() value.Value {
	if s.n == 0 {
		return value.Null()
	}
	return value.Float64(math.Exp(s.logSum / float64(s.n)))
}

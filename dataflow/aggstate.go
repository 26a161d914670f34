package dataflow

import (
	"math"

	"veloxdb/query"
	"veloxdb/value"
)

// incrementalAggState recomputes one aggregate function's result from
// a bucket's full current multiset of argument values, rebuilt fresh
// on every delta batch a bucket participates in.
type incrementalAggState interface {
	add(v value.Value)
	result() value.Value
}

func newIncrementalAggState(fn query.AggregateFunc) incrementalAggState {
	switch fn {
	case query.AggCount:
		return &iCount{}
	case query.AggSum:
		return &iSum{}
	case query.AggAvg:
		return &iAvg{}
	case query.AggMin:
		return &iMinMax{wantMin: true}
	case query.AggMax:
		return &iMinMax{wantMin: false}
	case query.AggDistinct:
		return &iDistinct{seen: make(map[string]bool)}
	case query.AggStdDev:
		return &iStdDev{}
	case query.AggGeoMean:
		return &iGeoMean{}
	default:
		return &iCount{}
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

type iCount struct{ n int64 }

func (s *iCount) add(v value.Value) {
	if !v.IsNull() {
		s.n++
	}
}
func (s *iCount) result() value.Value { return value.Int64(s.n) }

type iSum struct {
	total float64
	any   bool
}

func (s *iSum) add(v value.Value) {
	if f, ok := asFloat(v); ok {
		s.total += f
		s.any = true
	}
}
func (s *iSum) result() value.Value {
	if !s.any {
		return value.Null()
	}
	return value.Float64(s.total)
}

type iAvg struct {
	total float64
	n     int64
}

func (s *iAvg) add(v value.Value) {
	if f, ok := asFloat(v); ok {
		s.total += f
		s.n++
	}
}
func (s *iAvg) result() value.Value {
	if s.n == 0 {
		return value.Null()
	}
	return value.Float64(s.total / float64(s.n))
}

type iMinMax struct {
	best    value.Value
	has     bool
	wantMin bool
}

func (s *iMinMax) add(v value.Value) {
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
func (s *iMinMax) result() value.Value {
	if !s.has {
		return value.Null()
	}
	return s.best
}

type iDistinct struct {
	seen  map[string]bool
	count int64
}

func (s *iDistinct) add(v value.Value) {
	if v.IsNull() {
		return
	}
	k := v.String()
	if !s.seen[k] {
		s.seen[k] = true
		s.count++
	}
}
func (s *iDistinct) result() value.Value { return value.Int64(s.count) }

type iStdDev struct{ vals []float64 }

func (s *iStdDev) add(v value.Value) {
	if f, ok := asFloat(v); ok {
		s.vals = append(s.vals, f)
	}
}
func (s *iStdDev) result() value.Value {
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

type iGeoMean struct {
	logSum float64
	n      int64
}

func (s *iGeoMean) add(v value.Value) {
	f, ok := asFloat(v)
	if !ok || f <= 0 {
		return
	}
	s.logSum += math.Log(f)
	s.n++
}
func (s *iGeoMean) result() value.Value {
	if s.n == 0 {
		return value.Null()
	}
	return value.Float64(math.Exp(s.logSum / float64(s.n)))
}

package aggregation

import (
	"github.com/shopspring/decimal"
)

// Aggregator defines the reduce semantics of an aggregation operation.
// To add a new operation: implement this interface and register it in Operators.
type Aggregator interface {
	// Initial returns the aggregate value after the first contribution.
	// count → 1; sum/min/max/avg → the incoming value itself.
	Initial(incoming decimal.Decimal) decimal.Decimal

	// Apply folds an incoming value into an existing aggregate.
	Apply(current, incoming decimal.Decimal) decimal.Decimal
}

// Finalizer is implemented by operations whose running state is not the
// final value. avg keeps a running sum and divides by the count at the end.
type Finalizer interface {
	Finalize(current decimal.Decimal, count int64) decimal.Decimal
}

// Operators is the registry of all supported aggregation operations.
var Operators = map[Operation]Aggregator{
	OpCount: countAgg{},
	OpSum:   sumAgg{},
	OpMin:   minAgg{},
	OpMax:   maxAgg{},
	OpAvg:   avgAgg{},
}

// ValidOperation reports whether op is a registered aggregation operation.
func ValidOperation(op Operation) bool {
	_, ok := Operators[op]
	return ok
}

// countAgg increments by 1 per contribution. The incoming value is ignored.
type countAgg struct{}

func (countAgg) Initial(_ decimal.Decimal) decimal.Decimal    { return decimal.NewFromInt(1) }
func (countAgg) Apply(cur, _ decimal.Decimal) decimal.Decimal { return cur.Add(decimal.NewFromInt(1)) }

// sumAgg accumulates the sum of incoming values.
type sumAgg struct{}

func (sumAgg) Initial(v decimal.Decimal) decimal.Decimal      { return v }
func (sumAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal { return cur.Add(inc) }

// minAgg tracks the minimum value seen.
type minAgg struct{}

func (minAgg) Initial(v decimal.Decimal) decimal.Decimal { return v }
func (minAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal {
	if inc.LessThan(cur) {
		return inc
	}
	return cur
}

// maxAgg tracks the maximum value seen.
type maxAgg struct{}

func (maxAgg) Initial(v decimal.Decimal) decimal.Decimal { return v }
func (maxAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal {
	if inc.GreaterThan(cur) {
		return inc
	}
	return cur
}

// avgAgg keeps a running sum; Finalize turns it into the mean.
type avgAgg struct{ sumAgg }

func (avgAgg) Finalize(cur decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return cur.Div(decimal.NewFromInt(count))
}

// Accumulator folds the contributions of one bucket.
type Accumulator struct {
	agg   Aggregator
	value decimal.Decimal
	count int64
}

// NewAccumulator returns an empty accumulator for op, or false when op is not
// registered.
func NewAccumulator(op Operation) (*Accumulator, bool) {
	agg, ok := Operators[op]
	if !ok {
		return nil, false
	}
	return &Accumulator{agg: agg}, true
}

// Add folds one contribution.
func (a *Accumulator) Add(v decimal.Decimal) {
	if a.count == 0 {
		a.value = a.agg.Initial(v)
	} else {
		a.value = a.agg.Apply(a.value, v)
	}
	a.count++
}

// Count is the number of contributions folded so far.
func (a *Accumulator) Count() int64 { return a.count }

// Result returns the final value and whether anything contributed.
func (a *Accumulator) Result() (decimal.Decimal, bool) {
	if a.count == 0 {
		return decimal.Zero, false
	}
	if f, ok := a.agg.(Finalizer); ok {
		return f.Finalize(a.value, a.count), true
	}
	return a.value, true
}

package analysis

import (
	"fmt"
	"math"
)

// Optional is a metric value that may be undefined, e.g. a growth rate over
// a zero base. The zero value is undefined.
type Optional struct {
	value   float64
	defined bool
}

func Some(v float64) Optional {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Optional{}
	}
	return Optional{value: v, defined: true}
}

func Undefined() Optional {
	return Optional{}
}

func (o Optional) Get() (float64, bool) {
	return o.value, o.defined
}

func (o Optional) Defined() bool {
	return o.defined
}

// Float returns the value, or NaN when undefined. Only for sinks that
// already treat NaN as a gap.
func (o Optional) Float() float64 {
	if !o.defined {
		return math.NaN()
	}
	return o.value
}

// Scale multiplies a defined value by k.
func (o Optional) Scale(k float64) Optional {
	if !o.defined {
		return o
	}
	return Some(o.value * k)
}

func (o Optional) String() string {
	if !o.defined {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", o.value)
}

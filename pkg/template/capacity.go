package template

import (
	"math"
	"strconv"
)

// UnboundedSentinel is what Int reports for an unbounded capacity. It is the
// largest 32-bit signed integer, the value hosts have historically used.
const UnboundedSentinel = math.MaxInt32

// Capacity is the maximum number of concurrent agents a template may run.
// The zero value is unbounded.
type Capacity struct {
	bounded bool
	limit   int
}

// Unbounded returns a capacity with no limit
func Unbounded() Capacity {
	return Capacity{}
}

// Bounded returns a capacity limited to n. Zero and negative limits are
// accepted as-is and allow no agents.
func Bounded(n int) Capacity {
	return Capacity{bounded: true, limit: n}
}

// IsUnbounded reports whether there is no limit
func (c Capacity) IsUnbounded() bool {
	return !c.bounded
}

// Limit returns the limit and true, or 0 and false when unbounded
func (c Capacity) Limit() (int, bool) {
	return c.limit, c.bounded
}

// Int returns the limit, or UnboundedSentinel when unbounded
func (c Capacity) Int() int {
	if !c.bounded {
		return UnboundedSentinel
	}
	return c.limit
}

// Allows reports whether one more agent may start when running are active
func (c Capacity) Allows(running int) bool {
	if !c.bounded {
		return true
	}
	return running < c.limit
}

// String returns "" for unbounded, else the decimal limit. It round-trips
// through the instanceCap configuration field.
func (c Capacity) String() string {
	if !c.bounded {
		return ""
	}
	return strconv.Itoa(c.limit)
}

// parseCapacity accepts "" or a 32-bit base-10 integer. The sentinel value
// itself means unbounded, so it round-trips through String as "".
func parseCapacity(s string) (Capacity, error) {
	if s == "" {
		return Unbounded(), nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return Capacity{}, &ConfigurationError{
			Kind:  KindNumberFormat,
			Field: "instanceCap",
			Value: s,
			Err:   err,
		}
	}
	if n == UnboundedSentinel {
		return Unbounded(), nil
	}
	return Bounded(int(n)), nil
}

package store

import "github.com/rosterhq/roster-api/internal/domain"

// Op identifies the comparison an individual filter condition performs.
type Op int

const (
	// OpContainsFold matches when the column contains the value as a
	// case-insensitive substring.
	OpContainsFold Op = iota
	// OpEq matches on exact equality.
	OpEq
	// OpGte matches when the column is greater than or equal to the value.
	OpGte
	// OpLte matches when the column is less than or equal to the value.
	OpLte
	// OpBetween matches when the column falls within [Value, Upper] inclusive.
	OpBetween
)

// Condition is a single predicate over one column. It is a description
// only; rendering it into a query is the storage layer's concern.
type Condition struct {
	Column string
	Op     Op
	Value  any
	Upper  any // second bound, used only by OpBetween
}

// Filter is an AND-combination of optional conditions. The zero value
// matches everything. Builder methods skip absent inputs, so callers can
// chain every optional field unconditionally:
//
//	f := new(store.Filter).
//		ContainsFold("full_name", criteria.FullName).
//		Eq("role", role)
//
// Filters are value descriptions, stateless and side-effect-free.
type Filter struct {
	conds []Condition
}

// ContainsFold adds a case-insensitive substring condition, unless the
// substring is empty.
func (f *Filter) ContainsFold(column, substr string) *Filter {
	if substr == "" {
		return f
	}
	f.conds = append(f.conds, Condition{Column: column, Op: OpContainsFold, Value: substr})
	return f
}

// Eq adds an exact-equality condition, unless value is nil.
func (f *Filter) Eq(column string, value any) *Filter {
	if value == nil {
		return f
	}
	f.conds = append(f.conds, Condition{Column: column, Op: OpEq, Value: value})
	return f
}

// EqBool adds an exact-equality condition on a nullable boolean.
// A nil pointer means "no constraint".
func (f *Filter) EqBool(column string, value *bool) *Filter {
	if value == nil {
		return f
	}
	return f.Eq(column, *value)
}

// DateRange adds an inclusive range condition over a date column.
// With both bounds present it becomes a BETWEEN; with only one, the
// corresponding one-sided comparison; with neither, no condition.
func (f *Filter) DateRange(column string, from, to *domain.Date) *Filter {
	switch {
	case from == nil && to == nil:
		return f
	case from == nil:
		f.conds = append(f.conds, Condition{Column: column, Op: OpLte, Value: *to})
	case to == nil:
		f.conds = append(f.conds, Condition{Column: column, Op: OpGte, Value: *from})
	default:
		f.conds = append(f.conds, Condition{Column: column, Op: OpBetween, Value: *from, Upper: *to})
	}
	return f
}

// Conditions returns the accumulated conditions in insertion order.
func (f *Filter) Conditions() []Condition {
	if f == nil {
		return nil
	}
	return f.conds
}

// Empty reports whether the filter constrains anything at all.
func (f *Filter) Empty() bool {
	return f == nil || len(f.conds) == 0
}

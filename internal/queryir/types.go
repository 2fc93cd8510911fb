package queryir

import "github.com/roach88/sieve/internal/ir"

// Operator is the comparison applied by a single predicate.
type Operator string

const (
	OpNone                 Operator = "None"
	OpEqualTo              Operator = "EqualTo"
	OpNotEqualTo           Operator = "NotEqualTo"
	OpLessThan             Operator = "LessThan"
	OpLessThanOrEqualTo    Operator = "LessThanOrEqualTo"
	OpGreaterThan          Operator = "GreaterThan"
	OpGreaterThanOrEqualTo Operator = "GreaterThanOrEqualTo"
	OpStartsWith           Operator = "StartsWith"
	OpEndsWith             Operator = "EndsWith"
	OpContains             Operator = "Contains"
	OpDoesNotContain       Operator = "DoesNotContain"
	OpIsNull               Operator = "IsNull"
	OpIsNotNull            Operator = "IsNotNull"
	OpIsEmpty              Operator = "IsEmpty"
	OpIsNotEmpty           Operator = "IsNotEmpty"
)

// Operators lists every operator in declaration order.
var Operators = []Operator{
	OpNone,
	OpEqualTo, OpNotEqualTo,
	OpLessThan, OpLessThanOrEqualTo, OpGreaterThan, OpGreaterThanOrEqualTo,
	OpStartsWith, OpEndsWith, OpContains, OpDoesNotContain,
	OpIsNull, OpIsNotNull, OpIsEmpty, OpIsNotEmpty,
}

// Normalize maps the empty operator to OpNone.
func (op Operator) Normalize() Operator {
	if op == "" {
		return OpNone
	}
	return op
}

// Known reports whether op is one of the declared operators.
func (op Operator) Known() bool {
	op = op.Normalize()
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// IsRelational reports whether op orders its operands (<, <=, >, >=).
func (op Operator) IsRelational() bool {
	switch op {
	case OpLessThan, OpLessThanOrEqualTo, OpGreaterThan, OpGreaterThanOrEqualTo:
		return true
	}
	return false
}

// IsContainment reports whether op is one of the substring operators.
func (op Operator) IsContainment() bool {
	switch op {
	case OpStartsWith, OpEndsWith, OpContains, OpDoesNotContain:
		return true
	}
	return false
}

// Logic combines the children of a group.
type Logic string

const (
	LogicNone Logic = "None"
	LogicAnd  Logic = "And"
	LogicOr   Logic = "Or"
)

// Normalize maps the empty logic to LogicNone.
func (l Logic) Normalize() Logic {
	if l == "" {
		return LogicNone
	}
	return l
}

// Direction orders one sort key.
type Direction string

const (
	Ascending  Direction = "Ascending"
	Descending Direction = "Descending"
)

// Normalize maps the empty direction to Ascending.
func (d Direction) Normalize() Direction {
	if d == "" {
		return Ascending
	}
	return d
}

// Predicate is a single (property, operator, literal) triple.
//
// Value is optional: nil and ir.IRNull{} both mean "no literal". Operators
// that compare against a literal treat a missing literal as null, so
// EqualTo without a value behaves like IsNull.
type Predicate struct {
	PropertyName string
	Operator     Operator
	Value        ir.IRValue
}

// Group is a recursive AND/OR composition of predicates and nested groups.
//
// The zero Group is the empty group: it compiles to "no constraint".
type Group struct {
	Operator   Logic
	Predicates []Predicate
	SubGroups  []Group
}

// IsEmpty reports whether g has no predicates and no subgroups.
func (g Group) IsEmpty() bool {
	return len(g.Predicates) == 0 && len(g.SubGroups) == 0
}

// Clone returns a deep copy of g. The copy shares no slices, maps, or
// literal values with g.
func (g Group) Clone() Group {
	out := Group{Operator: g.Operator}
	if g.Predicates != nil {
		out.Predicates = make([]Predicate, len(g.Predicates))
		for i, p := range g.Predicates {
			p.Value = ir.Clone(p.Value)
			out.Predicates[i] = p
		}
	}
	if g.SubGroups != nil {
		out.SubGroups = make([]Group, len(g.SubGroups))
		for i, sub := range g.SubGroups {
			out.SubGroups[i] = sub.Clone()
		}
	}
	return out
}

// And builds an And group from predicates.
func And(preds ...Predicate) Group {
	return Group{Operator: LogicAnd, Predicates: preds}
}

// Or builds an Or group from predicates.
func Or(preds ...Predicate) Group {
	return Group{Operator: LogicOr, Predicates: preds}
}

// Where is shorthand for a Predicate literal.
func Where(property string, op Operator, value ir.IRValue) Predicate {
	return Predicate{PropertyName: property, Operator: op, Value: value}
}

// SortKey is one level of ordering precedence.
type SortKey struct {
	PropertyName string    `json:"propertyName"`
	Direction    Direction `json:"direction"`
}

// SortSpec is an ordered list of sort keys; the first key is primary.
type SortSpec []SortKey

// Asc is shorthand for an ascending SortKey.
func Asc(property string) SortKey {
	return SortKey{PropertyName: property, Direction: Ascending}
}

// Desc is shorthand for a descending SortKey.
func Desc(property string) SortKey {
	return SortKey{PropertyName: property, Direction: Descending}
}

// Node is a node of the filter tree.
//
// This is a sealed interface - only Leaf and Branch implement it.
type Node interface {
	filterNode()
}

// Leaf wraps one predicate.
type Leaf struct {
	Predicate Predicate
}

func (Leaf) filterNode() {}

// Branch joins its children with Logic. Leaves always precede branches.
type Branch struct {
	Logic    Logic
	Children []Node
}

func (Branch) filterNode() {}

// Tree converts g into the tagged Node form.
// Direct predicates become leaves (in order), followed by one branch per
// subgroup (in order).
func (g Group) Tree() Branch {
	b := Branch{
		Logic:    g.Operator.Normalize(),
		Children: make([]Node, 0, len(g.Predicates)+len(g.SubGroups)),
	}
	for _, p := range g.Predicates {
		b.Children = append(b.Children, Leaf{Predicate: p})
	}
	for _, sub := range g.SubGroups {
		b.Children = append(b.Children, sub.Tree())
	}
	return b
}

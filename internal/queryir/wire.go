package queryir

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/sieve/internal/ir"
)

// wirePredicate is the JSON shape of a Predicate.
type wirePredicate struct {
	PropertyName string          `json:"propertyName"`
	OperatorType Operator        `json:"operatorType"`
	Value        json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON writes {"propertyName","operatorType","value"}; value is omitted
// when the predicate carries no literal.
func (p Predicate) MarshalJSON() ([]byte, error) {
	w := wirePredicate{
		PropertyName: p.PropertyName,
		OperatorType: p.Operator.Normalize(),
	}
	if !ir.IsNull(p.Value) {
		b, err := ir.MarshalIRValue(p.Value)
		if err != nil {
			return nil, fmt.Errorf("predicate %s value: %w", p.PropertyName, err)
		}
		w.Value = b
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler for Predicate.
// A JSON null value decodes to a nil Value.
func (p *Predicate) UnmarshalJSON(data []byte) error {
	var w wirePredicate
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*p = Predicate{
		PropertyName: w.PropertyName,
		Operator:     w.OperatorType.Normalize(),
	}
	if len(w.Value) > 0 {
		v, err := ir.DecodeIRValue(w.Value)
		if err != nil {
			return fmt.Errorf("predicate %s value: %w", w.PropertyName, err)
		}
		if !ir.IsNull(v) {
			p.Value = v
		}
	}
	return nil
}

// wireGroup is the JSON shape of a Group.
type wireGroup struct {
	OperatorType Logic       `json:"operatorType"`
	Filters      []Predicate `json:"filters"`
	SubGroups    []Group     `json:"subGroups"`
}

// MarshalJSON writes {"operatorType","filters","subGroups"} with empty lists
// rather than nulls.
func (g Group) MarshalJSON() ([]byte, error) {
	w := wireGroup{
		OperatorType: g.Operator.Normalize(),
		Filters:      g.Predicates,
		SubGroups:    g.SubGroups,
	}
	if w.Filters == nil {
		w.Filters = []Predicate{}
	}
	if w.SubGroups == nil {
		w.SubGroups = []Group{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler for Group.
// Empty lists decode to nil slices so decoded groups compare equal to
// groups built in Go.
func (g *Group) UnmarshalJSON(data []byte) error {
	var w wireGroup
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*g = Group{Operator: w.OperatorType.Normalize()}
	if len(w.Filters) > 0 {
		g.Predicates = w.Filters
	}
	if len(w.SubGroups) > 0 {
		g.SubGroups = w.SubGroups
	}
	return nil
}

// ParseGroup decodes and validates a filter group from its JSON wire format.
func ParseGroup(data []byte) (Group, error) {
	var g Group
	if err := json.Unmarshal(data, &g); err != nil {
		return Group{}, NewInvalidArgumentError("decode filter: %v", err)
	}
	if err := Validate(g); err != nil {
		return Group{}, err
	}
	return g, nil
}

// ParseSortSpec decodes and validates a sort spec from its JSON wire format.
func ParseSortSpec(data []byte) (SortSpec, error) {
	var spec SortSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, NewInvalidArgumentError("decode sort: %v", err)
	}
	if err := ValidateSort(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// Canonical returns the normalized IR form of g used for fingerprinting.
//
// Normalization drops predicates whose operator is None and subgroups that
// normalize to empty, and reports an empty group's operator as None. These
// are exactly the parts that contribute no constraint.
func (g Group) Canonical() ir.IRObject {
	filters := ir.IRArray{}
	for _, p := range g.Predicates {
		op := p.Operator.Normalize()
		if op == OpNone {
			continue
		}
		obj := ir.IRObject{
			"propertyName": ir.IRString(p.PropertyName),
			"operatorType": ir.IRString(op),
		}
		if !ir.IsNull(p.Value) {
			obj["value"] = p.Value
		}
		filters = append(filters, obj)
	}

	subGroups := ir.IRArray{}
	for _, sub := range g.SubGroups {
		c := sub.Canonical()
		if isEmptyCanonical(c) {
			continue
		}
		subGroups = append(subGroups, c)
	}

	logic := g.Operator.Normalize()
	if len(filters) == 0 && len(subGroups) == 0 {
		logic = LogicNone
	}

	return ir.IRObject{
		"operatorType": ir.IRString(logic),
		"filters":      filters,
		"subGroups":    subGroups,
	}
}

func isEmptyCanonical(obj ir.IRObject) bool {
	filters, _ := obj["filters"].(ir.IRArray)
	subGroups, _ := obj["subGroups"].(ir.IRArray)
	return len(filters) == 0 && len(subGroups) == 0
}

// Fingerprint returns the content hash of the normalized group.
// Equal fingerprints guarantee identical filtering behavior.
func (g Group) Fingerprint() (string, error) {
	return ir.Fingerprint(ir.DomainFilter, g.Canonical())
}

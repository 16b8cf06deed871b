package vectorindex

import "strings"

// Metadata holds the indexed fields of an entry. Values are string,
// []string, or float64; other types never match any condition except
// Equals on an identical value.
type Metadata map[string]interface{}

// Condition is one constraint in a metadata filter. The set of conditions
// is closed: Equals, In, Contains, NotContains.
type Condition interface {
	// Matches reports whether the metadata value satisfies the condition.
	Matches(value interface{}) bool
}

// Filter constrains search candidates by metadata field. All field
// constraints must hold; an empty or nil filter passes everything.
type Filter map[string]Condition

// Matches reports whether the metadata satisfies every constraint.
// A constrained field missing from the metadata fails the filter.
func (f Filter) Matches(meta Metadata) bool {
	for field, cond := range f {
		value, ok := meta[field]
		if !ok || !cond.Matches(value) {
			return false
		}
	}
	return true
}

// Equals requires exact equality with the metadata value.
type Equals struct {
	Value interface{}
}

// Matches implements Condition.
func (c Equals) Matches(value interface{}) bool {
	return value == c.Value
}

// In matches when the metadata field intersects the given values: any
// element of a collection field, or the scalar field itself, equals one of
// the values.
type In struct {
	Values []string
}

// Matches implements Condition.
func (c In) Matches(value interface{}) bool {
	switch v := value.(type) {
	case []string:
		for _, item := range v {
			for _, want := range c.Values {
				if item == want {
					return true
				}
			}
		}
	case string:
		for _, want := range c.Values {
			if v == want {
				return true
			}
		}
	}
	return false
}

// Contains matches when the value is an element of a collection field or a
// substring of a string field.
type Contains struct {
	Value string
}

// Matches implements Condition.
func (c Contains) Matches(value interface{}) bool {
	switch v := value.(type) {
	case []string:
		for _, item := range v {
			if item == c.Value {
				return true
			}
		}
	case string:
		return strings.Contains(v, c.Value)
	}
	return false
}

// NotContains matches when none of the given values appear in the field:
// no element of a collection field equals any value, and no value is a
// substring of a string field.
type NotContains struct {
	Values []string
}

// Matches implements Condition.
func (c NotContains) Matches(value interface{}) bool {
	switch v := value.(type) {
	case []string:
		for _, item := range v {
			for _, banned := range c.Values {
				if item == banned {
					return false
				}
			}
		}
		return true
	case string:
		for _, banned := range c.Values {
			if strings.Contains(v, banned) {
				return false
			}
		}
		return true
	}
	return false
}

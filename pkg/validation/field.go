package validation

import (
	"regexp"
)

// Kind identifies the value type a field accepts.
type Kind string

const (
	KindString   Kind = "string"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindDate     Kind = "date"
	KindID       Kind = "id"
	KindEmail    Kind = "email"
	KindURL      Kind = "url"
	KindHexColor Kind = "hexColor"
	KindEnum     Kind = "enum"
	KindObject   Kind = "object"
	KindAny      Kind = "any"
)

// Constraints holds the optional per-field rules checked after the kind check.
type Constraints struct {
	MinLength *int
	MaxLength *int
	Min       *float64
	Max       *float64
	MinItems  *int
	Integer   bool
	Pattern   *regexp.Regexp
}

// FieldSpec declares a single field of a shape. Builder methods return
// modified copies so a FieldSpec is never changed after it has been placed in a shape.
type FieldSpec struct {
	Name        string
	Required    bool
	NonEmpty    bool
	Kind        Kind
	Constraints Constraints
	Options     []string
	Transform   Transform
	Each        bool
	Shape       *ShapeSpec
}

func newField(name string, kind Kind) FieldSpec {
	return FieldSpec{Name: name, Kind: kind}
}

// String declares a free-form string field.
func String(name string) FieldSpec { return newField(name, KindString) }

// Number declares a numeric field.
func Number(name string) FieldSpec { return newField(name, KindNumber) }

// Boolean declares a boolean field.
func Boolean(name string) FieldSpec { return newField(name, KindBoolean) }

// Date declares an ISO-8601 date field.
func Date(name string) FieldSpec { return newField(name, KindDate) }

// ID declares a 24 hex character identifier field.
func ID(name string) FieldSpec { return newField(name, KindID) }

// Email declares an e-mail address field.
func Email(name string) FieldSpec { return newField(name, KindEmail) }

// URL declares an absolute URL field.
func URL(name string) FieldSpec { return newField(name, KindURL) }

// HexColor declares a CSS hex color field (#rgb or #rrggbb).
func HexColor(name string) FieldSpec { return newField(name, KindHexColor) }

// Any declares a field that is carried through without a kind check.
func Any(name string) FieldSpec { return newField(name, KindAny) }

// Enum declares a string field restricted to the given options.
func Enum(name string, options ...string) FieldSpec {
	f := newField(name, KindEnum)
	f.Options = append([]string(nil), options...)
	return f
}

// Object declares a nested shape.
func Object(name string, shape *ShapeSpec) FieldSpec {
	f := newField(name, KindObject)
	f.Shape = shape
	return f
}

// Require marks the field as mandatory.
func (f FieldSpec) Require() FieldSpec {
	f.Required = true
	return f
}

// NotEmpty rejects "" for a field that may still be omitted.
func (f FieldSpec) NotEmpty() FieldSpec {
	f.NonEmpty = true
	return f
}

// MinLen sets the minimum string length in characters.
func (f FieldSpec) MinLen(n int) FieldSpec {
	f.Constraints.MinLength = &n
	return f
}

// MaxLen sets the maximum string length in characters.
func (f FieldSpec) MaxLen(n int) FieldSpec {
	f.Constraints.MaxLength = &n
	return f
}

// Min sets the inclusive numeric lower bound.
func (f FieldSpec) Min(v float64) FieldSpec {
	f.Constraints.Min = &v
	return f
}

// Max sets the inclusive numeric upper bound.
func (f FieldSpec) Max(v float64) FieldSpec {
	f.Constraints.Max = &v
	return f
}

// Int rejects numbers with a fractional part.
func (f FieldSpec) Int() FieldSpec {
	f.Constraints.Integer = true
	return f
}

// Match requires string values to match the pattern. It panics on an invalid
// expression since shapes are built at startup.
func (f FieldSpec) Match(pattern string) FieldSpec {
	f.Constraints.Pattern = regexp.MustCompile(pattern)
	return f
}

// EachOf turns the field into an array whose elements are validated
// independently against the field's kind and constraints.
func (f FieldSpec) EachOf() FieldSpec {
	f.Each = true
	return f
}

// MinItems sets the minimum array size for EachOf fields.
func (f FieldSpec) MinItems(n int) FieldSpec {
	f.Constraints.MinItems = &n
	return f
}

// With attaches a pre-validation coercion.
func (f FieldSpec) With(t Transform) FieldSpec {
	f.Transform = t
	return f
}

// Optional clears the required flag. A field that was required keeps
// rejecting "" when present, so derived update shapes cannot blank it.
func (f FieldSpec) Optional() FieldSpec {
	if f.Required {
		f.NonEmpty = true
	}
	f.Required = false
	return f
}

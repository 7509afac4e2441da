package validation

import "fmt"

// ShapeSpec is an ordered set of fields describing one request payload.
type ShapeSpec struct {
	name   string
	fields []FieldSpec
}

// Shape builds a shape from fields in declaration order. Duplicate or empty
// field names panic: shapes are declared once at startup.
func Shape(name string, fields ...FieldSpec) *ShapeSpec {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			panic(fmt.Sprintf("validation: shape %s declares a field without a name", name))
		}
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("validation: shape %s declares %s twice", name, f.Name))
		}
		if f.Kind == KindObject && f.Shape == nil {
			panic(fmt.Sprintf("validation: shape %s declares object %s without a sub-shape", name, f.Name))
		}
		seen[f.Name] = struct{}{}
	}
	return &ShapeSpec{name: name, fields: append([]FieldSpec(nil), fields...)}
}

// Envelope builds the {query, body} shape used by PATCH-style endpoints.
func Envelope(name string, query, body *ShapeSpec) *ShapeSpec {
	return Shape(name, Object("query", query), Object("body", body))
}

// Name returns the shape name used in logs and metrics.
func (s *ShapeSpec) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Fields returns a copy of the declared fields.
func (s *ShapeSpec) Fields() []FieldSpec {
	if s == nil {
		return nil
	}
	return append([]FieldSpec(nil), s.fields...)
}

// Field looks up a declared field by name.
func (s *ShapeSpec) Field(name string) (FieldSpec, bool) {
	if s == nil {
		return FieldSpec{}, false
	}
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// HasRequired reports whether any field, including those of nested
// non-array sub-shapes that must be present, is mandatory.
func (s *ShapeSpec) HasRequired() bool {
	if s == nil {
		return false
	}
	for _, f := range s.fields {
		if f.Required {
			return true
		}
		if f.Kind == KindObject && !f.Each && f.Shape.HasRequired() {
			return true
		}
	}
	return false
}

// Partial derives a shape with every top-level field optional.
func (s *ShapeSpec) Partial(name string) *ShapeSpec {
	fields := make([]FieldSpec, len(s.fields))
	for i, f := range s.fields {
		fields[i] = f.Optional()
	}
	return Shape(name, fields...)
}

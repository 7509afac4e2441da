// Package validation checks decoded request payloads against declarative
// shapes. Transforms run first, then kind checks, then constraints; every
// failure is collected so a client can fix all fields in one round trip.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// Engine interprets shapes. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	validate *validator.Validate
	failFast bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithFailFast stops validation at the first failure.
func WithFailFast(enabled bool) Option {
	return func(e *Engine) { e.failFast = enabled }
}

// WithValidator supplies the validator used for format kinds.
func WithValidator(v *validator.Validate) Option {
	return func(e *Engine) {
		if v != nil {
			e.validate = v
		}
	}
}

// NewEngine constructs an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{validate: validator.New()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate checks input against shape. On success it returns a new map holding
// only declared fields with their transformed values; the input is not modified.
func (e *Engine) Validate(shape *ShapeSpec, input any) (map[string]any, Errors) {
	c := &collector{failFast: e.failFast}
	obj, ok := asObject(input)
	if !ok {
		if input != nil {
			c.add("", TypeMismatch, "object", "payload must be a JSON object")
			return nil, c.errs
		}
		obj = map[string]any{}
	}
	out := e.walk(shape, obj, "", c)
	if len(c.errs) > 0 {
		return nil, c.errs
	}
	return out, nil
}

func (e *Engine) walk(shape *ShapeSpec, obj map[string]any, prefix string, c *collector) map[string]any {
	out := make(map[string]any, len(shape.fields))
	for _, f := range shape.fields {
		if c.stopped() {
			break
		}
		path := joinPath(prefix, f.Name)
		raw, present := obj[f.Name]
		if !present || raw == nil {
			if f.Required || (f.Kind == KindObject && !f.Each && f.Shape.HasRequired()) {
				c.add(path, MissingField, "required", "is required")
			}
			continue
		}

		if f.Each {
			if items, ok := e.each(f, raw, path, c); ok {
				out[f.Name] = items
			}
			continue
		}

		if v, ok := e.value(f, raw, path, c); ok {
			out[f.Name] = v
		}
	}
	return out
}

func (e *Engine) each(f FieldSpec, raw any, path string, c *collector) ([]any, bool) {
	items, ok := asSlice(raw)
	if !ok {
		c.add(path, TypeMismatch, "array", "must be an array")
		return nil, false
	}
	if min := f.Constraints.MinItems; min != nil && len(items) < *min {
		c.add(path, ConstraintViolation, "minItems", fmt.Sprintf("must contain at least %d elements", *min))
		return nil, false
	}
	before := len(c.errs)
	cleaned := make([]any, 0, len(items))
	for i, item := range items {
		if c.stopped() {
			break
		}
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		if item == nil {
			c.add(elemPath, TypeMismatch, string(f.Kind), "must not be null")
			continue
		}
		if v, ok := e.value(f, item, elemPath, c); ok {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned, len(c.errs) == before
}

func (e *Engine) value(f FieldSpec, raw any, path string, c *collector) (any, bool) {
	if f.Transform != nil {
		raw = f.Transform(raw)
	}
	before := len(c.errs)
	switch f.Kind {
	case KindObject:
		obj, ok := asObject(raw)
		if !ok {
			c.add(path, NestedValidationFailure, "object", "must be an object")
			return nil, false
		}
		child := e.walk(f.Shape, obj, path, c)
		return child, len(c.errs) == before
	case KindString, KindID, KindEmail, KindURL, KindHexColor, KindEnum:
		s, ok := raw.(string)
		if !ok {
			c.add(path, TypeMismatch, string(f.Kind), "must be a string")
			return nil, false
		}
		e.checkString(f, s, path, c)
		return s, len(c.errs) == before
	case KindNumber:
		n, ok := toFloat64(raw)
		if !ok {
			c.add(path, TypeMismatch, string(f.Kind), "must be a number")
			return nil, false
		}
		checkNumber(f, n, path, c)
		return raw, len(c.errs) == before
	case KindBoolean:
		if _, ok := raw.(bool); !ok {
			c.add(path, TypeMismatch, string(f.Kind), "must be a boolean")
			return nil, false
		}
		return raw, true
	case KindDate:
		switch v := raw.(type) {
		case time.Time:
			return v, true
		case string:
			if _, ok := parseISO(v); !ok {
				c.add(path, ConstraintViolation, "isoDate", "must be a valid ISO-8601 date")
				return nil, false
			}
			return v, true
		default:
			c.add(path, TypeMismatch, string(f.Kind), "must be a date string")
			return nil, false
		}
	default:
		return raw, true
	}
}

func (e *Engine) checkString(f FieldSpec, s, path string, c *collector) {
	if s == "" {
		if f.Required || f.NonEmpty {
			c.add(path, ConstraintViolation, "notEmpty", "should not be empty")
			return
		}
		if f.Kind != KindString {
			c.add(path, ConstraintViolation, string(f.Kind), formatMessage(f))
			return
		}
	}

	switch f.Kind {
	case KindID:
		if !idPattern.MatchString(s) {
			c.add(path, ConstraintViolation, "id", formatMessage(f))
			return
		}
	case KindEmail, KindURL, KindHexColor:
		if err := e.validate.Var(s, formatTag(f.Kind)); err != nil {
			c.add(path, ConstraintViolation, string(f.Kind), formatMessage(f))
			return
		}
	case KindEnum:
		if !contains(f.Options, s) {
			c.add(path, ConstraintViolation, "enum", formatMessage(f))
			return
		}
	}

	length := utf8.RuneCountInString(s)
	if min := f.Constraints.MinLength; min != nil && length < *min {
		c.add(path, ConstraintViolation, "minLength", fmt.Sprintf("must be at least %d characters", *min))
	}
	if max := f.Constraints.MaxLength; max != nil && length > *max {
		c.add(path, ConstraintViolation, "maxLength", fmt.Sprintf("must be at most %d characters", *max))
	}
	if p := f.Constraints.Pattern; p != nil && !p.MatchString(s) {
		c.add(path, ConstraintViolation, "pattern", fmt.Sprintf("must match %s", p.String()))
	}
}

func checkNumber(f FieldSpec, n float64, path string, c *collector) {
	if f.Constraints.Integer && n != math.Trunc(n) {
		c.add(path, ConstraintViolation, "integer", "must be an integer")
	}
	if min := f.Constraints.Min; min != nil && n < *min {
		c.add(path, ConstraintViolation, "min", fmt.Sprintf("must not be less than %v", *min))
	}
	if max := f.Constraints.Max; max != nil && n > *max {
		c.add(path, ConstraintViolation, "max", fmt.Sprintf("must not be greater than %v", *max))
	}
}

func formatTag(kind Kind) string {
	switch kind {
	case KindEmail:
		return "email"
	case KindURL:
		return "url"
	case KindHexColor:
		return "hexcolor"
	}
	return ""
}

func formatMessage(f FieldSpec) string {
	switch f.Kind {
	case KindID:
		return "must be a 24 character hex identifier"
	case KindEmail:
		return "must be a valid email address"
	case KindURL:
		return "must be a valid URL"
	case KindHexColor:
		return "must be a hexadecimal color"
	case KindEnum:
		return fmt.Sprintf("must be one of: %s", strings.Join(f.Options, ", "))
	}
	return "is invalid"
}

// Decode maps a validated tree onto a typed request struct using its json tags.
func Decode(validated map[string]any, dst any) error {
	raw, err := json.Marshal(validated)
	if err != nil {
		return fmt.Errorf("encode validated payload: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode validated payload: %w", err)
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

func asObject(v any) (map[string]any, bool) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, true
	case map[string]string:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			out[k] = val
		}
		return out, true
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func toFloat64(v any) (float64, bool) {
	var n float64
	switch typed := v.(type) {
	case float64:
		n = typed
	case float32:
		n = float64(typed)
	case int:
		n = float64(typed)
	case int8:
		n = float64(typed)
	case int16:
		n = float64(typed)
	case int32:
		n = float64(typed)
	case int64:
		n = float64(typed)
	case uint:
		n = float64(typed)
	case uint8:
		n = float64(typed)
	case uint16:
		n = float64(typed)
	case uint32:
		n = float64(typed)
	case uint64:
		n = float64(typed)
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

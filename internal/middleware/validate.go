package middleware

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
	"github.com/noah-isme/sma-classroom-api/pkg/response"
	"github.com/noah-isme/sma-classroom-api/pkg/validation"
)

// ContextValidatedKey is the gin context key storing the validated payload.
const ContextValidatedKey = "validatedRequest"

// Source names the part of the request a shape is checked against.
type Source string

const (
	// SourceBody validates the JSON body.
	SourceBody Source = "body"
	// SourceQuery validates path parameters merged with the query string.
	SourceQuery Source = "query"
	// SourceEnvelope validates {query: params+query string, body: JSON body}.
	SourceEnvelope Source = "envelope"
)

type validationMetrics interface {
	RecordValidationFailure(shape, kind string)
}

// Validator builds per-route validation middleware around a shared engine.
type Validator struct {
	engine  *validation.Engine
	logger  *zap.Logger
	metrics validationMetrics
}

// NewValidator constructs a Validator.
func NewValidator(engine *validation.Engine, logger *zap.Logger, metrics validationMetrics) *Validator {
	if engine == nil {
		engine = validation.NewEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{engine: engine, logger: logger, metrics: metrics}
}

// Validate rejects requests whose source does not satisfy shape. On success the
// cleaned payload is stored for Bind.
func (v *Validator) Validate(source Source, shape *validation.ShapeSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		input, err := collect(c, source)
		if err != nil {
			response.Abort(c, err)
			return
		}

		out, errs := v.engine.Validate(shape, input)
		if len(errs) > 0 {
			kind := string(errs.Kind())
			v.logger.Debug("request validation failed",
				zap.String("shape", shape.Name()),
				zap.String("kind", kind),
				zap.Int("errors", len(errs)),
			)
			if v.metrics != nil {
				v.metrics.RecordValidationFailure(shape.Name(), kind)
			}
			response.Abort(c, errs.AppError())
			return
		}

		c.Set(ContextValidatedKey, out)
		c.Next()
	}
}

// Validated returns the payload stored by Validate.
func Validated(c *gin.Context) (map[string]any, bool) {
	value, exists := c.Get(ContextValidatedKey)
	if !exists {
		return nil, false
	}
	out, ok := value.(map[string]any)
	return out, ok
}

// Bind decodes the validated payload into dst.
func Bind(c *gin.Context, dst any) error {
	out, ok := Validated(c)
	if !ok {
		return appErrors.Clone(appErrors.ErrInternal, "request was not validated")
	}
	if err := validation.Decode(out, dst); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	return nil
}

func collect(c *gin.Context, source Source) (any, error) {
	switch source {
	case SourceQuery:
		return queryInput(c), nil
	case SourceEnvelope:
		body, err := bodyInput(c)
		if err != nil {
			return nil, err
		}
		envelope := map[string]any{"query": queryInput(c)}
		if body != nil {
			envelope["body"] = body
		}
		return envelope, nil
	default:
		return bodyInput(c)
	}
}

func queryInput(c *gin.Context) map[string]any {
	out := make(map[string]any)
	for key, values := range c.Request.URL.Query() {
		if len(values) == 1 {
			out[key] = values[0]
			continue
		}
		items := make([]any, len(values))
		for i, v := range values {
			items[i] = v
		}
		out[key] = items
	}
	for _, p := range c.Params {
		out[p.Key] = p.Value
	}
	return out
}

func bodyInput(c *gin.Context) (any, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "request body must be valid JSON")
	}
	// the body must hold exactly one JSON value
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request body must contain a single JSON value")
	}
	return body, nil
}

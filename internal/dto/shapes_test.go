package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-classroom-api/pkg/validation"
)

const testID = "64b7f0c2a1d3e4f5a6b7c8d9"

func TestUpdateShapesRejectBlankMandatoryFields(t *testing.T) {
	engine := validation.NewEngine()
	cases := []struct {
		name  string
		shape *validation.ShapeSpec
		body  map[string]any
		field string
	}{
		{"assignment title", UpdateAssignmentShape, map[string]any{"title": ""}, "body.title"},
		{"career name", UpdateCareerShape, map[string]any{"name": ""}, "body.name"},
		{"subject name", UpdateSubjectShape, map[string]any{"name": "   "}, "body.name"},
		{"subject code", UpdateSubjectShape, map[string]any{"code": ""}, "body.code"},
		{"skill name", UpdateSkillShape, map[string]any{"name": ""}, "body.name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := engine.Validate(tc.shape, map[string]any{
				"query": map[string]any{"id": testID},
				"body":  tc.body,
			})
			require.Len(t, errs, 1)
			assert.Equal(t, tc.field, errs[0].Field)
			assert.Equal(t, validation.ConstraintViolation, errs[0].Kind)
		})
	}
}

func TestUpdateShapesAcceptOmittedAndClearableFields(t *testing.T) {
	engine := validation.NewEngine()

	out, errs := engine.Validate(UpdateSubjectShape, map[string]any{
		"query": map[string]any{"id": testID},
		"body":  map[string]any{"description": ""},
	})
	require.Empty(t, errs)
	assert.Equal(t, map[string]any{"description": ""}, out["body"])

	_, errs = engine.Validate(UpdateAssignmentShape, map[string]any{
		"query": map[string]any{"id": testID},
		"body":  map[string]any{"maxScore": "50"},
	})
	assert.Empty(t, errs)
}

package api

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type recurrencePattern struct {
	TrainerID   int      `validate:"required"`
	MaxCapacity int      `validate:"required,min=1"`
	RepeatDays  []string `validate:"required,min=1"`
}

func TestValidateStructReportsEveryFailingField(t *testing.T) {
	errs := ValidateStruct(recurrencePattern{})

	assert.Len(t, errs, 3)

	byField := map[string]ValidationError{}
	for _, e := range errs {
		byField[e.Field] = e
	}
	assert.Equal(t, "TrainerID is required", byField["TrainerID"].Message)
	assert.Equal(t, "required", byField["MaxCapacity"].Tag)
	assert.Equal(t, "RepeatDays is required", byField["RepeatDays"].Message)
}

func TestValidateStructMinTag(t *testing.T) {
	errs := ValidateStruct(recurrencePattern{TrainerID: 1, MaxCapacity: 1, RepeatDays: []string{}})

	assert.Len(t, errs, 1)
	assert.Equal(t, "RepeatDays", errs[0].Field)
	assert.Equal(t, "min", errs[0].Tag)
	assert.Equal(t, "RepeatDays must be at least 1", errs[0].Message)
}

func TestValidateStructValidInput(t *testing.T) {
	errs := ValidateStruct(recurrencePattern{TrainerID: 1, MaxCapacity: 10, RepeatDays: []string{"mon"}})
	assert.Empty(t, errs)
}

func TestRespondWithValidationErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithValidationErrors(c, []ValidationError{
		{Field: "MaxCapacity", Tag: "min", Message: "MaxCapacity must be at least 1"},
	})

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"validation failed"`)
	assert.Contains(t, w.Body.String(), `"MaxCapacity must be at least 1"`)
}

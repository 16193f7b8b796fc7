package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Name  string `json:"name" validate:"required,max=5"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestValidateStructReportsJSONNames(t *testing.T) {
	v := NewValidator()
	err := ValidateStruct(v, sampleInput{Email: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "email is email")
}

func TestValidateStructPasses(t *testing.T) {
	require.NoError(t, ValidateStruct(NewValidator(), sampleInput{Name: "QA"}))
}

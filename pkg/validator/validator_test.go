package validator_test

import (
	"fmt"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"testing"
)

func TestSimplestr(t *testing.T) {
	testCases := []struct {
		Str string `validate:"required"`
		Err bool
	}{
		{
			Str: "",
			Err: true,
		},
		{
			Str: "abc",
			Err: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Str, func(t *testing.T) {
			err := validator.Validate(testCase)
			if !testCase.Err {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	err := validator.Validate(nil)
	assert.Error(t, err)
}

func TestVar(t *testing.T) {
	assert.NoError(t, validator.Var("abc", "required"))
	assert.Error(t, validator.Var("", "required"))
}

func TestIsValidation(t *testing.T) {
	type in struct {
		Name string `validate:"required"`
	}

	assert.True(t, validator.IsValidation(fmt.Errorf("wrapped: %w", validator.Validate(in{}))))

	_, err := validator.String(nil, "name", false)
	assert.True(t, validator.IsValidation(err))

	assert.False(t, validator.IsValidation(fmt.Errorf("boom")))
}

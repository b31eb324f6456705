package oops

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

var SampleErrorValue = errors.New("some error occurred that you should handle")

type SampleErrorType struct {
	Message string
}

func (s SampleErrorType) Error() string {
	return s.Message
}

func init() {
	zerolog.ErrorStackMarshaler = ZerologStackMarshaler
}

func TestNew(t *testing.T) {
	t.Run("errors.Is", func(t *testing.T) {
		err := New(SampleErrorValue, "test error")
		if !errors.Is(err, SampleErrorValue) {
			t.Fatal("error did not appear to wrap the sample value")
		}
	})
	t.Run("errors.As", func(t *testing.T) {
		err := New(SampleErrorType{Message: "some fancy error type has occurred"}, "test error")
		var sErr SampleErrorType
		if !errors.As(err, &sErr) {
			t.Fatal("error did not appear to wrap the sample error type")
		}
	})
	t.Run("message", func(t *testing.T) {
		assert.Equal(t, "failed to load 3 rows: "+SampleErrorValue.Error(), New(SampleErrorValue, "failed to load %d rows", 3).Error())
		assert.Equal(t, "nothing wrapped", New(nil, "nothing wrapped").Error())
	})
	t.Run("stack starts at caller", func(t *testing.T) {
		err := New(nil, "where am I").(*Error)
		if assert.NotEmpty(t, err.Stack) {
			assert.True(t, strings.HasSuffix(err.Stack[0].Function, "TestNew.func4"), err.Stack[0].Function)
		}
	})
}

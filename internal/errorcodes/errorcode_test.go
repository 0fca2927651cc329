//nolint:all // test package
package errorcodes

import (
	"errors"
	"fmt"
	"testing"

	"github.com/andrei-cloud/go_paycalc/internal/calculator"
	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want CalcError
	}{
		{name: "nil", err: nil, want: Err00},
		{name: "wrapped pan", err: fmt.Errorf("emv: %w", cryptoutils.ErrInvalidPan), want: Err22},
		{name: "integrity", err: cryptoutils.ErrPinBlockIntegrity, want: Err20},
		{name: "key length", err: cryptoutils.ErrInvalidKeyLength, want: Err02},
		{name: "unknown calculator", err: calculator.ErrUnknownCalculator, want: Err86},
		{name: "unsupported", err: calculator.ErrUnsupportedOperation, want: Err68},
		{name: "direct code", err: Err25, want: Err25},
		{name: "fallback", err: errors.New("anything"), want: Err15},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FromError(tt.err))
		})
	}
}

func TestFromResult(t *testing.T) {
	t.Parallel()

	r := calculator.NewRegistry(calculator.Settings{})
	logger := zerolog.Nop()

	ok := r.Execute("kcv", calculator.OpValidate, calculator.Params{"key": "0123456789ABCDEF", "kcv": "D5D44F"}, logger)
	assert.Equal(t, Err00, FromResult(ok))

	mismatch := r.Execute("kcv", calculator.OpValidate, calculator.Params{"key": "0123456789ABCDEF", "kcv": "000000"}, logger)
	assert.Equal(t, Err01, FromResult(mismatch))

	failed := r.Execute("kcv", calculator.OpGenerate, calculator.Params{"key": "0011"}, logger)
	assert.Equal(t, Err02, FromResult(failed))
}

func TestErrorString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "22: Invalid account number", Err22.Error())
	assert.Equal(t, "22", Err22.CodeOnly())
}

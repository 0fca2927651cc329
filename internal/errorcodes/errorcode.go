// Package errorcodes maps calculator errors onto two-character response codes.
// CalcError holds the code and human-readable description.
package errorcodes

import (
	"errors"

	"github.com/andrei-cloud/go_paycalc/internal/calculator"
	"github.com/andrei-cloud/go_paycalc/pkg/bitmap"
	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

// Predefined response codes.
var (
	Err00 = CalcError{"00", "No error"}
	Err01 = CalcError{"01", "Verification failure"}
	Err02 = CalcError{"02", "Key inappropriate length for algorithm"}
	Err15 = CalcError{
		"15",
		"Invalid input data (invalid format, invalid characters, or not enough data provided)",
	}
	Err20 = CalcError{"20", "PIN block does not contain valid values"}
	Err21 = CalcError{"21", "Invalid index value, or index/block count would cause an overflow condition"}
	Err22 = CalcError{"22", "Invalid account number"}
	Err24 = CalcError{"24", "PIN is fewer than 4 or more than 12 digits in length"}
	Err25 = CalcError{"25", "Decimalization Table error"}
	Err41 = CalcError{"41", "Internal hardware/software error"}
	Err67 = CalcError{"67", "Command not licensed"}
	Err68 = CalcError{"68", "Command has been disabled"}
	Err80 = CalcError{"80", "Data length error"}
	Err86 = CalcError{"86", "Unknown calculator"}
)

// CalcError represents a calculator error with its code and description.
type CalcError struct {
	Code        string // two-character error code
	Description string // human-readable description
}

// Error implements the Go error interface: "<Code>: <Description>".
func (e CalcError) Error() string {
	return e.Code + ": " + e.Description
}

// CodeOnly returns only the error code (e.g., "68"), for embedding in responses.
func (e CalcError) CodeOnly() string {
	return e.Code
}

var mapping = []struct {
	target error
	code   CalcError
}{
	{cryptoutils.ErrInvalidKeyLength, Err02},
	{cryptoutils.ErrInvalidBlockSize, Err80},
	{cryptoutils.ErrEmptyData, Err80},
	{cryptoutils.ErrInvalidPan, Err22},
	{cryptoutils.ErrInvalidPinLength, Err24},
	{cryptoutils.ErrPinLengthMismatch, Err24},
	{cryptoutils.ErrInvalidDecimalizationTable, Err25},
	{cryptoutils.ErrInvalidPvki, Err21},
	{cryptoutils.ErrInvalidAtc, Err21},
	{cryptoutils.ErrPinBlockIntegrity, Err20},
	{calculator.ErrUnknownCalculator, Err86},
	{calculator.ErrUnknownOperation, Err67},
	{calculator.ErrUnsupportedOperation, Err68},
	{calculator.ErrInternal, Err41},
	{bitmap.ErrInvalidBitmap, Err15},
	{bitmap.ErrInvalidField, Err15},
}

// FromError returns the response code for err. nil maps to 00 and errors without a
// specific code to 15.
func FromError(err error) CalcError {
	if err == nil {
		return Err00
	}
	var ce CalcError
	if errors.As(err, &ce) {
		return ce
	}
	for _, m := range mapping {
		if errors.Is(err, m.target) {
			return m.code
		}
	}

	return Err15
}

// FromResult returns the response code of a calculator result. A successful validation
// that did not match reports 01.
func FromResult(res calculator.Result) CalcError {
	if !res.Success {
		return FromError(res.Err())
	}
	if res.Data["valid"] == "false" {
		return Err01
	}

	return Err00
}

package cryptoutils

import "errors"

// Errors shared by every calculator package. Callers match them with errors.Is.
var (
	ErrInvalidKeyLength           = errors.New("invalid key length")
	ErrInvalidBlockSize           = errors.New("data length is not a multiple of the block size")
	ErrInvalidPan                 = errors.New("invalid pan")
	ErrInvalidPinLength           = errors.New("pin must be 4 to 12 digits")
	ErrInvalidDecimalizationTable = errors.New("invalid decimalization table")
	ErrInvalidPvki                = errors.New("pvki must be a single digit")
	ErrInvalidAtc                 = errors.New("atc out of range")
	ErrPinBlockIntegrity          = errors.New("pin block integrity check failed")
	ErrEmptyData                  = errors.New("empty data")
	ErrPinLengthMismatch          = errors.New("offset length does not match pin length")
	ErrInvalidValidationData      = errors.New("invalid validation data")
	ErrNonceRequired              = errors.New("nonce or random source required")
	ErrInvalidHex                 = errors.New("invalid hex string")
)

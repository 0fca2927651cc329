package verification

import (
	"crypto/subtle"
	"fmt"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

// naturalDigits enciphers the validation block under pdk and decimalizes the result
// into 16 digit values.
func naturalDigits(pdk []byte, pan string, vd ValidationData, dt DecimalizationTable) ([]byte, error) {
	if err := dt.validate(); err != nil {
		return nil, err
	}
	if err := cryptoutils.CheckPAN(pan, cryptoutils.PAN_MIN_LENGTH); err != nil {
		return nil, err
	}
	block, err := vd.block(pan)
	if err != nil {
		return nil, err
	}
	enc, err := cryptoutils.Encrypt(cryptoutils.ECB, block, pdk)
	if err != nil {
		return nil, err
	}

	return dt.decimalize(enc), nil
}

// NaturalPin returns the IBM 3624 natural PIN of the given length.
func NaturalPin(pdk []byte, pan string, length int, vd ValidationData, dt DecimalizationTable) (string, error) {
	if length < cryptoutils.PIN_MIN_LENGTH || length > cryptoutils.PIN_MAX_LENGTH {
		return "", fmt.Errorf("%w: length %d", cryptoutils.ErrInvalidPinLength, length)
	}
	dec, err := naturalDigits(pdk, pan, vd, dt)
	if err != nil {
		return "", err
	}

	return digitsString(dec[:length]), nil
}

// ComputeOffset returns the IBM 3624 offset of pin:
// offset[i] = (natural[i] - pin[i]) mod 10. The offset has the length of the PIN.
func ComputeOffset(pdk []byte, pan, pin string, vd ValidationData, dt DecimalizationTable) (string, error) {
	if err := cryptoutils.CheckPIN(pin); err != nil {
		return "", err
	}
	dec, err := naturalDigits(pdk, pan, vd, dt)
	if err != nil {
		return "", err
	}
	offset := make([]byte, len(pin))
	for i := range pin {
		offset[i] = (dec[i] + 10 - (pin[i] - '0')) % 10
	}

	return digitsString(offset), nil
}

// RecoverPin is the inverse of ComputeOffset: pin[i] = (natural[i] - offset[i]) mod 10.
func RecoverPin(pdk []byte, pan, offset string, vd ValidationData, dt DecimalizationTable) (string, error) {
	if err := cryptoutils.CheckPIN(offset); err != nil {
		return "", fmt.Errorf("offset: %w", err)
	}
	dec, err := naturalDigits(pdk, pan, vd, dt)
	if err != nil {
		return "", err
	}
	pin := make([]byte, len(offset))
	for i := range offset {
		pin[i] = (dec[i] + 10 - (offset[i] - '0')) % 10
	}

	return digitsString(pin), nil
}

// VerifyOffset reports whether offset is the offset of pin.
func VerifyOffset(pdk []byte, pan, pin, offset string, vd ValidationData, dt DecimalizationTable) (bool, error) {
	if len(offset) != len(pin) {
		return false, fmt.Errorf("%w: offset %d digits, pin %d digits", cryptoutils.ErrPinLengthMismatch, len(offset), len(pin))
	}
	want, err := ComputeOffset(pdk, pan, pin, vd, dt)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare([]byte(want), []byte(offset)) == 1, nil
}

func digitsString(values []byte) string {
	out := make([]byte, len(values))
	for i, v := range values {
		out[i] = '0' + v
	}

	return string(out)
}

package verification

import (
	"crypto/subtle"
	"fmt"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

const (
	PVV_PAN_LENGTH = 11
	PVV_PIN_LENGTH = 4
	PVV_LENGTH     = 4
)

// ComputePvv generates the 4-digit Visa PIN Verification Value. The transformed security
// parameter is the rightmost 11 PAN digits excluding the check digit, the PVKI and the
// first 4 PIN digits. It is enciphered under pvk and decimalized in two passes.
func ComputePvv(pvk []byte, pan, pin, pvki string) (string, error) {
	if err := cryptoutils.CheckPAN(pan, PVV_PAN_LENGTH+1); err != nil {
		return "", err
	}
	if err := cryptoutils.CheckPIN(pin); err != nil {
		return "", err
	}
	if len(pvki) != 1 || !cryptoutils.IsDigits(pvki) {
		return "", fmt.Errorf("%w: got %q", cryptoutils.ErrInvalidPvki, pvki)
	}

	pan11 := pan[len(pan)-1-PVV_PAN_LENGTH : len(pan)-1]
	tsp, err := cryptoutils.PackBCD(pan11 + pvki + pin[:PVV_PIN_LENGTH])
	if err != nil {
		return "", err
	}
	enc, err := cryptoutils.Encrypt(cryptoutils.ECB, tsp, pvk)
	if err != nil {
		return "", err
	}

	return cryptoutils.DecimalizeDigits(cryptoutils.Raw2Str(enc), PVV_LENGTH), nil
}

// ValidatePvv recomputes the PVV and compares it in constant time.
func ValidatePvv(pvk []byte, pan, pin, pvki, pvv string) (bool, error) {
	want, err := ComputePvv(pvk, pan, pin, pvki)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare([]byte(want), []byte(pvv)) == 1, nil
}

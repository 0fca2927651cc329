package verification

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

const (
	CVK_LENGTH          = 16
	EXP_DATE_LENGTH     = 4
	SERVICE_CODE_LENGTH = 3
	CVV_DATA_LENGTH     = 32
	CVV_LENGTH          = 3
	CVV_PAN_MIN_LENGTH  = 13
)

// ComputeCvv calculates the Visa CVV (also CVC, iCVV and CVV2 depending on the service
// code and expiry supplied). cvk is a double length key; expiry is YYMM.
func ComputeCvv(cvk []byte, pan, expiry, serviceCode string) (string, error) {
	if len(cvk) != CVK_LENGTH {
		return "", fmt.Errorf("%w: cvk must be %d bytes, got %d", cryptoutils.ErrInvalidKeyLength, CVK_LENGTH, len(cvk))
	}
	if err := cryptoutils.CheckPAN(pan, CVV_PAN_MIN_LENGTH); err != nil {
		return "", err
	}
	if len(expiry) != EXP_DATE_LENGTH || !cryptoutils.IsDigits(expiry) {
		return "", fmt.Errorf("invalid expiration date %q: must be 4 digits", expiry)
	}
	if len(serviceCode) != SERVICE_CODE_LENGTH || !cryptoutils.IsDigits(serviceCode) {
		return "", fmt.Errorf("invalid service code %q: must be 3 digits", serviceCode)
	}

	data := pan + expiry + serviceCode
	data += strings.Repeat("0", CVV_DATA_LENGTH-len(data))
	raw, err := cryptoutils.PackBCD(data)
	if err != nil {
		return "", err
	}
	keyA := cvk[:cryptoutils.KEY_LENGTH_SINGLE]

	// Block 1 under key A, XOR block 2, then 3DES with A,B.
	b1, err := cryptoutils.Encrypt(cryptoutils.ECB, raw[:8], keyA)
	if err != nil {
		return "", err
	}
	mixed, err := cryptoutils.XORBytes(b1, raw[8:])
	if err != nil {
		return "", err
	}
	out, err := cryptoutils.Encrypt(cryptoutils.ECB, mixed, cvk)
	if err != nil {
		return "", err
	}

	return cryptoutils.DecimalizeDigits(cryptoutils.Raw2Str(out), CVV_LENGTH), nil
}

// ValidateCvv recomputes the CVV and compares it in constant time.
func ValidateCvv(cvk []byte, pan, expiry, serviceCode, cvv string) (bool, error) {
	want, err := ComputeCvv(cvk, pan, expiry, serviceCode)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare([]byte(want), []byte(cvv)) == 1, nil
}

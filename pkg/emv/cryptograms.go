package emv

import (
	"crypto/subtle"
	"fmt"
	"slices"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
	"github.com/andrei-cloud/go_paycalc/pkg/mac"
)

const (
	ARC_LENGTH        = 2
	CSU_LENGTH        = 4
	MAX_PROP_AUTH_LEN = 8
	ARPC2_LENGTH      = 4
	CRYPTOGRAM_LENGTH = 8
)

// GenerateARQC computes the application cryptogram over data with the session key.
// DES schemes use ISO 9797-1 algorithm 3 with padding method 2; the AES scheme uses CMAC.
func GenerateARQC(scheme Scheme, sessionKey, data []byte) ([]byte, error) {
	s, err := lookup(scheme)
	if err != nil {
		return nil, err
	}
	if s.aes {
		return mac.Compute(sessionKey, data, mac.Algorithm5, mac.WithAES(), mac.WithSize(CRYPTOGRAM_LENGTH))
	}

	return mac.Compute(sessionKey, data, mac.Algorithm3, mac.WithPadding(mac.Method2))
}

// VerifyARQC recomputes the cryptogram over data and compares it with arqc in constant time.
func VerifyARQC(scheme Scheme, sessionKey, data, arqc []byte) (bool, error) {
	want, err := GenerateARQC(scheme, sessionKey, data)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(want, arqc) == 1, nil
}

// GenerateARPC1 computes the ARPC with method 1: E(sk, ARQC xor (ARC || 00..00)).
func GenerateARPC1(sessionKey, arqc, arc []byte) ([]byte, error) {
	if len(arqc) != CRYPTOGRAM_LENGTH {
		return nil, fmt.Errorf("%w: arqc must be %d bytes", cryptoutils.ErrInvalidBlockSize, CRYPTOGRAM_LENGTH)
	}
	if len(arc) != ARC_LENGTH {
		return nil, fmt.Errorf("authorisation response code must be %d bytes, got %d", ARC_LENGTH, len(arc))
	}
	y, err := cryptoutils.XORBytes(arqc, slices.Concat(arc, make([]byte, CRYPTOGRAM_LENGTH-ARC_LENGTH)))
	if err != nil {
		return nil, err
	}

	return cryptoutils.Encrypt(cryptoutils.ECB, y, sessionKey)
}

// GenerateARPC2 computes the 4-byte ARPC with method 2 over ARQC || CSU || proprietary
// authentication data.
func GenerateARPC2(sessionKey, arqc, csu, propAuthData []byte) ([]byte, error) {
	if len(arqc) != CRYPTOGRAM_LENGTH {
		return nil, fmt.Errorf("%w: arqc must be %d bytes", cryptoutils.ErrInvalidBlockSize, CRYPTOGRAM_LENGTH)
	}
	if len(csu) != CSU_LENGTH {
		return nil, fmt.Errorf("card status update must be %d bytes, got %d", CSU_LENGTH, len(csu))
	}
	if len(propAuthData) > MAX_PROP_AUTH_LEN {
		return nil, fmt.Errorf("proprietary authentication data exceeds %d bytes", MAX_PROP_AUTH_LEN)
	}

	return mac.Compute(
		sessionKey,
		slices.Concat(arqc, csu, propAuthData),
		mac.Algorithm3,
		mac.WithPadding(mac.Method2),
		mac.WithSize(ARPC2_LENGTH),
	)
}

package emv

import (
	"crypto/aes"
	"crypto/sha1"
	"fmt"
	"slices"
	"strings"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

// --- Card key derivation (EMV Book 2 A1.4) ---------------------------------.

// optionA: Y is the rightmost 16 digits of PAN || PSN, left padded with zeros.
// UDK = E(Y) || E(Y xor FF..FF) with odd parity.
func optionA(mk []byte, pan, psn string) ([]byte, []byte, error) {
	x := pan + psn
	if len(x) < 16 {
		x = strings.Repeat("0", 16-len(x)) + x
	}
	y, err := cryptoutils.PackBCD(x[len(x)-16:])
	if err != nil {
		return nil, nil, err
	}
	udk, err := tdesVariants(mk, y)
	if err != nil {
		return nil, nil, err
	}

	return udk, y, nil
}

// optionB hashes PAN || PSN with SHA-1 for PANs longer than 16 digits and decimalizes the
// hash into Y. Shorter PANs use option A.
func optionB(mk []byte, pan, psn string) ([]byte, []byte, error) {
	if len(pan) <= 16 {
		return optionA(mk, pan, psn)
	}
	x := pan + psn
	if len(x)%2 != 0 {
		x = "0" + x
	}
	packed, err := cryptoutils.PackBCD(x)
	if err != nil {
		return nil, nil, err
	}
	h := sha1.Sum(packed)
	y, err := cryptoutils.PackBCD(cryptoutils.DecimalizeDigits(cryptoutils.Raw2Str(h[:]), 16))
	if err != nil {
		return nil, nil, err
	}
	udk, err := tdesVariants(mk, y)
	if err != nil {
		return nil, nil, err
	}

	return udk, y, nil
}

// optionC is the AES variant: Y is PAN || PSN left padded with zeros to 16 bytes.
// AES-128 keys give E(Y); longer keys the leftmost bytes of E(Y) || E(Y xor FF..FF).
func optionC(mk []byte, pan, psn string) ([]byte, []byte, error) {
	x := pan + psn
	x = strings.Repeat("0", 2*aes.BlockSize-len(x)) + x
	y, err := cryptoutils.PackBCD(x)
	if err != nil {
		return nil, nil, err
	}

	blocks := [][]byte{y}
	if len(mk) > aes.BlockSize {
		blocks = append(blocks, invert(y))
	}
	out, err := encryptBlocks(mk, blocks, true)
	if err != nil {
		return nil, nil, err
	}

	return out[:min(len(mk), len(out))], y, nil
}

// templateUDK enciphers the rightmost 11 PAN digits, the PSN and an F pad once.
func templateUDK(mk []byte, pan, psn string) ([]byte, []byte, error) {
	data, err := cryptoutils.Str2Raw(pan[len(pan)-EMV_PAN_MIN_LENGTH:] + psn + "FFF")
	if err != nil {
		return nil, nil, err
	}
	udk, err := cryptoutils.Encrypt(cryptoutils.ECB, data, mk)
	if err != nil {
		return nil, nil, err
	}

	return udk, data, nil
}

func tdesVariants(mk, y []byte) ([]byte, error) {
	z, err := encryptBlocks(mk, [][]byte{y, invert(y)}, false)
	if err != nil {
		return nil, err
	}

	return cryptoutils.FixKeyParity(z), nil
}

func invert(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[i] = b[i] ^ 0xFF
	}

	return out
}

// --- Session key derivation ------------------------------------------------.

// commonSession is the EMV common session key: r = ATC || 00..00.
func commonSession(aesKey bool) func([]byte, uint16, []byte) ([]byte, []byte, error) {
	return func(udk []byte, atc uint16, _ []byte) ([]byte, []byte, error) {
		size := cryptoutils.DES_BLOCK_SIZE
		if aesKey {
			size = aes.BlockSize
		}
		r := make([]byte, size)
		copy(r, atcBytes(atc))
		sk, err := commonSessionKey(udk, r, aesKey)
		if err != nil {
			return nil, nil, err
		}

		return sk, r, nil
	}
}

// masterCardSessionKey is the MasterCard SKD: r = ATC || 00 00 || UN, giving the blocks
// ATC || F0 || 00 || UN and ATC || 0F || 00 || UN. A zero UN yields the common session key.
func masterCardSessionKey(udk []byte, atc uint16, un []byte) ([]byte, []byte, error) {
	if un == nil {
		un = make([]byte, UN_LENGTH)
	}
	if len(un) != UN_LENGTH {
		return nil, nil, fmt.Errorf("unpredictable number must be %d bytes, got %d", UN_LENGTH, len(un))
	}
	r := slices.Concat(atcBytes(atc), []byte{0x00, 0x00}, un)
	sk, err := commonSessionKey(udk, r, false)
	if err != nil {
		return nil, nil, err
	}

	return sk, r, nil
}

// templateSessionKey enciphers ATC || F0F0F0F0F0F0 once under the card key.
func templateSessionKey(udk []byte, atc uint16, _ []byte) ([]byte, []byte, error) {
	r := slices.Concat(atcBytes(atc), []byte{0xF0, 0xF0, 0xF0, 0xF0, 0xF0, 0xF0})
	sk, err := cryptoutils.Encrypt(cryptoutils.ECB, r, udk)
	if err != nil {
		return nil, nil, err
	}

	return sk, r, nil
}

// Package cryptoutils provides the DES/3DES block cipher primitive and the binary helpers
// shared by the payment calculators: hex conversion, padding, parity and decimalization.
package cryptoutils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

const (
	ISO9797_METHOD2_PADDING_BYTE = 0x80
	KEY_LENGTH_SINGLE            = 8
	KEY_LENGTH_DOUBLE            = 16
	KEY_LENGTH_TRIPLE            = 24
	DES_BLOCK_SIZE               = 8
	PAN_MIN_LENGTH               = 8
	PAN_MAX_LENGTH               = 19
	PIN_MIN_LENGTH               = 4
	PIN_MAX_LENGTH               = 12
	HEX_TO_DECIMAL_OFFSET        = 10
	XOR_BIT_FLIP                 = 1
)

// Raw2Str converts raw binary data to an uppercase hex string.
func Raw2Str(raw []byte) string {
	return strings.ToUpper(hex.EncodeToString(raw))
}

// Str2Raw decodes a hex string. Surrounding whitespace is ignored.
func Str2Raw(s string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}

	return raw, nil
}

// PrepareTripleDESKey extends a single or double length key to triple length.
// Triple length keys are returned unchanged.
func PrepareTripleDESKey(key []byte) []byte {
	var key24 []byte
	switch len(key) {
	case KEY_LENGTH_SINGLE:
		key24 = make([]byte, KEY_LENGTH_TRIPLE)
		copy(key24, key)
		copy(key24[KEY_LENGTH_SINGLE:], key)
		copy(key24[KEY_LENGTH_DOUBLE:], key)
	case KEY_LENGTH_DOUBLE:
		key24 = make([]byte, KEY_LENGTH_TRIPLE)
		copy(key24, key)
		copy(key24[KEY_LENGTH_DOUBLE:], key[:KEY_LENGTH_SINGLE])
	default:
		key24 = key
	}

	return key24
}

// XORBytes returns a^b for equal-length slices.
func XORBytes(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("xor: length mismatch %d vs %d", len(a), len(b))
	}
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}

	return out, nil
}

// Chunk splits b into blocks of size sz. The last block may be shorter.
func Chunk(b []byte, sz int) [][]byte {
	if sz <= 0 {
		return nil
	}
	n := (len(b) + sz - 1) / sz
	out := make([][]byte, n)
	for i := range n {
		start := i * sz
		end := min(start+sz, len(b))
		out[i] = b[start:end]
	}

	return out
}

// PadISO9797Method1 appends the smallest number of 0x00 bytes that makes data a multiple
// of blockSize. Empty data becomes one zero block.
func PadISO9797Method1(data []byte, blockSize int) []byte {
	remainder := len(data) % blockSize
	if remainder == 0 && len(data) > 0 {
		return slices.Clone(data)
	}
	if len(data) == 0 {
		return make([]byte, blockSize)
	}

	return slices.Concat(data, make([]byte, blockSize-remainder))
}

// PadISO9797Method2 appends 0x80 and then pads with method 1.
func PadISO9797Method2(data []byte, blockSize int) []byte {
	return PadISO9797Method1(slices.Concat(data, []byte{ISO9797_METHOD2_PADDING_BYTE}), blockSize)
}

// CheckKeyParity returns true if every byte in key has odd parity.
func CheckKeyParity(key []byte) bool {
	for _, b := range key {
		if !oddParity(b) {
			return false
		}
	}

	return true
}

// FixKeyParity returns a copy of key with every byte adjusted to odd parity.
func FixKeyParity(key []byte) []byte {
	res := make([]byte, len(key))
	for i, b := range key {
		if oddParity(b) {
			res[i] = b
		} else {
			res[i] = b ^ XOR_BIT_FLIP
		}
	}

	return res
}

func oddParity(b byte) bool {
	parity := false
	for x := b; x != 0; x &= x - 1 {
		parity = !parity
	}

	return parity
}

// GenerateKey returns a random DES key of 8, 16 or 24 bytes with odd parity.
func GenerateKey(length int) ([]byte, error) {
	if length != KEY_LENGTH_SINGLE && length != KEY_LENGTH_DOUBLE && length != KEY_LENGTH_TRIPLE {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKeyLength, length)
	}
	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate random key: %w", err)
	}

	return FixKeyParity(key), nil
}

// DecimalizeDigits extracts up to length decimal digits from a hex string. The first pass
// takes the digits 0-9 in order; if that is not enough, a second pass converts A-F to 0-5.
func DecimalizeDigits(hexStr string, length int) string {
	var digits strings.Builder
	for _, c := range hexStr {
		if digits.Len() >= length {
			break
		}
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	if digits.Len() < length {
		for _, c := range strings.ToUpper(hexStr) {
			if digits.Len() >= length {
				break
			}
			if c >= 'A' && c <= 'F' {
				digits.WriteByte(byte('0' + c - 'A'))
			}
		}
	}

	return digits.String()
}

// IsDigits reports whether s is non-empty and made of ASCII digits only.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// CheckPAN validates that pan is numeric with at least minLen and at most 19 digits.
func CheckPAN(pan string, minLen int) error {
	if !IsDigits(pan) {
		return fmt.Errorf("%w: must contain digits only", ErrInvalidPan)
	}
	if len(pan) < minLen || len(pan) > PAN_MAX_LENGTH {
		return fmt.Errorf("%w: length %d outside %d..%d", ErrInvalidPan, len(pan), minLen, PAN_MAX_LENGTH)
	}

	return nil
}

// CheckPIN validates a clear PIN of 4 to 12 digits.
func CheckPIN(pin string) error {
	if !IsDigits(pin) || len(pin) < PIN_MIN_LENGTH || len(pin) > PIN_MAX_LENGTH {
		return fmt.Errorf("%w: got %q", ErrInvalidPinLength, strings.Repeat("*", len(pin)))
	}

	return nil
}

// PackBCD converts an even-length string of hex digits into bytes.
func PackBCD(digits string) ([]byte, error) {
	if len(digits)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of digits", ErrInvalidHex)
	}

	return Str2Raw(digits)
}

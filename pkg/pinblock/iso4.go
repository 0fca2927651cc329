package pinblock

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"strings"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

const (
	iso4FieldNibbles = 32
	iso4RandomBytes  = 8
)

// ISO Format 4. The plain PIN field is 4 || len || PIN || A fill (16 nibbles) followed by
// 8 random bytes. The PAN field is M || PAN || 0 pad where M is the PAN length minus 12.
// The block is E(K, E(K, pinField) XOR panField).
func encodeISO4(pin, pan string, o *options) ([]byte, error) {
	block, err := iso4Cipher(o)
	if err != nil {
		return nil, err
	}
	random, err := o.randomBytes(iso4RandomBytes)
	if err != nil {
		return nil, err
	}
	plain, err := cryptoutils.Str2Raw(pinField('4', pin, strings.Repeat("A", blockNibbles)))
	if err != nil {
		return nil, err
	}
	plain = append(plain, random...)

	panField, err := iso4PanField(pan)
	if err != nil {
		return nil, err
	}

	intermediate := make([]byte, aes.BlockSize)
	block.Encrypt(intermediate, plain)
	mixed, err := cryptoutils.XORBytes(intermediate, panField)
	if err != nil {
		return nil, err
	}
	out := make([]byte, aes.BlockSize)
	block.Encrypt(out, mixed)

	return out, nil
}

func decodeISO4(encrypted []byte, pan string, o *options) (string, error) {
	block, err := iso4Cipher(o)
	if err != nil {
		return "", err
	}
	panField, err := iso4PanField(pan)
	if err != nil {
		return "", err
	}

	mixed := make([]byte, aes.BlockSize)
	block.Decrypt(mixed, encrypted)
	intermediate, err := cryptoutils.XORBytes(mixed, panField)
	if err != nil {
		return "", err
	}
	plain := make([]byte, aes.BlockSize)
	block.Decrypt(plain, intermediate)

	return decodePinField(cryptoutils.Raw2Str(plain), '4', func(c byte) bool { return c == 'A' }, blockNibbles)
}

func iso4Cipher(o *options) (cipher.Block, error) {
	if o.key == nil {
		return nil, fmt.Errorf("%w: iso4 requires an aes key", cryptoutils.ErrInvalidKeyLength)
	}
	block, err := aes.NewCipher(o.key)
	if err != nil {
		return nil, fmt.Errorf("%w: aes key of %d bytes", cryptoutils.ErrInvalidKeyLength, len(o.key))
	}

	return block, nil
}

func iso4PanField(pan string) ([]byte, error) {
	field := fmt.Sprintf("%X%s", len(pan)-12, pan)
	field += strings.Repeat("0", iso4FieldNibbles-len(field))

	return cryptoutils.Str2Raw(field)
}

package pinblock

import (
	"fmt"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

// Zone is one side of a PIN translation: the key the block is enciphered under and its format.
// ISO4 zones carry an AES key, the others a DES/3DES key.
type Zone struct {
	Key    []byte
	Format Format
}

// Encrypt packs pin for the zone and enciphers the block.
func (z Zone) Encrypt(pin, pan string, opts ...Option) ([]byte, error) {
	if z.Format == ISO4 {
		return Pack(ISO4, pin, pan, append(opts, WithKey(z.Key))...)
	}
	block, err := Pack(z.Format, pin, pan, opts...)
	if err != nil {
		return nil, err
	}

	return cryptoutils.Encrypt(cryptoutils.ECB, block, z.Key)
}

// Decrypt deciphers an encrypted PIN block of the zone and returns the PIN.
func (z Zone) Decrypt(encrypted []byte, pan string) (string, error) {
	if z.Format == ISO4 {
		return Unpack(ISO4, encrypted, pan, WithKey(z.Key))
	}
	if len(encrypted) != z.Format.BlockSize() {
		return "", fmt.Errorf("%w: %d bytes", cryptoutils.ErrInvalidBlockSize, len(encrypted))
	}
	block, err := cryptoutils.Decrypt(cryptoutils.ECB, encrypted, z.Key)
	if err != nil {
		return "", err
	}

	return Unpack(z.Format, block, pan)
}

// Translate re-enciphers a PIN block from the source zone to the destination zone.
// opts supply the fill the destination format needs.
func Translate(encrypted []byte, pan string, src, dst Zone, opts ...Option) ([]byte, error) {
	pin, err := src.Decrypt(encrypted, pan)
	if err != nil {
		return nil, fmt.Errorf("source zone: %w", err)
	}
	out, err := dst.Encrypt(pin, pan, opts...)
	if err != nil {
		return nil, fmt.Errorf("destination zone: %w", err)
	}

	return out, nil
}

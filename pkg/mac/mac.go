// Package mac computes ISO/IEC 9797-1 message authentication codes.
package mac

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"

	"github.com/aead/cmac"
	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

// Algorithm is an ISO/IEC 9797-1 MAC algorithm number.
type Algorithm int

const (
	Algorithm1 Algorithm = 1 // CBC-MAC.
	Algorithm3 Algorithm = 3 // Retail MAC (ANSI X9.19).
	Algorithm5 Algorithm = 5 // CMAC.
)

// Padding is an ISO/IEC 9797-1 padding method.
type Padding int

const (
	Method1 Padding = 1 // zero bytes.
	Method2 Padding = 2 // 0x80 then zero bytes.
)

const MIN_MAC_SIZE = 4

type options struct {
	padding Padding
	size    int
	aes     bool
}

// Option tunes Compute.
type Option func(*options)

// WithPadding selects the padding method for algorithms 1 and 3. Method1 is the default.
func WithPadding(p Padding) Option {
	return func(o *options) {
		o.padding = p
	}
}

// WithSize truncates the MAC to n bytes (4 up to the block size).
func WithSize(n int) Option {
	return func(o *options) {
		o.size = n
	}
}

// WithAES makes Algorithm5 run over AES instead of DES/3DES.
func WithAES() Option {
	return func(o *options) {
		o.aes = true
	}
}

// Compute returns the MAC of data under key.
//   - Algorithm1: data is padded and CBC enciphered with IV zero under the full key.
//   - Algorithm3: the chain runs under single DES K1; the last block is then deciphered
//     under K2 and enciphered under K3 (K1 for a double length key).
//   - Algorithm5: CMAC, no padding option.
func Compute(key, data []byte, alg Algorithm, opts ...Option) ([]byte, error) {
	o := options{padding: Method1}
	for _, opt := range opts {
		opt(&o)
	}
	if len(data) == 0 {
		return nil, cryptoutils.ErrEmptyData
	}

	var (
		out []byte
		err error
	)
	switch alg {
	case Algorithm1:
		out, err = algorithm1(key, pad(data, o.padding))
	case Algorithm3:
		out, err = algorithm3(key, pad(data, o.padding))
	case Algorithm5:
		out, err = algorithm5(key, data, o.aes)
	default:
		return nil, fmt.Errorf("unsupported mac algorithm %d", alg)
	}
	if err != nil {
		return nil, err
	}

	if o.size == 0 {
		return out, nil
	}
	if o.size < MIN_MAC_SIZE || o.size > len(out) {
		return nil, fmt.Errorf("mac size %d outside %d..%d", o.size, MIN_MAC_SIZE, len(out))
	}

	return out[:o.size], nil
}

// Verify recomputes the MAC and compares it with want in constant time. The MAC size is
// taken from want.
func Verify(key, data, want []byte, alg Algorithm, opts ...Option) (bool, error) {
	got, err := Compute(key, data, alg, append(opts, WithSize(len(want)))...)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func pad(data []byte, p Padding) []byte {
	if p == Method2 {
		return cryptoutils.PadISO9797Method2(data, cryptoutils.DES_BLOCK_SIZE)
	}

	return cryptoutils.PadISO9797Method1(data, cryptoutils.DES_BLOCK_SIZE)
}

func algorithm1(key, padded []byte) ([]byte, error) {
	enc, err := cryptoutils.Encrypt(cryptoutils.CBC, padded, key)
	if err != nil {
		return nil, err
	}

	return enc[len(enc)-cryptoutils.DES_BLOCK_SIZE:], nil
}

func algorithm3(key, padded []byte) ([]byte, error) {
	if len(key) != cryptoutils.KEY_LENGTH_DOUBLE && len(key) != cryptoutils.KEY_LENGTH_TRIPLE {
		return nil, fmt.Errorf("%w: algorithm 3 needs a double or triple key, got %d bytes", cryptoutils.ErrInvalidKeyLength, len(key))
	}
	k1 := key[:8]
	k2 := key[8:16]
	k3 := k1
	if len(key) == cryptoutils.KEY_LENGTH_TRIPLE {
		k3 = key[16:24]
	}

	h, err := algorithm1(k1, padded)
	if err != nil {
		return nil, err
	}
	if h, err = cryptoutils.Decrypt(cryptoutils.ECB, h, k2); err != nil {
		return nil, err
	}

	return cryptoutils.Encrypt(cryptoutils.ECB, h, k3)
}

func algorithm5(key, data []byte, useAES bool) ([]byte, error) {
	var (
		block cipher.Block
		err   error
	)
	if useAES {
		block, err = aes.NewCipher(key)
		if err != nil {
			err = fmt.Errorf("%w: aes key of %d bytes", cryptoutils.ErrInvalidKeyLength, len(key))
		}
	} else {
		block, err = cryptoutils.NewBlock(key)
	}
	if err != nil {
		return nil, err
	}

	h, err := cmac.New(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create cmac: %w", err)
	}
	h.Write(data)

	return h.Sum(nil), nil
}

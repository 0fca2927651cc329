package cryptoutils

import (
	"bytes"
	"crypto/cipher"
	"crypto/des"
	"fmt"
	"strings"

	"github.com/andreburgaud/crypt2go/ecb"
)

// Mode selects the block chaining mode.
type Mode int

const (
	ECB Mode = iota
	CBC
)

func (m Mode) String() string {
	switch m {
	case ECB:
		return "ECB"
	case CBC:
		return "CBC"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "ECB" or "CBC" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ECB", "":
		return ECB, nil
	case "CBC":
		return CBC, nil
	default:
		return 0, fmt.Errorf("unsupported cipher mode %q", s)
	}
}

// DefaultIV returns the all-zero IV used for CBC when none is supplied.
func DefaultIV() []byte {
	return make([]byte, DES_BLOCK_SIZE)
}

type options struct {
	iv []byte
}

// Option configures Encrypt and Decrypt.
type Option func(*options)

// WithIV sets the CBC initialization vector. It must be 8 bytes.
func WithIV(iv []byte) Option {
	return func(o *options) {
		o.iv = iv
	}
}

// NewBlock returns the DES based cipher for key: single DES for 8 bytes,
// K1,K2,K1 EDE for 16 bytes and K1,K2,K3 EDE for 24 bytes.
func NewBlock(key []byte) (cipher.Block, error) {
	switch len(key) {
	case KEY_LENGTH_SINGLE:
		return des.NewCipher(key)
	case KEY_LENGTH_DOUBLE, KEY_LENGTH_TRIPLE:
		return des.NewTripleDESCipher(PrepareTripleDESKey(key))
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidKeyLength, len(key))
	}
}

// Encrypt enciphers data under key. Data must be a non-empty multiple of 8 bytes;
// no padding is applied.
func Encrypt(mode Mode, data, key []byte, opts ...Option) ([]byte, error) {
	return crypt(mode, data, key, true, opts)
}

// Decrypt deciphers data under key. Data must be a non-empty multiple of 8 bytes.
func Decrypt(mode Mode, data, key []byte, opts ...Option) ([]byte, error) {
	return crypt(mode, data, key, false, opts)
}

func crypt(mode Mode, data, key []byte, encrypt bool, opts []Option) ([]byte, error) {
	o := options{iv: DefaultIV()}
	for _, opt := range opts {
		opt(&o)
	}

	block, err := NewBlock(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || len(data)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidBlockSize, len(data))
	}

	var bm cipher.BlockMode
	switch mode {
	case ECB:
		if encrypt {
			bm = ecb.NewECBEncrypter(block)
		} else {
			bm = ecb.NewECBDecrypter(block)
		}
	case CBC:
		if len(o.iv) != block.BlockSize() {
			return nil, fmt.Errorf("%w: iv must be %d bytes", ErrInvalidBlockSize, block.BlockSize())
		}
		if encrypt {
			bm = cipher.NewCBCEncrypter(block, o.iv)
		} else {
			bm = cipher.NewCBCDecrypter(block, o.iv)
		}
	default:
		return nil, fmt.Errorf("unsupported cipher mode %v", mode)
	}

	out := make([]byte, len(data))
	bm.CryptBlocks(out, data)

	return out, nil
}

// KeyLength classifies DES key material.
type KeyLength int

const (
	KeySingle KeyLength = KEY_LENGTH_SINGLE
	KeyDouble KeyLength = KEY_LENGTH_DOUBLE
	KeyTriple KeyLength = KEY_LENGTH_TRIPLE
)

func (k KeyLength) String() string {
	switch k {
	case KeySingle:
		return "single"
	case KeyDouble:
		return "double"
	case KeyTriple:
		return "triple"
	default:
		return "unknown"
	}
}

// KeyInfo describes the effective strength of a DES key.
type KeyInfo struct {
	Length    KeyLength // physical length
	Effective KeyLength
	Disguised bool // Effective is shorter than Length
}

// KeyLengthOf reports the physical and effective length of key. A triple key with K3 == K1
// is a double key in disguise and a key whose components are all equal is a single key in
// disguise. Unknown lengths report KeyLength(len(key)) without error.
func KeyLengthOf(key []byte) KeyInfo {
	info := KeyInfo{Length: KeyLength(len(key)), Effective: KeyLength(len(key))}
	parts := Chunk(key, KEY_LENGTH_SINGLE)

	switch len(key) {
	case KEY_LENGTH_DOUBLE:
		if bytes.Equal(parts[0], parts[1]) {
			info.Effective = KeySingle
		}
	case KEY_LENGTH_TRIPLE:
		switch {
		case bytes.Equal(parts[0], parts[1]) && bytes.Equal(parts[1], parts[2]):
			info.Effective = KeySingle
		case bytes.Equal(parts[0], parts[2]):
			info.Effective = KeyDouble
		}
	}
	info.Disguised = info.Effective != info.Length

	return info
}

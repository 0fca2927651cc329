package cryptoutils

import (
	"crypto/aes"
	"fmt"

	"github.com/aead/cmac"
)

const KCV_DEFAULT_LENGTH = 3

// KCV returns the first n bytes of the key encrypted over a zero block.
func KCV(key []byte, n int) ([]byte, error) {
	if n < 1 || n > DES_BLOCK_SIZE {
		return nil, fmt.Errorf("kcv: length %d outside 1..%d", n, DES_BLOCK_SIZE)
	}
	out, err := Encrypt(ECB, make([]byte, DES_BLOCK_SIZE), key)
	if err != nil {
		return nil, fmt.Errorf("kcv: %w", err)
	}

	return out[:n], nil
}

// AESKCV returns the first n bytes of the AES-CMAC of a zero block.
func AESKCV(key []byte, n int) ([]byte, error) {
	if n < 1 || n > aes.BlockSize {
		return nil, fmt.Errorf("kcv: length %d outside 1..%d", n, aes.BlockSize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidKeyLength, len(key))
	}
	mac, err := cmac.New(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create cmac: %w", err)
	}
	mac.Write(make([]byte, aes.BlockSize))

	return mac.Sum(nil)[:n], nil
}

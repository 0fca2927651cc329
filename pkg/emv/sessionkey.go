package emv

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"slices"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

// newCipher returns AES for aesKey and DES/3DES otherwise.
func newCipher(key []byte, aesKey bool) (cipher.Block, error) {
	if !aesKey {
		return cryptoutils.NewBlock(key)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: aes key of %d bytes", cryptoutils.ErrInvalidKeyLength, len(key))
	}

	return block, nil
}

// commonSessionKey derives a key from km and diversification data r per EMV Book 2 A1.3.1.
// When km is one block long the result is E(km, r). Otherwise two variants of r are formed
// with F0 and 0F in the third byte and the leftmost len(km) bytes of E(f1) || E(f2) are
// returned.
func commonSessionKey(km, r []byte, aesKey bool) ([]byte, error) {
	block, err := newCipher(km, aesKey)
	if err != nil {
		return nil, err
	}
	n := block.BlockSize()
	if len(r) != n {
		return nil, fmt.Errorf("%w: diversification data must be %d bytes", cryptoutils.ErrInvalidBlockSize, n)
	}

	if len(km) == n {
		out := make([]byte, n)
		block.Encrypt(out, r)

		return out, nil
	}
	if len(km) > 2*n {
		return nil, fmt.Errorf("%w: %d bytes for block size %d", cryptoutils.ErrInvalidKeyLength, len(km), n)
	}

	f1 := slices.Clone(r)
	f2 := slices.Clone(r)
	f1[2] = 0xF0
	f2[2] = 0x0F

	blk1 := make([]byte, n)
	blk2 := make([]byte, n)
	block.Encrypt(blk1, f1)
	block.Encrypt(blk2, f2)

	return slices.Concat(blk1, blk2)[:len(km)], nil
}

// encryptBlocks enciphers each block under key and concatenates the results.
func encryptBlocks(key []byte, blocks [][]byte, aesKey bool) ([]byte, error) {
	block, err := newCipher(key, aesKey)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(blocks)*block.BlockSize())
	for _, b := range blocks {
		if len(b) != block.BlockSize() {
			return nil, fmt.Errorf("%w: derivation block of %d bytes", cryptoutils.ErrInvalidBlockSize, len(b))
		}
		dst := make([]byte, len(b))
		block.Encrypt(dst, b)
		out = append(out, dst...)
	}

	return out, nil
}

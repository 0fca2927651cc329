// Package mdc implements the MDC-2 hash (ISO/IEC 10118-2) over DES.
package mdc

import (
	"crypto/des"
	"hash"
)

const (
	// Size is the digest length in bytes.
	Size = 16
	// BlockSize is the input block length in bytes.
	BlockSize = des.BlockSize
)

type digest struct {
	h   [8]byte
	hh  [8]byte
	buf [BlockSize]byte
	n   int
}

// New returns an MDC-2 hash.Hash. A partial final block is padded with zero bytes;
// an empty message hashes to the initial values.
func New() hash.Hash {
	d := &digest{}
	d.Reset()

	return d
}

// Sum returns the MDC-2 digest of data.
func Sum(data []byte) [Size]byte {
	d := &digest{}
	d.Reset()
	d.Write(data)

	var out [Size]byte
	copy(out[:], d.Sum(nil))

	return out
}

func (d *digest) Reset() {
	for i := range d.h {
		d.h[i] = 0x52
		d.hh[i] = 0x25
	}
	d.n = 0
}

func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return BlockSize }

func (d *digest) Write(p []byte) (int, error) {
	written := len(p)
	if d.n > 0 {
		c := copy(d.buf[d.n:], p)
		d.n += c
		p = p[c:]
		if d.n < BlockSize {
			return written, nil
		}
		d.block(d.buf[:])
		d.n = 0
	}
	for len(p) >= BlockSize {
		d.block(p[:BlockSize])
		p = p[BlockSize:]
	}
	d.n = copy(d.buf[:], p)

	return written, nil
}

func (d *digest) Sum(in []byte) []byte {
	c := *d
	if c.n > 0 {
		clear(c.buf[c.n:])
		c.block(c.buf[:])
	}

	return append(append(in, c.h[:]...), c.hh[:]...)
}

// block runs one MDC-2 step. The two chaining values key DES after their second and third
// bits are forced to 10 and 01; the halves of the two outputs are then swapped.
func (d *digest) block(x []byte) {
	d.h[0] = d.h[0]&0x9F | 0x40
	d.hh[0] = d.hh[0]&0x9F | 0x20

	v := encrypt(d.h[:], x)
	w := encrypt(d.hh[:], x)

	copy(d.h[:4], v[:4])
	copy(d.h[4:], w[4:])
	copy(d.hh[:4], w[:4])
	copy(d.hh[4:], v[4:])
}

// encrypt returns E(key, x) xor x.
func encrypt(key, x []byte) [8]byte {
	c, err := des.NewCipher(key)
	if err != nil {
		panic(err) // keys are always 8 bytes.
	}
	var out [8]byte
	c.Encrypt(out[:], x)
	for i := range out {
		out[i] ^= x[i]
	}

	return out
}

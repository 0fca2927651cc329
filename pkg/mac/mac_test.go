//nolint:all // test package
package mac

import (
	"math/rand"
	"testing"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := cryptoutils.Str2Raw(s)
	require.NoError(t, err)

	return b
}

var message = []byte("Now is the time for all ")

func TestAlgorithm1SingleBlockIsECB(t *testing.T) {
	t.Parallel()

	key := mustHex(t, "0123456789ABCDEF")
	data := mustHex(t, "0000000000000000")

	got, err := Compute(key, data, Algorithm1)
	require.NoError(t, err)
	assert.Equal(t, "D5D44FF720683D0D", cryptoutils.Raw2Str(got))
}

func TestAlgorithm1MatchesCBCLastBlock(t *testing.T) {
	t.Parallel()

	key := mustHex(t, "0123456789ABCDEFFEDCBA9876543210")
	got, err := Compute(key, message, Algorithm1)
	require.NoError(t, err)

	enc, err := cryptoutils.Encrypt(cryptoutils.CBC, message, key)
	require.NoError(t, err)
	assert.Equal(t, enc[16:], got)
}

func TestAlgorithm3WithEqualHalvesEqualsAlgorithm1(t *testing.T) {
	t.Parallel()

	k1 := mustHex(t, "0123456789ABCDEF")
	double := mustHex(t, "0123456789ABCDEF0123456789ABCDEF")
	triple := mustHex(t, "0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF")

	for _, data := range [][]byte{message, []byte("abc"), mustHex(t, "00112233445566778899")} {
		want, err := Compute(k1, data, Algorithm1)
		require.NoError(t, err)

		got, err := Compute(double, data, Algorithm3)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		got, err = Compute(triple, data, Algorithm3)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestAlgorithm3SingleBlockIsTripleDES(t *testing.T) {
	t.Parallel()

	key := mustHex(t, "0123456789ABCDEFFEDCBA9876543210")
	data := mustHex(t, "4E6F772069732074")

	got, err := Compute(key, data, Algorithm3)
	require.NoError(t, err)

	want, err := cryptoutils.Encrypt(cryptoutils.ECB, data, key)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSingleBitSensitivity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		alg    Algorithm
		keyLen int
		aes    bool
	}{
		{name: "alg1 single des", alg: Algorithm1, keyLen: 8},
		{name: "alg1 double des", alg: Algorithm1, keyLen: 16},
		{name: "alg3 retail", alg: Algorithm3, keyLen: 16},
		{name: "alg5 tdes cmac", alg: Algorithm5, keyLen: 16},
		{name: "alg5 aes cmac", alg: Algorithm5, keyLen: 16, aes: true},
	}

	for i, tt := range tests {
		tt := tt
		seed := int64(i + 1)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rng := rand.New(rand.NewSource(seed))
			var opts []Option
			if tt.aes {
				opts = append(opts, WithAES())
			}

			for n := 0; n < 32; n++ {
				key := make([]byte, tt.keyLen)
				rng.Read(key)
				msg := make([]byte, 1+rng.Intn(48))
				rng.Read(msg)

				base, err := Compute(key, msg, tt.alg, opts...)
				require.NoError(t, err)
				again, err := Compute(key, msg, tt.alg, opts...)
				require.NoError(t, err)
				assert.Equal(t, base, again, "deterministic")

				bit := rng.Intn(len(msg) * 8)
				flipped := append([]byte(nil), msg...)
				flipped[bit/8] ^= 1 << (bit % 8)
				got, err := Compute(key, flipped, tt.alg, opts...)
				require.NoError(t, err)
				assert.NotEqual(t, base, got, "data bit %d of %x", bit, msg)

				// The low bit of each DES key byte is parity and takes no part in the cipher.
				keyBit := 1 + rng.Intn(7)
				if tt.aes {
					keyBit = rng.Intn(8)
				}
				keyByte := rng.Intn(len(key))
				otherKey := append([]byte(nil), key...)
				otherKey[keyByte] ^= 1 << keyBit
				got, err = Compute(otherKey, msg, tt.alg, opts...)
				require.NoError(t, err)
				assert.NotEqual(t, base, got, "key byte %d bit %d of %x", keyByte, keyBit, key)
			}
		})
	}
}

func TestPaddingMethods(t *testing.T) {
	t.Parallel()

	key := mustHex(t, "0123456789ABCDEFFEDCBA9876543210")
	data := []byte("abc")

	m1, err := Compute(key, data, Algorithm3)
	require.NoError(t, err)
	m2, err := Compute(key, data, Algorithm3, WithPadding(Method2))
	require.NoError(t, err)
	assert.NotEqual(t, m1, m2)

	explicit, err := Compute(key, append([]byte("abc"), 0x80), Algorithm3)
	require.NoError(t, err)
	assert.Equal(t, m2, explicit)
}

func TestSizeAndVerify(t *testing.T) {
	t.Parallel()

	key := mustHex(t, "0123456789ABCDEFFEDCBA9876543210")
	full, err := Compute(key, message, Algorithm3)
	require.NoError(t, err)

	short, err := Compute(key, message, Algorithm3, WithSize(4))
	require.NoError(t, err)
	assert.Equal(t, full[:4], short)

	ok, err := Verify(key, message, short, Algorithm3)
	require.NoError(t, err)
	assert.True(t, ok)

	short[0] ^= 0xFF
	ok, err = Verify(key, message, short, Algorithm3)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Compute(key, message, Algorithm3, WithSize(3))
	assert.Error(t, err)
	_, err = Compute(key, message, Algorithm3, WithSize(9))
	assert.Error(t, err)
}

func TestCMAC(t *testing.T) {
	t.Parallel()

	aesKey := mustHex(t, "2B7E151628AED2A6ABF7158809CF4F3C")
	got, err := Compute(aesKey, mustHex(t, "6BC1BEE22E409F96E93D7E117393172A"), Algorithm5, WithAES())
	require.NoError(t, err)
	assert.Equal(t, "070A16B46B4D4144F79BDD9DD04A287C", cryptoutils.Raw2Str(got))

	desKey := mustHex(t, "0123456789ABCDEFFEDCBA9876543210")
	got, err = Compute(desKey, message, Algorithm5)
	require.NoError(t, err)
	assert.Len(t, got, 8)

	_, err = Compute(mustHex(t, "0123456789ABCDEF0123"), message, Algorithm5, WithAES())
	assert.ErrorIs(t, err, cryptoutils.ErrInvalidKeyLength)
}

func TestErrors(t *testing.T) {
	t.Parallel()

	key := mustHex(t, "0123456789ABCDEFFEDCBA9876543210")

	for _, alg := range []Algorithm{Algorithm1, Algorithm3, Algorithm5} {
		_, err := Compute(key, nil, alg)
		assert.ErrorIs(t, err, cryptoutils.ErrEmptyData)
	}

	_, err := Compute(key[:8], message, Algorithm3)
	assert.ErrorIs(t, err, cryptoutils.ErrInvalidKeyLength)

	_, err = Compute(key[:10], message, Algorithm1)
	assert.ErrorIs(t, err, cryptoutils.ErrInvalidKeyLength)

	_, err = Compute(key, message, Algorithm(2))
	assert.Error(t, err)
}

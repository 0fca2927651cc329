//nolint:all // test package
package emv

import (
	"slices"
	"testing"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
	"github.com/andrei-cloud/go_paycalc/pkg/mac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIMK = "0123456789ABCDEFFEDCBA9876543210"
	testPAN = "5413330089600010"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := cryptoutils.Str2Raw(s)
	require.NoError(t, err)

	return b
}

func ecb(t *testing.T, key, data []byte) []byte {
	t.Helper()
	out, err := cryptoutils.Encrypt(cryptoutils.ECB, data, key)
	require.NoError(t, err)

	return out
}

func TestOptionALayout(t *testing.T) {
	t.Parallel()

	imk := mustHex(t, testIMK)
	_, data, err := deriveUDK(Common, imk, testPAN, "01")
	require.NoError(t, err)
	assert.Equal(t, "1333008960001001", cryptoutils.Raw2Str(data))

	udk, err := DeriveUDK(Common, imk, testPAN, "01")
	require.NoError(t, err)
	want := cryptoutils.FixKeyParity(slices.Concat(
		ecb(t, imk, data),
		ecb(t, imk, mustHex(t, "ECCCFF769FFFEFFE")),
	))
	assert.Equal(t, want, udk)
	assert.True(t, cryptoutils.CheckKeyParity(udk))
}

func TestOptionAShortPanIsZeroPadded(t *testing.T) {
	t.Parallel()

	_, data, err := deriveUDK(MasterCard, mustHex(t, testIMK), "12345678901", "")
	require.NoError(t, err)
	assert.Equal(t, "0001234567890100", cryptoutils.Raw2Str(data))
}

func TestVisaOptionB(t *testing.T) {
	t.Parallel()

	imk := mustHex(t, testIMK)

	a, err := DeriveUDK(Common, imk, testPAN, "00")
	require.NoError(t, err)
	b, err := DeriveUDK(Visa, imk, testPAN, "00")
	require.NoError(t, err)
	assert.Equal(t, a, b, "pans up to 16 digits fall back to option a")

	long := "5413330089600010123"
	_, data, err := deriveUDK(Visa, imk, long, "00")
	require.NoError(t, err)
	assert.Len(t, data, 8)
	assert.True(t, cryptoutils.IsDigits(cryptoutils.Raw2Str(data)), "y is decimalized")

	optA, err := DeriveUDK(Common, imk, long, "00")
	require.NoError(t, err)
	optB, err := DeriveUDK(Visa, imk, long, "00")
	require.NoError(t, err)
	assert.NotEqual(t, optA, optB)
	assert.True(t, cryptoutils.CheckKeyParity(optB))
}

func TestCommonSessionKey(t *testing.T) {
	t.Parallel()

	udk := mustHex(t, testIMK)
	sk, data, err := deriveSessionKey(Common, udk, 0x001C, nil)
	require.NoError(t, err)
	assert.Equal(t, "001C000000000000", cryptoutils.Raw2Str(data))

	want := slices.Concat(
		ecb(t, udk, mustHex(t, "001CF00000000000")),
		ecb(t, udk, mustHex(t, "001C0F0000000000")),
	)
	assert.Equal(t, want, sk)

	other, err := DeriveSessionKey(Common, udk, 0x001D, nil)
	require.NoError(t, err)
	assert.NotEqual(t, sk, other)
}

func TestMasterCardSessionKey(t *testing.T) {
	t.Parallel()

	udk := mustHex(t, testIMK)
	un := mustHex(t, "DEADBEEF")

	sk, data, err := deriveSessionKey(MasterCard, udk, 0x0001, un)
	require.NoError(t, err)
	assert.Equal(t, "00010000DEADBEEF", cryptoutils.Raw2Str(data))
	want := slices.Concat(
		ecb(t, udk, mustHex(t, "0001F000DEADBEEF")),
		ecb(t, udk, mustHex(t, "00010F00DEADBEEF")),
	)
	assert.Equal(t, want, sk)

	zeroUN, err := DeriveSessionKey(MasterCard, udk, 0x0001, nil)
	require.NoError(t, err)
	common, err := DeriveSessionKey(Common, udk, 0x0001, nil)
	require.NoError(t, err)
	assert.Equal(t, common, zeroUN)

	_, err = DeriveSessionKey(MasterCard, udk, 1, []byte{1, 2})
	assert.Error(t, err)
}

func TestAESScheme(t *testing.T) {
	t.Parallel()

	imk := mustHex(t, "00112233445566778899AABBCCDDEEFF")
	d, err := Derive(AES, DerivationContext{MasterKey: imk, PAN: testPAN, PANSequence: "01", ATC: 2})
	require.NoError(t, err)
	assert.Equal(t, "00000000000000541333008960001001", cryptoutils.Raw2Str(d.UDKData))
	assert.Len(t, d.UDK, 16)
	assert.Equal(t, "00020000000000000000000000000000", cryptoutils.Raw2Str(d.SessionData))
	assert.Len(t, d.SessionKey, 16)

	imk256 := slices.Concat(imk, imk)
	udk, err := DeriveUDK(AES, imk256, testPAN, "01")
	require.NoError(t, err)
	assert.Len(t, udk, 32)
}

func TestTemplateScheme(t *testing.T) {
	t.Parallel()

	imk := mustHex(t, testIMK)
	d, err := Derive(Template, DerivationContext{MasterKey: imk, PAN: "4111111111111111", PANSequence: "01", ATC: 0x1C})
	require.NoError(t, err)
	assert.Equal(t, "1111111111101FFF", cryptoutils.Raw2Str(d.UDKData))
	assert.Equal(t, ecb(t, imk, d.UDKData), d.UDK)
	assert.Equal(t, "001CF0F0F0F0F0F0", cryptoutils.Raw2Str(d.SessionData))
	assert.Equal(t, ecb(t, d.UDK, d.SessionData), d.SessionKey)
}

func TestDerivationBoundaries(t *testing.T) {
	t.Parallel()

	imk := mustHex(t, testIMK)

	for _, scheme := range Schemes() {
		scheme := scheme
		t.Run(scheme.String(), func(t *testing.T) {
			t.Parallel()
			key := imk
			if scheme == AES {
				key = imk[:16]
			}

			_, err := DeriveUDK(scheme, key, "12345678901", "00")
			assert.NoError(t, err, "eleven digit pan")

			_, err = DeriveUDK(scheme, key, "1234567890", "00")
			assert.ErrorIs(t, err, cryptoutils.ErrInvalidPan)

			_, err = DeriveUDK(scheme, key, testPAN, "123")
			assert.ErrorIs(t, err, cryptoutils.ErrInvalidPan)

			udk, err := DeriveUDK(scheme, key, testPAN, "1")
			require.NoError(t, err)
			padded, err := DeriveUDK(scheme, key, testPAN, "01")
			require.NoError(t, err)
			assert.Equal(t, padded, udk)

			_, err = DeriveSessionKey(scheme, udk, ATC_MAX, nil)
			assert.NoError(t, err)
			_, err = DeriveSessionKey(scheme, udk, ATC_MAX+1, nil)
			assert.ErrorIs(t, err, cryptoutils.ErrInvalidAtc)
			_, err = DeriveSessionKey(scheme, udk, -1, nil)
			assert.ErrorIs(t, err, cryptoutils.ErrInvalidAtc)
		})
	}

	_, err := DeriveUDK(Common, make([]byte, 10), testPAN, "00")
	assert.ErrorIs(t, err, cryptoutils.ErrInvalidKeyLength)
	_, err = DeriveUDK(Scheme(42), imk, testPAN, "00")
	assert.Error(t, err)
}

func TestParseScheme(t *testing.T) {
	t.Parallel()

	for _, s := range Schemes() {
		got, err := ParseScheme(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseScheme("mc")
	require.NoError(t, err)
	assert.Equal(t, MasterCard, got)

	_, err = ParseScheme("discover")
	assert.Error(t, err)
}

func TestCryptograms(t *testing.T) {
	t.Parallel()

	sk := mustHex(t, testIMK)
	data := mustHex(t, "0000000010000000000000000710000000000007101302050030901B6A3C00005503A4A082")

	arqc, err := GenerateARQC(Common, sk, data)
	require.NoError(t, err)
	want, err := mac.Compute(sk, data, mac.Algorithm3, mac.WithPadding(mac.Method2))
	require.NoError(t, err)
	assert.Equal(t, want, arqc)
	assert.Len(t, arqc, CRYPTOGRAM_LENGTH)

	ok, err := VerifyARQC(Common, sk, data, arqc)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = VerifyARQC(Common, sk, data[1:], arqc)
	require.NoError(t, err)
	assert.False(t, ok)

	arc := []byte("00")
	arpc, err := GenerateARPC1(sk, arqc, arc)
	require.NoError(t, err)
	y, err := cryptoutils.Decrypt(cryptoutils.ECB, arpc, sk)
	require.NoError(t, err)
	expected, err := cryptoutils.XORBytes(arqc, slices.Concat(arc, make([]byte, 6)))
	require.NoError(t, err)
	assert.Equal(t, expected, y)

	arpc2, err := GenerateARPC2(sk, arqc, mustHex(t, "00000000"), nil)
	require.NoError(t, err)
	assert.Len(t, arpc2, ARPC2_LENGTH)

	_, err = GenerateARPC1(sk, arqc[:4], arc)
	assert.ErrorIs(t, err, cryptoutils.ErrInvalidBlockSize)
	_, err = GenerateARPC2(sk, arqc, []byte{1}, nil)
	assert.Error(t, err)
	_, err = GenerateARPC2(sk, arqc, mustHex(t, "00000000"), make([]byte, 9))
	assert.Error(t, err)

	aesKey := mustHex(t, "00112233445566778899AABBCCDDEEFF")
	aesArqc, err := GenerateARQC(AES, aesKey, data)
	require.NoError(t, err)
	assert.Len(t, aesArqc, CRYPTOGRAM_LENGTH)
}

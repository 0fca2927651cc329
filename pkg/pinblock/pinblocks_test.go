//nolint:all // test package
package pinblock

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPAN = "4111111111111111"

var (
	testNonce  = []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	testAESKey = []byte("0123456789ABCDEF")
)

func TestPackKnownAnswers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
		pin    string
		opts   []Option
		want   string
	}{
		{name: "iso0", format: ISO0, pin: "1234", want: "041225EEEEEEEEEE"},
		{name: "iso0 twelve digits", format: ISO0, pin: "123456789012", want: "0C122547698103EE"},
		{name: "iso1 nonce fill", format: ISO1, pin: "1234", opts: []Option{WithNonce(testNonce)}, want: "1412340123456789"},
		{name: "iso2", format: ISO2, pin: "1234", want: "241234FFFFFFFFFF"},
		{name: "iso3 nonce fill", format: ISO3, pin: "1234", opts: []Option{WithNonce(testNonce)}, want: "341225BADCFEBADC"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Pack(tt.format, tt.pin, testPAN, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cryptoutils.Raw2Str(got))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	pins := []string{"1234", "98765", "123456789012"}
	pans := []string{"4111111111111111", "5432109876543", "6011000990139424123"}
	formats := []Format{ISO0, ISO1, ISO2, ISO3, ISO4}

	for _, format := range formats {
		for _, pin := range pins {
			for _, pan := range pans {
				format, pin, pan := format, pin, pan
				t.Run(format.String()+"/"+pin+"/"+pan, func(t *testing.T) {
					t.Parallel()
					opts := []Option{WithRandom(rand.Reader), WithKey(testAESKey)}
					block, err := Pack(format, pin, pan, opts...)
					require.NoError(t, err)
					assert.Len(t, block, format.BlockSize())

					got, err := Unpack(format, block, pan, opts...)
					require.NoError(t, err)
					assert.Equal(t, pin, got)
				})
			}
		}
	}
}

func TestPackErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  Format
		pin     string
		pan     string
		opts    []Option
		wantErr error
	}{
		{"short pin", ISO0, "123", testPAN, nil, cryptoutils.ErrInvalidPinLength},
		{"long pin", ISO0, "1234567890123", testPAN, nil, cryptoutils.ErrInvalidPinLength},
		{"non digit pin", ISO2, "12A4", "", nil, cryptoutils.ErrInvalidPinLength},
		{"short pan", ISO0, "1234", "411111111111", nil, cryptoutils.ErrInvalidPan},
		{"non digit pan", ISO3, "1234", "4111 1111 1111 1111", []Option{WithNonce(testNonce)}, cryptoutils.ErrInvalidPan},
		{"iso1 without nonce", ISO1, "1234", "", nil, cryptoutils.ErrNonceRequired},
		{"iso3 without nonce", ISO3, "1234", testPAN, nil, cryptoutils.ErrNonceRequired},
		{"iso1 short nonce", ISO1, "1234", "", []Option{WithNonce([]byte{1, 2})}, cryptoutils.ErrNonceRequired},
		{"iso4 without key", ISO4, "1234", testPAN, []Option{WithNonce(testNonce)}, cryptoutils.ErrInvalidKeyLength},
		{"iso4 bad key", ISO4, "1234", testPAN, []Option{WithNonce(testNonce), WithKey([]byte{1, 2, 3})}, cryptoutils.ErrInvalidKeyLength},
		{"iso4 without random", ISO4, "1234", testPAN, []Option{WithKey(testAESKey)}, cryptoutils.ErrNonceRequired},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Pack(tt.format, tt.pin, tt.pan, tt.opts...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUnpackIntegrity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  Format
		block   string
		wantErr error
	}{
		{"wrong control nibble", ISO0, "141225EEEEEEEEEE", cryptoutils.ErrPinBlockIntegrity},
		{"length nibble below four", ISO2, "231234FFFFFFFFFF", cryptoutils.ErrPinBlockIntegrity},
		{"length nibble above twelve", ISO2, "2D1234567890123F", cryptoutils.ErrPinBlockIntegrity},
		{"non decimal pin", ISO2, "24123AFFFFFFFFFF", cryptoutils.ErrPinBlockIntegrity},
		{"bad iso0 fill", ISO0, "041225EEEEEEEEEF", cryptoutils.ErrPinBlockIntegrity},
		{"bad iso2 fill", ISO2, "241234FFFFFFFFF0", cryptoutils.ErrPinBlockIntegrity},
		{"iso3 fill outside A-F", ISO3, "3412251111111111", cryptoutils.ErrPinBlockIntegrity},
		{"short block", ISO0, "041225EEEEEE", cryptoutils.ErrInvalidBlockSize},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw, err := cryptoutils.Str2Raw(tt.block)
			require.NoError(t, err)
			_, err = Unpack(tt.format, raw, testPAN)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestISO4(t *testing.T) {
	t.Parallel()

	nonce := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	a, err := Pack(ISO4, "1234", testPAN, WithKey(testAESKey), WithNonce(nonce))
	require.NoError(t, err)
	b, err := Pack(ISO4, "1234", testPAN, WithKey(testAESKey), WithNonce(nonce))
	require.NoError(t, err)
	assert.Equal(t, a, b, "same nonce gives the same block")

	c, err := Pack(ISO4, "1234", testPAN, WithKey(testAESKey), WithNonce([]byte{8, 7, 6, 5, 4, 3, 2, 1}))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	pin, err := Unpack(ISO4, a, testPAN, WithKey(testAESKey))
	require.NoError(t, err)
	assert.Equal(t, "1234", pin)

	_, err = Unpack(ISO4, a, "4111111111111112", WithKey(testAESKey))
	assert.ErrorIs(t, err, cryptoutils.ErrPinBlockIntegrity, "pan binds the block")

	_, err = Unpack(ISO4, a[:8], testPAN, WithKey(testAESKey))
	assert.ErrorIs(t, err, cryptoutils.ErrInvalidBlockSize)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{
		"ISO0":  ISO0,
		"iso-1": ISO1,
		"2":     ISO2,
		"47":    ISO3,
		"48":    ISO4,
		"01":    ISO0,
		"05":    ISO1,
		"34":    ISO2,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("35")
	assert.Error(t, err)
	_, err = ParseFormat("ISO9")
	assert.Error(t, err)
}

func TestParseFormatErrorQuotesInput(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"iso-9", " Iso9 ", "visa"} {
		_, err := ParseFormat(in)
		require.Error(t, err, in)
		assert.Contains(t, err.Error(), fmt.Sprintf("%q", in))
	}
}

func TestPrintSupportedFormats(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, PrintSupportedFormats(&buf))
	out := buf.String()
	for code := range SupportedFormats() {
		assert.Contains(t, out, code)
	}
	assert.Contains(t, out, "ISO 9564-1 Format 4")
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	srcKey, err := cryptoutils.Str2Raw("0123456789ABCDEFFEDCBA9876543210")
	require.NoError(t, err)
	dstKey, err := cryptoutils.Str2Raw("89ABCDEF0123456776543210FEDCBA98")
	require.NoError(t, err)

	src := Zone{Key: srcKey, Format: ISO0}
	encrypted, err := src.Encrypt("4321", testPAN)
	require.NoError(t, err)

	tests := []struct {
		name string
		dst  Zone
	}{
		{"to iso0", Zone{Key: dstKey, Format: ISO0}},
		{"to iso1", Zone{Key: dstKey, Format: ISO1}},
		{"to iso3", Zone{Key: dstKey, Format: ISO3}},
		{"to iso4", Zone{Key: testAESKey, Format: ISO4}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := Translate(encrypted, testPAN, src, tt.dst, WithRandom(rand.Reader))
			require.NoError(t, err)

			pin, err := tt.dst.Decrypt(out, testPAN)
			require.NoError(t, err)
			assert.Equal(t, "4321", pin)
		})
	}

	_, err = Translate(encrypted, testPAN, Zone{Key: dstKey, Format: ISO0}, Zone{Key: dstKey, Format: ISO0})
	assert.Error(t, err, "wrong source key")
}

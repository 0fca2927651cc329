//nolint:all // test package
package calculator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDESKey  = "133457799BBCDFF1"
	testTDESKey = "0123456789ABCDEFFEDCBA9876543210"
	testPAN     = "4111111111111111"
)

func newTestRegistry() *Registry {
	return NewRegistry(Settings{})
}

func run(t *testing.T, r *Registry, name string, op Operation, params Params) Result {
	t.Helper()

	return r.Execute(name, op, params, zerolog.Nop())
}

func mustSucceed(t *testing.T, res Result) map[string]string {
	t.Helper()
	require.True(t, res.Success, "unexpected failure: %s", res.Error)
	require.Empty(t, res.Error)

	return res.Data
}

func TestParseOperation(t *testing.T) {
	t.Parallel()

	for _, op := range operations {
		got, err := ParseOperation(strings.ToLower(string(op)))
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	_, err := ParseOperation("EXPLODE")
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestRegistryListsBuiltins(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	var names []string
	for _, c := range r.List() {
		names = append(names, c.Name())
		assert.NotEmpty(t, c.Description())
		assert.NotEmpty(t, c.Operations())
	}
	assert.Equal(t, []string{"bitmap", "cipher", "cvv", "emv", "kcv", "mac", "mdc", "offset", "pinblock", "pvv"}, names)

	c, ok := r.Get(" PVV ")
	require.True(t, ok)
	assert.True(t, c.Supports(OpGenerate))
	assert.False(t, c.Supports(OpHash))
}

func TestResultEnvelope(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()

	res := run(t, r, "cipher", OpEncrypt, Params{"key": testDESKey, "data": "0123456789ABCDEF"})
	mustSucceed(t, res)
	_, err := uuid.Parse(res.Metadata.AuditID)
	assert.NoError(t, err)
	assert.Equal(t, "DES-ECB", res.Metadata.Algorithm)
	assert.NoError(t, res.Err())

	other := run(t, r, "cipher", OpEncrypt, Params{"key": testDESKey, "data": "0123456789ABCDEF"})
	assert.NotEqual(t, res.Metadata.AuditID, other.Metadata.AuditID)

	tests := []struct {
		name    string
		calc    string
		op      Operation
		params  Params
		wantErr error
	}{
		{name: "unknown calculator", calc: "enigma", op: OpEncrypt, wantErr: ErrUnknownCalculator},
		{name: "unsupported operation", calc: "pvv", op: OpHash, wantErr: ErrUnsupportedOperation},
		{name: "missing parameter", calc: "cipher", op: OpEncrypt, params: Params{"key": testDESKey}, wantErr: ErrMissingParam},
		{
			name:    "bad hex",
			calc:    "cipher",
			op:      OpEncrypt,
			params:  Params{"key": "XYZ", "data": "00"},
			wantErr: cryptoutils.ErrInvalidHex,
		},
		{
			name:    "core error passes through",
			calc:    "cipher",
			op:      OpEncrypt,
			params:  Params{"key": "0011", "data": "0123456789ABCDEF"},
			wantErr: cryptoutils.ErrInvalidKeyLength,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := run(t, r, tt.calc, tt.op, tt.params)
			assert.False(t, res.Success)
			assert.Nil(t, res.Data, "no partial data on failure")
			assert.NotEmpty(t, res.Error)
			assert.NotEmpty(t, res.Metadata.AuditID)
			assert.ErrorIs(t, res.Err(), tt.wantErr)
		})
	}
}

func TestExecuteRecoversPanics(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	r.Register(&calculator{
		name: "broken",
		handlers: map[Operation]handler{
			OpHash: func(Settings, Params) (Output, error) { panic("boom") },
		},
	})

	var buf bytes.Buffer
	res := r.Execute("broken", OpHash, nil, zerolog.New(&buf))
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err(), ErrInternal)
	assert.Contains(t, res.Error, "boom")
	assert.Contains(t, buf.String(), "calculator panicked")
}

func TestAuditLogMasksSecrets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := newTestRegistry()
	res := r.Execute("pvv", OpGenerate, Params{
		"pvk":  testTDESKey,
		"pan":  testPAN,
		"pin":  "1234",
		"pvki": "1",
	}, zerolog.New(&buf))
	mustSucceed(t, res)

	out := buf.String()
	assert.Contains(t, out, res.Metadata.AuditID)
	assert.Contains(t, out, testPAN)
	assert.NotContains(t, out, testTDESKey)
	assert.NotContains(t, out, `"pin":"1234"`)
}

func TestAuditLogMasksPinBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		calc   string
		op     Operation
		params Params
		secret string
	}{
		{
			name:   "clear pin block decode",
			calc:   "pinblock",
			op:     OpDecode,
			params: Params{"format": "ISO0", "pin_block": "041225EEEEEEEEEE", "pan": testPAN},
			secret: "041225EEEEEEEEEE",
		},
		{
			name:   "pvv validate",
			calc:   "pvv",
			op:     OpValidate,
			params: Params{"pvk": testTDESKey, "pan": testPAN, "pin": "1234", "pvki": "1", "pvv": "9876"},
			secret: `"pvv":"9876"`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			res := newTestRegistry().Execute(tt.calc, tt.op, tt.params, zerolog.New(&buf))
			require.NotEmpty(t, res.Metadata.AuditID)

			out := buf.String()
			assert.Contains(t, out, res.Metadata.AuditID)
			assert.Contains(t, out, testPAN)
			assert.NotContains(t, out, tt.secret)
		})
	}
}

func TestParams(t *testing.T) {
	t.Parallel()

	p := Params{"n": " 12 ", "flag": "true", "bad": "x", "hex": "0a0B"}

	n, err := p.Int("n", 0)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	n, err = p.Int("absent", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, err = p.Int("bad", 0)
	assert.ErrorIs(t, err, ErrInvalidParam)

	b, err := p.Bool("flag")
	require.NoError(t, err)
	assert.True(t, b)
	_, err = p.Bool("bad")
	assert.ErrorIs(t, err, ErrInvalidParam)

	raw, err := p.Hex("hex")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0A, 0x0B}, raw)
	raw, err = p.OptionalHex("absent")
	require.NoError(t, err)
	assert.Nil(t, raw)

	data, err := Params{"data": "  spaced  ", "encoding": "text"}.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte("  spaced  "), data)
	_, err = Params{"data": "00", "encoding": "base64"}.Data()
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestParseValidationData(t *testing.T) {
	t.Parallel()

	vd, err := ParseValidationData("3, 12, F")
	require.NoError(t, err)
	assert.Equal(t, 3, vd.Start)
	assert.Equal(t, 12, vd.Length)
	assert.Equal(t, byte('F'), vd.Pad)

	for _, bad := range []string{"3,12", "a,12,F", "3,b,F", "3,12,FF"} {
		_, err := ParseValidationData(bad)
		assert.ErrorIs(t, err, cryptoutils.ErrInvalidValidationData, bad)
	}
}

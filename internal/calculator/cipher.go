package calculator

import (
	"fmt"
	"io"
	"strings"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

func newCipherCalculator(s Settings) Calculator {
	return &calculator{
		name:        "cipher",
		description: "DES/3DES ECB and CBC encryption and DES key generation",
		settings:    s,
		handlers: map[Operation]handler{
			OpEncrypt:  cipherEncrypt,
			OpDecrypt:  cipherDecrypt,
			OpGenerate: cipherGenerateKey,
		},
	}
}

// desAlgorithm names the cipher for a DES key: DES, 3DES-2KEY or 3DES-3KEY.
func desAlgorithm(key []byte) string {
	switch len(key) {
	case cryptoutils.KEY_LENGTH_SINGLE:
		return "DES"
	case cryptoutils.KEY_LENGTH_DOUBLE:
		return "3DES-2KEY"
	default:
		return "3DES-3KEY"
	}
}

func keyDiagnostics(key []byte) map[string]string {
	info := cryptoutils.KeyLengthOf(key)
	d := map[string]string{
		"key_length": info.Length.String(),
		"parity":     "odd",
	}
	if !cryptoutils.CheckKeyParity(key) {
		d["parity"] = "invalid"
	}
	if info.Disguised {
		d["effective_length"] = info.Effective.String()
	}
	if kcv, err := cryptoutils.KCV(key, cryptoutils.KCV_DEFAULT_LENGTH); err == nil {
		d["kcv"] = cryptoutils.Raw2Str(kcv)
	}

	return d
}

func cipherRun(p Params, encrypt bool) (Output, error) {
	key, err := p.Hex("key")
	if err != nil {
		return Output{}, err
	}
	data, err := p.Hex("data")
	if err != nil {
		return Output{}, err
	}
	mode, err := cryptoutils.ParseMode(p.Get("mode"))
	if err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	var opts []cryptoutils.Option
	iv, err := p.OptionalHex("iv")
	if err != nil {
		return Output{}, err
	}
	if iv != nil {
		opts = append(opts, cryptoutils.WithIV(iv))
	}

	run := cryptoutils.Decrypt
	if encrypt {
		run = cryptoutils.Encrypt
	}
	out, err := run(mode, data, key, opts...)
	if err != nil {
		return Output{}, err
	}

	d := keyDiagnostics(key)
	d["mode"] = mode.String()

	return Output{
		Algorithm:   desAlgorithm(key) + "-" + mode.String(),
		Data:        map[string]string{"result": cryptoutils.Raw2Str(out)},
		Diagnostics: d,
	}, nil
}

func cipherEncrypt(_ Settings, p Params) (Output, error) { return cipherRun(p, true) }
func cipherDecrypt(_ Settings, p Params) (Output, error) { return cipherRun(p, false) }

// cipherGenerateKey generates a random key. length is single, double or triple for DES
// (or 8, 16, 24) and the key type aes generates a 16, 24 or 32 byte AES key.
func cipherGenerateKey(s Settings, p Params) (Output, error) {
	if strings.EqualFold(p.Get("type"), "aes") {
		n, err := p.Int("length", 16)
		if err != nil {
			return Output{}, err
		}
		if n != 16 && n != 24 && n != 32 {
			return Output{}, fmt.Errorf("%w: aes key of %d bytes", cryptoutils.ErrInvalidKeyLength, n)
		}
		key := make([]byte, n)
		if _, err := io.ReadFull(s.Random, key); err != nil {
			return Output{}, fmt.Errorf("failed to generate random key: %w", err)
		}
		kcv, err := cryptoutils.AESKCV(key, cryptoutils.KCV_DEFAULT_LENGTH)
		if err != nil {
			return Output{}, err
		}

		return Output{
			Algorithm: fmt.Sprintf("AES-%d", n*8),
			Data:      map[string]string{"key": cryptoutils.Raw2Str(key), "kcv": cryptoutils.Raw2Str(kcv)},
		}, nil
	}

	n, err := desKeyLength(p.Get("length"))
	if err != nil {
		return Output{}, err
	}
	key, err := cryptoutils.GenerateKey(n)
	if err != nil {
		return Output{}, err
	}
	d := keyDiagnostics(key)

	return Output{
		Algorithm:   desAlgorithm(key),
		Data:        map[string]string{"key": cryptoutils.Raw2Str(key), "kcv": d["kcv"]},
		Diagnostics: d,
	}, nil
}

func desKeyLength(s string) (int, error) {
	switch strings.ToLower(s) {
	case "", "double", "16", "2":
		return cryptoutils.KEY_LENGTH_DOUBLE, nil
	case "single", "8", "1":
		return cryptoutils.KEY_LENGTH_SINGLE, nil
	case "triple", "24", "3":
		return cryptoutils.KEY_LENGTH_TRIPLE, nil
	default:
		return 0, fmt.Errorf("%w: length %q", cryptoutils.ErrInvalidKeyLength, s)
	}
}

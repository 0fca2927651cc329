package calculator

import (
	"fmt"
	"strings"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

func newKCVCalculator(s Settings) Calculator {
	return &calculator{
		name:        "kcv",
		description: "Key check values for DES/3DES and AES keys",
		settings:    s,
		handlers: map[Operation]handler{
			OpGenerate: kcvGenerate,
			OpValidate: kcvValidate,
		},
	}
}

func computeKCV(p Params) (string, string, []byte, error) {
	key, err := p.Hex("key")
	if err != nil {
		return "", "", nil, err
	}
	n, err := p.Int("length", cryptoutils.KCV_DEFAULT_LENGTH)
	if err != nil {
		return "", "", nil, err
	}

	var kcv []byte
	alg := "DES-KCV"
	switch strings.ToLower(p.Get("type")) {
	case "", "des", "tdes", "3des":
		kcv, err = cryptoutils.KCV(key, n)
	case "aes":
		alg = "AES-CMAC-KCV"
		kcv, err = cryptoutils.AESKCV(key, n)
	default:
		return "", "", nil, fmt.Errorf("%w: key type %q", ErrInvalidParam, p.Get("type"))
	}
	if err != nil {
		return "", "", nil, err
	}

	return cryptoutils.Raw2Str(kcv), alg, key, nil
}

func kcvGenerate(_ Settings, p Params) (Output, error) {
	kcv, alg, key, err := computeKCV(p)
	if err != nil {
		return Output{}, err
	}
	var d map[string]string
	if alg == "DES-KCV" {
		d = keyDiagnostics(key)
		delete(d, "kcv")
	}

	return Output{Algorithm: alg, Data: map[string]string{"kcv": kcv}, Diagnostics: d}, nil
}

func kcvValidate(_ Settings, p Params) (Output, error) {
	want, err := p.Required("kcv")
	if err != nil {
		return Output{}, err
	}
	if !p.Has("length") {
		p = withParam(p, "length", fmt.Sprint(len(want)/2))
	}
	kcv, alg, _, err := computeKCV(p)
	if err != nil {
		return Output{}, err
	}

	return Output{Algorithm: alg, Data: validity(strings.EqualFold(kcv, want))}, nil
}

// withParam returns a copy of p with name set.
func withParam(p Params, name, value string) Params {
	out := make(Params, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[name] = value

	return out
}

func validity(ok bool) map[string]string {
	return map[string]string{"valid": fmt.Sprint(ok)}
}

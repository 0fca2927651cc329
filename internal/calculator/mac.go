package calculator

import (
	"fmt"
	"strings"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
	"github.com/andrei-cloud/go_paycalc/pkg/mac"
)

func newMACCalculator(s Settings) Calculator {
	return &calculator{
		name:        "mac",
		description: "ISO/IEC 9797-1 MAC algorithms 1, 3 and 5 (CMAC)",
		settings:    s,
		handlers: map[Operation]handler{
			OpMAC:      macGenerate,
			OpGenerate: macGenerate,
			OpValidate: macValidate,
		},
	}
}

type macInputs struct {
	key  []byte
	data []byte
	alg  mac.Algorithm
	opts []mac.Option
	name string
}

func readMACInputs(p Params) (macInputs, error) {
	var in macInputs
	var err error
	if in.key, err = p.Hex("key"); err != nil {
		return in, err
	}
	if in.data, err = p.Data(); err != nil {
		return in, err
	}

	alg, err := p.Int("algorithm", int(mac.Algorithm3))
	if err != nil {
		return in, err
	}
	in.alg = mac.Algorithm(alg)
	switch in.alg {
	case mac.Algorithm1, mac.Algorithm3:
		padding, err := p.Int("padding", int(mac.Method1))
		if err != nil {
			return in, err
		}
		if padding != int(mac.Method1) && padding != int(mac.Method2) {
			return in, fmt.Errorf("%w: padding method %d", ErrInvalidParam, padding)
		}
		in.opts = append(in.opts, mac.WithPadding(mac.Padding(padding)))
		in.name = fmt.Sprintf("ISO9797-1-ALG%d-PAD%d", alg, padding)
	case mac.Algorithm5:
		in.name = "CMAC-TDES"
		if strings.EqualFold(p.Get("cipher"), "aes") {
			in.opts = append(in.opts, mac.WithAES())
			in.name = "CMAC-AES"
		}
	default:
		return in, fmt.Errorf("%w: mac algorithm %d", ErrInvalidParam, alg)
	}

	return in, nil
}

func macGenerate(_ Settings, p Params) (Output, error) {
	in, err := readMACInputs(p)
	if err != nil {
		return Output{}, err
	}
	size, err := p.Int("size", 0)
	if err != nil {
		return Output{}, err
	}
	opts := in.opts
	if size > 0 {
		opts = append(opts, mac.WithSize(size))
	}
	out, err := mac.Compute(in.key, in.data, in.alg, opts...)
	if err != nil {
		return Output{}, err
	}

	return Output{
		Algorithm:   in.name,
		Data:        map[string]string{"mac": cryptoutils.Raw2Str(out)},
		Diagnostics: map[string]string{"data_length": fmt.Sprint(len(in.data))},
	}, nil
}

func macValidate(_ Settings, p Params) (Output, error) {
	in, err := readMACInputs(p)
	if err != nil {
		return Output{}, err
	}
	want, err := p.Hex("mac")
	if err != nil {
		return Output{}, err
	}
	ok, err := mac.Verify(in.key, in.data, want, in.alg, in.opts...)
	if err != nil {
		return Output{}, err
	}

	return Output{Algorithm: in.name, Data: validity(ok)}, nil
}

package calculator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
	"github.com/andrei-cloud/go_paycalc/pkg/emv"
)

func newEMVCalculator(s Settings) Calculator {
	return &calculator{
		name:        "emv",
		description: "EMV card and session key derivation, ARQC and ARPC",
		settings:    s,
		handlers: map[Operation]handler{
			OpDerive:   emvDerive,
			OpGenerate: emvGenerate,
			OpValidate: emvValidate,
		},
	}
}

func emvScheme(p Params) (emv.Scheme, error) {
	v := p.Get("scheme")
	if v == "" {
		return emv.Common, nil
	}

	return emv.ParseScheme(v)
}

// parseATC reads the transaction counter as 4 hex digits, the way it appears in tag 9F36.
func parseATC(s string) (int, error) {
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: atc %q must be hex", cryptoutils.ErrInvalidAtc, s)
	}
	if n > emv.ATC_MAX {
		return 0, fmt.Errorf("%w: %s", cryptoutils.ErrInvalidAtc, s)
	}

	return int(n), nil
}

func emvKCV(scheme emv.Scheme, key []byte) string {
	var kcv []byte
	var err error
	if scheme == emv.AES {
		kcv, err = cryptoutils.AESKCV(key, cryptoutils.KCV_DEFAULT_LENGTH)
	} else {
		kcv, err = cryptoutils.KCV(key, cryptoutils.KCV_DEFAULT_LENGTH)
	}
	if err != nil {
		return ""
	}

	return cryptoutils.Raw2Str(kcv)
}

// emvDerive derives the card key and, when atc is given, the session key.
func emvDerive(_ Settings, p Params) (Output, error) {
	scheme, err := emvScheme(p)
	if err != nil {
		return Output{}, err
	}
	ctx := emv.DerivationContext{PANSequence: p.Get("pan_sequence")}
	if ctx.MasterKey, err = p.Hex("master_key"); err != nil {
		return Output{}, err
	}
	if ctx.PAN, err = p.Required("pan"); err != nil {
		return Output{}, err
	}
	if ctx.UN, err = p.OptionalHex("un"); err != nil {
		return Output{}, err
	}

	if !p.Has("atc") {
		udk, err := emv.DeriveUDK(scheme, ctx.MasterKey, ctx.PAN, ctx.PANSequence)
		if err != nil {
			return Output{}, err
		}

		return Output{
			Algorithm: "EMV-" + scheme.String(),
			Data:      map[string]string{"udk": cryptoutils.Raw2Str(udk), "udk_kcv": emvKCV(scheme, udk)},
		}, nil
	}

	if ctx.ATC, err = parseATC(p.Get("atc")); err != nil {
		return Output{}, err
	}
	d, err := emv.Derive(scheme, ctx)
	if err != nil {
		return Output{}, err
	}

	return Output{
		Algorithm: "EMV-" + scheme.String(),
		Data: map[string]string{
			"udk":             cryptoutils.Raw2Str(d.UDK),
			"udk_kcv":         emvKCV(scheme, d.UDK),
			"session_key":     cryptoutils.Raw2Str(d.SessionKey),
			"session_key_kcv": emvKCV(scheme, d.SessionKey),
		},
		Diagnostics: map[string]string{
			"udk_data":     cryptoutils.Raw2Str(d.UDKData),
			"session_data": cryptoutils.Raw2Str(d.SessionData),
		},
	}, nil
}

// emvGenerate computes the cryptogram named by the "cryptogram" parameter: ARQC
// (default), ARPC1 or ARPC2.
func emvGenerate(_ Settings, p Params) (Output, error) {
	scheme, err := emvScheme(p)
	if err != nil {
		return Output{}, err
	}
	sk, err := p.Hex("session_key")
	if err != nil {
		return Output{}, err
	}

	switch kind := strings.ToUpper(p.Get("cryptogram")); kind {
	case "", "ARQC", "TC", "AAC":
		data, err := p.Hex("data")
		if err != nil {
			return Output{}, err
		}
		arqc, err := emv.GenerateARQC(scheme, sk, data)
		if err != nil {
			return Output{}, err
		}

		return Output{Algorithm: arqcAlgorithm(scheme), Data: map[string]string{"arqc": cryptoutils.Raw2Str(arqc)}}, nil
	case "ARPC1", "ARPC":
		arqc, err := p.Hex("arqc")
		if err != nil {
			return Output{}, err
		}
		arc, err := p.Hex("arc")
		if err != nil {
			return Output{}, err
		}
		arpc, err := emv.GenerateARPC1(sk, arqc, arc)
		if err != nil {
			return Output{}, err
		}

		return Output{Algorithm: "ARPC-METHOD-1", Data: map[string]string{"arpc": cryptoutils.Raw2Str(arpc)}}, nil
	case "ARPC2":
		arqc, err := p.Hex("arqc")
		if err != nil {
			return Output{}, err
		}
		csu, err := p.Hex("csu")
		if err != nil {
			return Output{}, err
		}
		pad, err := p.OptionalHex("prop_auth_data")
		if err != nil {
			return Output{}, err
		}
		arpc, err := emv.GenerateARPC2(sk, arqc, csu, pad)
		if err != nil {
			return Output{}, err
		}

		return Output{Algorithm: "ARPC-METHOD-2", Data: map[string]string{"arpc": cryptoutils.Raw2Str(arpc)}}, nil
	default:
		return Output{}, fmt.Errorf("%w: cryptogram %q", ErrInvalidParam, kind)
	}
}

func emvValidate(_ Settings, p Params) (Output, error) {
	scheme, err := emvScheme(p)
	if err != nil {
		return Output{}, err
	}
	sk, err := p.Hex("session_key")
	if err != nil {
		return Output{}, err
	}
	data, err := p.Hex("data")
	if err != nil {
		return Output{}, err
	}
	want, err := p.Hex("arqc")
	if err != nil {
		return Output{}, err
	}
	ok, err := emv.VerifyARQC(scheme, sk, data, want)
	if err != nil {
		return Output{}, err
	}

	return Output{Algorithm: arqcAlgorithm(scheme), Data: validity(ok)}, nil
}

func arqcAlgorithm(scheme emv.Scheme) string {
	if scheme == emv.AES {
		return "AES-CMAC"
	}

	return "ISO9797-1-ALG3"
}

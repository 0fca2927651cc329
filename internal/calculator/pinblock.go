package calculator

import (
	"fmt"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
	"github.com/andrei-cloud/go_paycalc/pkg/pinblock"
)

func newPinBlockCalculator(s Settings) Calculator {
	return &calculator{
		name:        "pinblock",
		description: "ISO 9564-1 PIN block formats 0 to 4: encode, decode and translate",
		settings:    s,
		handlers: map[Operation]handler{
			OpEncode:    pinBlockEncode,
			OpDecode:    pinBlockDecode,
			OpTranslate: pinBlockTranslate,
		},
	}
}

func pinFormat(p Params, name string) (pinblock.Format, error) {
	v, err := p.Required(name)
	if err != nil {
		return 0, err
	}

	return pinblock.ParseFormat(v)
}

func fillOptions(s Settings, p Params) ([]pinblock.Option, error) {
	opts := []pinblock.Option{pinblock.WithRandom(s.Random)}
	nonce, err := p.OptionalHex("nonce")
	if err != nil {
		return nil, err
	}
	if nonce != nil {
		opts = append(opts, pinblock.WithNonce(nonce))
	}

	return opts, nil
}

// pinBlockEncode packs pin. With a key the block is returned enciphered under it; ISO4
// always needs one.
func pinBlockEncode(s Settings, p Params) (Output, error) {
	format, err := pinFormat(p, "format")
	if err != nil {
		return Output{}, err
	}
	pin, err := p.Required("pin")
	if err != nil {
		return Output{}, err
	}
	pan := p.Get("pan")
	opts, err := fillOptions(s, p)
	if err != nil {
		return Output{}, err
	}
	key, err := p.OptionalHex("key")
	if err != nil {
		return Output{}, err
	}

	var block []byte
	if key != nil {
		block, err = pinblock.Zone{Key: key, Format: format}.Encrypt(pin, pan, opts...)
	} else {
		block, err = pinblock.Pack(format, pin, pan, opts...)
	}
	if err != nil {
		return Output{}, err
	}

	return Output{
		Algorithm:   format.String(),
		Data:        map[string]string{"pin_block": cryptoutils.Raw2Str(block)},
		Diagnostics: map[string]string{"encrypted": fmt.Sprint(key != nil || format == pinblock.ISO4)},
	}, nil
}

func pinBlockDecode(_ Settings, p Params) (Output, error) {
	format, err := pinFormat(p, "format")
	if err != nil {
		return Output{}, err
	}
	block, err := p.Hex("pin_block")
	if err != nil {
		return Output{}, err
	}
	pan := p.Get("pan")
	key, err := p.OptionalHex("key")
	if err != nil {
		return Output{}, err
	}

	var pin string
	if key != nil {
		pin, err = pinblock.Zone{Key: key, Format: format}.Decrypt(block, pan)
	} else {
		pin, err = pinblock.Unpack(format, block, pan)
	}
	if err != nil {
		return Output{}, err
	}

	return Output{
		Algorithm:   format.String(),
		Data:        map[string]string{"pin": pin},
		Diagnostics: map[string]string{"pin_length": fmt.Sprint(len(pin))},
	}, nil
}

func pinBlockTranslate(s Settings, p Params) (Output, error) {
	block, err := p.Hex("pin_block")
	if err != nil {
		return Output{}, err
	}
	pan := p.Get("pan")
	var src, dst pinblock.Zone
	if src.Format, err = pinFormat(p, "source_format"); err != nil {
		return Output{}, err
	}
	if dst.Format, err = pinFormat(p, "dest_format"); err != nil {
		return Output{}, err
	}
	if src.Key, err = p.Hex("source_key"); err != nil {
		return Output{}, err
	}
	if dst.Key, err = p.Hex("dest_key"); err != nil {
		return Output{}, err
	}
	opts, err := fillOptions(s, p)
	if err != nil {
		return Output{}, err
	}

	out, err := pinblock.Translate(block, pan, src, dst, opts...)
	if err != nil {
		return Output{}, err
	}

	return Output{
		Algorithm: src.Format.String() + "->" + dst.Format.String(),
		Data:      map[string]string{"pin_block": cryptoutils.Raw2Str(out)},
	}, nil
}

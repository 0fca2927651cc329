package pinblock

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

// ISO Format 0: 0 || len || PIN || F fill, XOR 0000 || 12 PAN digits.
func encodeISO0(pin, pan string) ([]byte, error) {
	field := pinField('0', pin, strings.Repeat("F", blockNibbles))

	return xorPanField(field, pan)
}

func decodeISO0(block []byte, pan string) (string, error) {
	field, err := clearPanField(block, pan)
	if err != nil {
		return "", err
	}

	return decodePinField(field, '0', isHexF, blockNibbles)
}

// ISO Format 1: 1 || len || PIN || nonce fill. No PAN.
func encodeISO1(pin string, o *options) ([]byte, error) {
	fill, err := fillNibbles(o, blockNibbles-2-len(pin), func(b byte) byte { return b & 0x0F })
	if err != nil {
		return nil, err
	}

	return cryptoutils.Str2Raw(pinField('1', pin, fill))
}

func decodeISO1(block []byte) (string, error) {
	return decodePinField(cryptoutils.Raw2Str(block), '1', isHex, blockNibbles)
}

// ISO Format 2: 2 || len || PIN || F fill. No PAN, used between terminal and ICC.
func encodeISO2(pin string) ([]byte, error) {
	return cryptoutils.Str2Raw(pinField('2', pin, strings.Repeat("F", blockNibbles)))
}

func decodeISO2(block []byte) (string, error) {
	return decodePinField(cryptoutils.Raw2Str(block), '2', isHexF, blockNibbles)
}

// ISO Format 3: as format 0 with random A-F fill.
func encodeISO3(pin, pan string, o *options) ([]byte, error) {
	fill, err := fillNibbles(o, blockNibbles-2-len(pin), func(b byte) byte { return 0x0A + b%6 })
	if err != nil {
		return nil, err
	}

	return xorPanField(pinField('3', pin, fill), pan)
}

func decodeISO3(block []byte, pan string) (string, error) {
	field, err := clearPanField(block, pan)
	if err != nil {
		return "", err
	}

	return decodePinField(field, '3', isHexAF, blockNibbles)
}

// pinField lays out control || length || PIN and completes the 16 nibbles from fill.
func pinField(control byte, pin, fill string) string {
	head := fmt.Sprintf("%c%X%s", control, len(pin), pin)

	return head + fill[:blockNibbles-len(head)]
}

// fillNibbles returns n fill nibbles as hex, one per random byte mapped through conv.
func fillNibbles(o *options, n int, conv func(byte) byte) (string, error) {
	raw, err := o.randomBytes(n)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range raw {
		fmt.Fprintf(&sb, "%X", conv(b))
	}

	return sb.String(), nil
}

// panField12 returns the rightmost 12 PAN digits excluding the check digit.
func panField12(pan string) string {
	return pan[len(pan)-13 : len(pan)-1]
}

func xorPanField(field, pan string) ([]byte, error) {
	pinRaw, err := cryptoutils.Str2Raw(field)
	if err != nil {
		return nil, err
	}
	panRaw, err := cryptoutils.Str2Raw("0000" + panField12(pan))
	if err != nil {
		return nil, err
	}

	return cryptoutils.XORBytes(pinRaw, panRaw)
}

func clearPanField(block []byte, pan string) (string, error) {
	plain, err := xorPanField(cryptoutils.Raw2Str(block), pan)
	if err != nil {
		return "", err
	}

	return cryptoutils.Raw2Str(plain), nil
}

func isHex(c byte) bool   { return (c >= '0' && c <= '9') || isHexAF(c) }
func isHexAF(c byte) bool { return c >= 'A' && c <= 'F' }
func isHexF(c byte) bool  { return c == 'F' }

// decodePinField checks the control nibble, the length nibble, the PIN digits and the
// fill up to fillEnd, and returns the PIN.
func decodePinField(field string, control byte, validFill func(byte) bool, fillEnd int) (string, error) {
	if len(field) < fillEnd || field[0] != control {
		return "", fmt.Errorf("%w: expected control nibble %c", cryptoutils.ErrPinBlockIntegrity, control)
	}

	n, err := strconv.ParseUint(field[1:2], 16, 8)
	pinLen := int(n)
	if err != nil || pinLen < cryptoutils.PIN_MIN_LENGTH || pinLen > cryptoutils.PIN_MAX_LENGTH {
		return "", fmt.Errorf("%w: pin length nibble %q", cryptoutils.ErrPinBlockIntegrity, field[1:2])
	}

	pin := field[2 : 2+pinLen]
	if !cryptoutils.IsDigits(pin) {
		return "", fmt.Errorf("%w: pin contains non-decimal nibbles", cryptoutils.ErrPinBlockIntegrity)
	}
	for i := 2 + pinLen; i < fillEnd; i++ {
		if !validFill(field[i]) {
			return "", fmt.Errorf("%w: invalid fill nibble at %d", cryptoutils.ErrPinBlockIntegrity, i)
		}
	}

	return pin, nil
}

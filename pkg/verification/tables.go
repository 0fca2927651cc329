// Package verification implements the PIN and card verification value algorithms:
// IBM 3624 PIN offsets, Visa PVV and Visa CVV.
package verification

import (
	"fmt"
	"strings"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

// DefaultDecimalizationTable maps hex nibbles 0-F to 0123456789012345.
const DefaultDecimalizationTable = "0123456789012345"

// DecimalizationTable maps each of the 16 hex nibble values to a decimal digit.
type DecimalizationTable [16]byte

// ParseDecimalizationTable parses a table of exactly 16 decimal digits. Repeated digits
// are allowed.
func ParseDecimalizationTable(s string) (DecimalizationTable, error) {
	var t DecimalizationTable
	s = strings.TrimSpace(s)
	if len(s) != len(t) || !cryptoutils.IsDigits(s) {
		return t, fmt.Errorf("%w: need 16 decimal digits, got %q", cryptoutils.ErrInvalidDecimalizationTable, s)
	}
	for i := range t {
		t[i] = s[i] - '0'
	}

	return t, nil
}

func (t DecimalizationTable) String() string {
	var sb strings.Builder
	for _, d := range t {
		sb.WriteByte('0' + d)
	}

	return sb.String()
}

func (t DecimalizationTable) validate() error {
	for _, d := range t {
		if d > 9 {
			return fmt.Errorf("%w: value %d", cryptoutils.ErrInvalidDecimalizationTable, d)
		}
	}

	return nil
}

// decimalize maps every nibble of data through the table.
func (t DecimalizationTable) decimalize(data []byte) []byte {
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		out = append(out, t[b>>4], t[b&0x0F])
	}

	return out
}

// ValidationData selects the PAN digits that feed the IBM 3624 validation block.
// Length digits starting at Start (0 based) are left justified and padded to 16 nibbles
// with Pad, a hex character.
type ValidationData struct {
	Start  int
	Length int
	Pad    byte
}

// DefaultValidationData selects the rightmost 12 PAN digits excluding the check digit,
// padded with F.
func DefaultValidationData(pan string) ValidationData {
	start := max(len(pan)-13, 0)

	return ValidationData{Start: start, Length: 12, Pad: 'F'}
}

// block builds the 8-byte validation block from pan.
func (vd ValidationData) block(pan string) ([]byte, error) {
	pad := strings.ToUpper(string(vd.Pad))
	if vd.Start < 0 || vd.Length < 1 || vd.Length > 16 || !strings.ContainsAny(pad, "0123456789ABCDEF") {
		return nil, fmt.Errorf("%w: start %d length %d pad %q", cryptoutils.ErrInvalidValidationData, vd.Start, vd.Length, vd.Pad)
	}
	if vd.Start+vd.Length > len(pan) {
		return nil, fmt.Errorf(
			"%w: start %d plus length %d exceeds pan length %d",
			cryptoutils.ErrInvalidValidationData,
			vd.Start,
			vd.Length,
			len(pan),
		)
	}
	digits := pan[vd.Start : vd.Start+vd.Length]

	return cryptoutils.Str2Raw(digits + strings.Repeat(pad, 16-vd.Length))
}

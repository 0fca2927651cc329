package calculator

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/andrei-cloud/go_paycalc/pkg/bitmap"
	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
	"github.com/andrei-cloud/go_paycalc/pkg/mdc"
)

func newMDCCalculator(s Settings) Calculator {
	return &calculator{
		name:        "mdc",
		description: "MDC-2 (ISO/IEC 10118-2) hash over DES",
		settings:    s,
		handlers: map[Operation]handler{
			OpHash: mdcHash,
		},
	}
}

func newBitmapCalculator(s Settings) Calculator {
	return &calculator{
		name:        "bitmap",
		description: "ISO 8583 primary and secondary bitmaps",
		settings:    s,
		handlers: map[Operation]handler{
			OpEncode: bitmapEncode,
			OpDecode: bitmapDecode,
		},
	}
}

func mdcHash(_ Settings, p Params) (Output, error) {
	data, err := p.Data()
	if err != nil {
		return Output{}, err
	}
	sum := mdc.Sum(data)

	return Output{
		Algorithm:   "MDC-2",
		Data:        map[string]string{"hash": cryptoutils.Raw2Str(sum[:])},
		Diagnostics: map[string]string{"data_length": strconv.Itoa(len(data))},
	}, nil
}

func joinFields(fields []int) string {
	s := make([]string, len(fields))
	for i, f := range fields {
		s[i] = strconv.Itoa(f)
	}

	return strings.Join(s, ",")
}

func bitmapDecode(_ Settings, p Params) (Output, error) {
	hex, err := p.Required("bitmap")
	if err != nil {
		return Output{}, err
	}
	groups, err := bitmap.Describe(hex)
	if err != nil {
		return Output{}, err
	}
	all := slices.Concat(groups["primary"], groups["secondary"])

	return Output{
		Algorithm: "ISO8583-BITMAP",
		Data: map[string]string{
			"fields":    joinFields(all),
			"primary":   joinFields(groups["primary"]),
			"secondary": joinFields(groups["secondary"]),
		},
		Diagnostics: map[string]string{"field_count": strconv.Itoa(len(all))},
	}, nil
}

// bitmapEncode takes a comma or space separated list of field numbers.
func bitmapEncode(_ Settings, p Params) (Output, error) {
	list, err := p.Required("fields")
	if err != nil {
		return Output{}, err
	}
	var fields []int
	for _, f := range strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' }) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Output{}, fmt.Errorf("%w: field %q", ErrInvalidParam, f)
		}
		fields = append(fields, n)
	}
	hex, err := bitmap.Encode(fields)
	if err != nil {
		return Output{}, err
	}

	return Output{Algorithm: "ISO8583-BITMAP", Data: map[string]string{"bitmap": hex}}, nil
}

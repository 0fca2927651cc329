// Package bitmap packs and unpacks ISO 8583 presence bitmaps.
package bitmap

import (
	"errors"
	"fmt"
	"slices"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
	"github.com/moov-io/iso8583/field"
)

const (
	PRIMARY_BITS     = 64
	SECONDARY_BITS   = 128
	SECONDARY_FIELD  = 1
	MIN_DATA_FIELD   = 2
	BITMAP_BYTES     = PRIMARY_BITS / 8
	MAX_DATA_FIELD   = SECONDARY_BITS
	PRIMARY_HEX_LEN  = PRIMARY_BITS / 4
	EXTENDED_HEX_LEN = SECONDARY_BITS / 4
)

var (
	ErrInvalidBitmap = errors.New("invalid bitmap")
	ErrInvalidField  = errors.New("invalid field number")
)

// Decode returns the data fields present in a hex bitmap, in ascending order.
// Bit 1 announces the secondary bitmap and is not reported as a field.
func Decode(hexBitmap string) ([]int, error) {
	if len(hexBitmap) != PRIMARY_HEX_LEN && len(hexBitmap) != EXTENDED_HEX_LEN {
		return nil, fmt.Errorf("%w: expected %d or %d hex digits, got %d",
			ErrInvalidBitmap, PRIMARY_HEX_LEN, EXTENDED_HEX_LEN, len(hexBitmap))
	}
	raw, err := cryptoutils.Str2Raw(hexBitmap)
	if err != nil {
		return nil, err
	}

	bm := newBitmap()
	if err := bm.SetBytes(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBitmap, err)
	}
	secondary := bm.IsSet(SECONDARY_FIELD)
	switch {
	case secondary && len(raw) < SECONDARY_BITS/8:
		return nil, fmt.Errorf("%w: bit 1 set but secondary bitmap missing", ErrInvalidBitmap)
	case !secondary && len(raw) > PRIMARY_BITS/8:
		return nil, fmt.Errorf("%w: secondary bitmap present but bit 1 clear", ErrInvalidBitmap)
	}

	fields := []int{}
	for i := MIN_DATA_FIELD; i <= len(raw)*8; i++ {
		if bm.IsSet(i) {
			fields = append(fields, i)
		}
	}

	return fields, nil
}

// Encode builds the hex bitmap for the given data fields. The secondary bitmap and its
// indicator bit are added only when a field above 64 is present.
func Encode(fields []int) (string, error) {
	for _, f := range fields {
		if f < MIN_DATA_FIELD || f > MAX_DATA_FIELD {
			return "", fmt.Errorf("%w: %d (allowed %d..%d)", ErrInvalidField, f, MIN_DATA_FIELD, MAX_DATA_FIELD)
		}
	}

	// Set grows the bitmap and raises bit 1 for fields past 64.
	bm := newBitmap()
	for _, f := range fields {
		bm.Set(f)
	}
	raw, err := bm.Bytes()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBitmap, err)
	}

	return cryptoutils.Raw2Str(raw), nil
}

func newBitmap() *field.Bitmap {
	return field.NewBitmap(&field.Spec{Length: BITMAP_BYTES, Description: "Bitmap"})
}

// Describe pairs every field set in the bitmap with its position: primary or secondary.
func Describe(hexBitmap string) (map[string][]int, error) {
	fields, err := Decode(hexBitmap)
	if err != nil {
		return nil, err
	}
	out := map[string][]int{"primary": {}, "secondary": {}}
	for _, f := range fields {
		if f > PRIMARY_BITS {
			out["secondary"] = append(out["secondary"], f)
			continue
		}
		out["primary"] = append(out["primary"], f)
	}
	slices.Sort(out["primary"])
	slices.Sort(out["secondary"])

	return out, nil
}

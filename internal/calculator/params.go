package calculator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
	"github.com/andrei-cloud/go_paycalc/pkg/verification"
)

// Params is the string keyed parameter map of a request. Values are hex strings,
// decimal strings or plain text.
type Params map[string]string

// Get returns the trimmed value of name, or "" if absent.
func (p Params) Get(name string) string {
	return strings.TrimSpace(p[name])
}

// Has reports whether name is present and not blank.
func (p Params) Has(name string) bool {
	return p.Get(name) != ""
}

// Required returns the value of name or ErrMissingParam.
func (p Params) Required(name string) (string, error) {
	v := p.Get(name)
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, name)
	}

	return v, nil
}

// Hex decodes the required hex parameter name.
func (p Params) Hex(name string) ([]byte, error) {
	v, err := p.Required(name)
	if err != nil {
		return nil, err
	}
	b, err := cryptoutils.Str2Raw(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return b, nil
}

// OptionalHex decodes name if present and returns nil otherwise.
func (p Params) OptionalHex(name string) ([]byte, error) {
	if !p.Has(name) {
		return nil, nil
	}

	return p.Hex(name)
}

// Int parses name as a decimal integer, returning def when absent.
func (p Params) Int(name string, def int) (int, error) {
	if !p.Has(name) {
		return def, nil
	}
	n, err := strconv.Atoi(p.Get(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a decimal integer", ErrInvalidParam, name)
	}

	return n, nil
}

// Bool parses name as a boolean, returning false when absent.
func (p Params) Bool(name string) (bool, error) {
	if !p.Has(name) {
		return false, nil
	}
	b, err := strconv.ParseBool(p.Get(name))
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", ErrInvalidParam, name)
	}

	return b, nil
}

// Data returns the "data" parameter decoded per "encoding": hex (default) or text.
func (p Params) Data() ([]byte, error) {
	switch strings.ToLower(p.Get("encoding")) {
	case "", "hex":
		return p.Hex("data")
	case "text", "ascii":
		if _, ok := p["data"]; !ok {
			return nil, fmt.Errorf("%w: data", ErrMissingParam)
		}

		return []byte(p["data"]), nil
	default:
		return nil, fmt.Errorf("%w: encoding %q", ErrInvalidParam, p.Get("encoding"))
	}
}

func (p Params) decimalizationTable(s Settings) (verification.DecimalizationTable, error) {
	table := p.Get("decimalization_table")
	if table == "" {
		table = s.DecimalizationTable
	}
	if table == "" {
		table = verification.DefaultDecimalizationTable
	}

	return verification.ParseDecimalizationTable(table)
}

func (p Params) validationData(s Settings, pan string) (verification.ValidationData, error) {
	vd := p.Get("validation_data")
	if vd == "" {
		vd = s.ValidationData
	}
	if vd == "" {
		return verification.DefaultValidationData(pan), nil
	}

	return ParseValidationData(vd)
}

// ParseValidationData parses "start,length,pad", for example "3,12,F".
func ParseValidationData(s string) (verification.ValidationData, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return verification.ValidationData{}, fmt.Errorf(
			"%w: validation data must be start,length,pad", cryptoutils.ErrInvalidValidationData)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return verification.ValidationData{}, fmt.Errorf("%w: start %q", cryptoutils.ErrInvalidValidationData, parts[0])
	}
	length, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return verification.ValidationData{}, fmt.Errorf("%w: length %q", cryptoutils.ErrInvalidValidationData, parts[1])
	}
	pad := strings.TrimSpace(parts[2])
	if len(pad) != 1 {
		return verification.ValidationData{}, fmt.Errorf("%w: pad %q", cryptoutils.ErrInvalidValidationData, parts[2])
	}

	return verification.ValidationData{Start: start, Length: length, Pad: pad[0]}, nil
}

package calculator

import (
	"strconv"

	"github.com/andrei-cloud/go_paycalc/pkg/verification"
)

func newOffsetCalculator(s Settings) Calculator {
	return &calculator{
		name:        "offset",
		description: "IBM 3624 PIN offset: generate, recover the PIN, validate",
		settings:    s,
		handlers: map[Operation]handler{
			OpGenerate: offsetGenerate,
			OpDecode:   offsetRecover,
			OpValidate: offsetValidate,
			OpDerive:   offsetNaturalPin,
		},
	}
}

func newPVVCalculator(s Settings) Calculator {
	return &calculator{
		name:        "pvv",
		description: "Visa PIN verification value",
		settings:    s,
		handlers: map[Operation]handler{
			OpGenerate: pvvGenerate,
			OpValidate: pvvValidate,
		},
	}
}

func newCVVCalculator(s Settings) Calculator {
	return &calculator{
		name:        "cvv",
		description: "Visa card verification value (CVV, CVV2, iCVV by service code)",
		settings:    s,
		handlers: map[Operation]handler{
			OpGenerate: cvvGenerate,
			OpValidate: cvvValidate,
		},
	}
}

// ibmInputs holds the parameters every IBM 3624 operation shares.
type ibmInputs struct {
	pdk []byte
	pan string
	vd  verification.ValidationData
	dt  verification.DecimalizationTable
}

func readIBMInputs(s Settings, p Params) (ibmInputs, error) {
	var in ibmInputs
	var err error
	if in.pdk, err = p.Hex("pdk"); err != nil {
		return in, err
	}
	if in.pan, err = p.Required("pan"); err != nil {
		return in, err
	}
	if in.dt, err = p.decimalizationTable(s); err != nil {
		return in, err
	}
	if in.vd, err = p.validationData(s, in.pan); err != nil {
		return in, err
	}

	return in, nil
}

func (in ibmInputs) diagnostics() map[string]string {
	return map[string]string{
		"decimalization_table": in.dt.String(),
		"validation_start":     strconv.Itoa(in.vd.Start),
		"validation_length":    strconv.Itoa(in.vd.Length),
		"validation_pad":       string(in.vd.Pad),
	}
}

const ibm3624 = "IBM-3624"

func offsetGenerate(s Settings, p Params) (Output, error) {
	in, err := readIBMInputs(s, p)
	if err != nil {
		return Output{}, err
	}
	pin, err := p.Required("pin")
	if err != nil {
		return Output{}, err
	}
	offset, err := verification.ComputeOffset(in.pdk, in.pan, pin, in.vd, in.dt)
	if err != nil {
		return Output{}, err
	}

	return Output{Algorithm: ibm3624, Data: map[string]string{"offset": offset}, Diagnostics: in.diagnostics()}, nil
}

func offsetRecover(s Settings, p Params) (Output, error) {
	in, err := readIBMInputs(s, p)
	if err != nil {
		return Output{}, err
	}
	offset, err := p.Required("offset")
	if err != nil {
		return Output{}, err
	}
	pin, err := verification.RecoverPin(in.pdk, in.pan, offset, in.vd, in.dt)
	if err != nil {
		return Output{}, err
	}

	return Output{Algorithm: ibm3624, Data: map[string]string{"pin": pin}, Diagnostics: in.diagnostics()}, nil
}

func offsetValidate(s Settings, p Params) (Output, error) {
	in, err := readIBMInputs(s, p)
	if err != nil {
		return Output{}, err
	}
	pin, err := p.Required("pin")
	if err != nil {
		return Output{}, err
	}
	offset, err := p.Required("offset")
	if err != nil {
		return Output{}, err
	}
	ok, err := verification.VerifyOffset(in.pdk, in.pan, pin, offset, in.vd, in.dt)
	if err != nil {
		return Output{}, err
	}

	return Output{Algorithm: ibm3624, Data: validity(ok), Diagnostics: in.diagnostics()}, nil
}

// offsetNaturalPin derives the natural PIN of the given length (default 4).
func offsetNaturalPin(s Settings, p Params) (Output, error) {
	in, err := readIBMInputs(s, p)
	if err != nil {
		return Output{}, err
	}
	n, err := p.Int("length", 4)
	if err != nil {
		return Output{}, err
	}
	pin, err := verification.NaturalPin(in.pdk, in.pan, n, in.vd, in.dt)
	if err != nil {
		return Output{}, err
	}

	return Output{Algorithm: ibm3624, Data: map[string]string{"natural_pin": pin}, Diagnostics: in.diagnostics()}, nil
}

type pvvInputs struct {
	pvk  []byte
	pan  string
	pin  string
	pvki string
}

func readPVVInputs(p Params) (pvvInputs, error) {
	var in pvvInputs
	var err error
	if in.pvk, err = p.Hex("pvk"); err != nil {
		return in, err
	}
	if in.pan, err = p.Required("pan"); err != nil {
		return in, err
	}
	if in.pin, err = p.Required("pin"); err != nil {
		return in, err
	}
	if in.pvki, err = p.Required("pvki"); err != nil {
		return in, err
	}

	return in, nil
}

const visaPVV = "VISA-PVV"

func pvvGenerate(_ Settings, p Params) (Output, error) {
	in, err := readPVVInputs(p)
	if err != nil {
		return Output{}, err
	}
	pvv, err := verification.ComputePvv(in.pvk, in.pan, in.pin, in.pvki)
	if err != nil {
		return Output{}, err
	}

	return Output{
		Algorithm:   visaPVV,
		Data:        map[string]string{"pvv": pvv},
		Diagnostics: map[string]string{"pvki": in.pvki, "cipher": desAlgorithm(in.pvk)},
	}, nil
}

func pvvValidate(_ Settings, p Params) (Output, error) {
	in, err := readPVVInputs(p)
	if err != nil {
		return Output{}, err
	}
	pvv, err := p.Required("pvv")
	if err != nil {
		return Output{}, err
	}
	ok, err := verification.ValidatePvv(in.pvk, in.pan, in.pin, in.pvki, pvv)
	if err != nil {
		return Output{}, err
	}

	return Output{Algorithm: visaPVV, Data: validity(ok)}, nil
}

type cvvInputs struct {
	cvk         []byte
	pan         string
	expiry      string
	serviceCode string
}

func readCVVInputs(p Params) (cvvInputs, error) {
	var in cvvInputs
	var err error
	if in.cvk, err = p.Hex("cvk"); err != nil {
		return in, err
	}
	if in.pan, err = p.Required("pan"); err != nil {
		return in, err
	}
	if in.expiry, err = p.Required("expiry"); err != nil {
		return in, err
	}
	if in.serviceCode, err = p.Required("service_code"); err != nil {
		return in, err
	}

	return in, nil
}

const visaCVV = "VISA-CVV"

func cvvGenerate(_ Settings, p Params) (Output, error) {
	in, err := readCVVInputs(p)
	if err != nil {
		return Output{}, err
	}
	cvv, err := verification.ComputeCvv(in.cvk, in.pan, in.expiry, in.serviceCode)
	if err != nil {
		return Output{}, err
	}

	return Output{Algorithm: visaCVV, Data: map[string]string{"cvv": cvv}}, nil
}

func cvvValidate(_ Settings, p Params) (Output, error) {
	in, err := readCVVInputs(p)
	if err != nil {
		return Output{}, err
	}
	cvv, err := p.Required("cvv")
	if err != nil {
		return Output{}, err
	}
	ok, err := verification.ValidateCvv(in.cvk, in.pan, in.expiry, in.serviceCode, cvv)
	if err != nil {
		return Output{}, err
	}

	return Output{Algorithm: visaCVV, Data: validity(ok)}, nil
}

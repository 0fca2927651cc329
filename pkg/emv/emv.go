// Package emv derives EMV card keys (UDK / ICC master keys) and session keys, and computes
// application cryptograms.
//
// Each payment scheme is a strategy value pairing a card key derivation with a session key
// derivation:
//
//	MasterCard  Option A UDK, MasterCard SKD session key (ATC || F0/0F || 00 || UN)
//	Visa        Option B UDK, EMV common session key
//	Common      Option A UDK, EMV common session key
//	AES         Option C UDK, EMV common session key over AES
//	Template    11 PAN digits || PSN || F pad, single encryption; session data ATC || F0 * 6
package emv

import (
	"fmt"
	"strings"

	"github.com/andrei-cloud/go_paycalc/pkg/cryptoutils"
)

// Scheme selects the derivation layout.
type Scheme int

const (
	MasterCard Scheme = iota
	Visa
	Common
	AES
	Template
)

const (
	EMV_PAN_MIN_LENGTH = 11
	ATC_MAX            = 0xFFFF
	UN_LENGTH          = 4
)

var schemeNames = map[Scheme]string{
	MasterCard: "MASTERCARD",
	Visa:       "VISA",
	Common:     "COMMON",
	AES:        "AES",
	Template:   "TEMPLATE",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}

	return fmt.Sprintf("Scheme(%d)", int(s))
}

// ParseScheme accepts a scheme name in any case. "MC" is an alias of MasterCard.
func ParseScheme(s string) (Scheme, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "MC" {
		return MasterCard, nil
	}
	for scheme, name := range schemeNames {
		if name == s {
			return scheme, nil
		}
	}

	return 0, fmt.Errorf("unsupported emv scheme %q", s)
}

// Schemes lists every supported scheme.
func Schemes() []Scheme {
	return []Scheme{MasterCard, Visa, Common, AES, Template}
}

type strategy struct {
	aes bool
	// udk returns the card key and the derivation data it was enciphered from.
	udk func(mk []byte, pan, psn string) (key, data []byte, err error)
	// session returns the session key and its diversification data.
	session func(udk []byte, atc uint16, un []byte) (key, data []byte, err error)
}

var strategies = map[Scheme]strategy{
	MasterCard: {udk: optionA, session: masterCardSessionKey},
	Visa:       {udk: optionB, session: commonSession(false)},
	Common:     {udk: optionA, session: commonSession(false)},
	AES:        {aes: true, udk: optionC, session: commonSession(true)},
	Template:   {udk: templateUDK, session: templateSessionKey},
}

func lookup(scheme Scheme) (strategy, error) {
	s, ok := strategies[scheme]
	if !ok {
		return strategy{}, fmt.Errorf("unsupported emv scheme %v", scheme)
	}

	return s, nil
}

// DerivationContext holds the transient inputs of one derivation.
type DerivationContext struct {
	MasterKey   []byte
	PAN         string
	PANSequence string
	ATC         int
	UN          []byte // unpredictable number, MasterCard only
}

// Derivation carries the derived keys and the data blocks they came from.
type Derivation struct {
	UDKData     []byte
	UDK         []byte
	SessionData []byte
	SessionKey  []byte
}

// DeriveUDK derives the card unique key from the issuer master key.
func DeriveUDK(scheme Scheme, masterKey []byte, pan, panSequence string) ([]byte, error) {
	key, _, err := deriveUDK(scheme, masterKey, pan, panSequence)

	return key, err
}

// DeriveSessionKey derives the session key for the transaction counter atc.
func DeriveSessionKey(scheme Scheme, udk []byte, atc int, un []byte) ([]byte, error) {
	key, _, err := deriveSessionKey(scheme, udk, atc, un)

	return key, err
}

// Derive runs the card key and session key derivations and returns every intermediate value.
func Derive(scheme Scheme, ctx DerivationContext) (Derivation, error) {
	var d Derivation
	var err error

	d.UDK, d.UDKData, err = deriveUDK(scheme, ctx.MasterKey, ctx.PAN, ctx.PANSequence)
	if err != nil {
		return Derivation{}, err
	}
	d.SessionKey, d.SessionData, err = deriveSessionKey(scheme, d.UDK, ctx.ATC, ctx.UN)
	if err != nil {
		return Derivation{}, err
	}

	return d, nil
}

func deriveUDK(scheme Scheme, mk []byte, pan, psn string) ([]byte, []byte, error) {
	s, err := lookup(scheme)
	if err != nil {
		return nil, nil, err
	}
	if err := cryptoutils.CheckPAN(pan, EMV_PAN_MIN_LENGTH); err != nil {
		return nil, nil, err
	}
	psn, err = normalizePSN(psn)
	if err != nil {
		return nil, nil, err
	}

	return s.udk(mk, pan, psn)
}

func deriveSessionKey(scheme Scheme, udk []byte, atc int, un []byte) ([]byte, []byte, error) {
	s, err := lookup(scheme)
	if err != nil {
		return nil, nil, err
	}
	if atc < 0 || atc > ATC_MAX {
		return nil, nil, fmt.Errorf("%w: %d", cryptoutils.ErrInvalidAtc, atc)
	}

	return s.session(udk, uint16(atc), un)
}

// normalizePSN left pads a one digit sequence number; empty means 00.
func normalizePSN(psn string) (string, error) {
	switch len(psn) {
	case 0:
		return "00", nil
	case 1:
		psn = "0" + psn
	}
	if len(psn) != 2 || !cryptoutils.IsDigits(psn) {
		return "", fmt.Errorf("%w: pan sequence number must be two digits, got %q", cryptoutils.ErrInvalidPan, psn)
	}

	return psn, nil
}

func atcBytes(atc uint16) []byte {
	return []byte{byte(atc >> 8), byte(atc)}
}

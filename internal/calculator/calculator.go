// Package calculator exposes the payment cryptography algorithms behind a uniform
// operation + parameter map boundary. Every invocation returns a fresh Result; errors
// and panics never escape Execute.
package calculator

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/andrei-cloud/go_paycalc/internal/logging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Operation names what a calculator is asked to do.
type Operation string

const (
	OpDerive    Operation = "DERIVE"
	OpGenerate  Operation = "GENERATE"
	OpEncode    Operation = "ENCODE"
	OpDecode    Operation = "DECODE"
	OpValidate  Operation = "VALIDATE"
	OpMAC       Operation = "MAC"
	OpEncrypt   Operation = "ENCRYPT"
	OpDecrypt   Operation = "DECRYPT"
	OpTranslate Operation = "TRANSLATE"
	OpHash      Operation = "HASH"
)

var operations = []Operation{
	OpDerive, OpGenerate, OpEncode, OpDecode, OpValidate,
	OpMAC, OpEncrypt, OpDecrypt, OpTranslate, OpHash,
}

var (
	ErrUnknownCalculator    = errors.New("unknown calculator")
	ErrUnknownOperation     = errors.New("unknown operation")
	ErrUnsupportedOperation = errors.New("operation not supported by calculator")
	ErrMissingParam         = errors.New("missing parameter")
	ErrInvalidParam         = errors.New("invalid parameter")
	ErrInternal             = errors.New("internal calculator error")
)

// ParseOperation parses an operation name, case insensitive.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(operations, op) {
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
	}

	return op, nil
}

// Metadata describes how a result was produced.
type Metadata struct {
	Algorithm   string            `json:"algorithm,omitempty"`
	AuditID     string            `json:"audit_id"`
	Diagnostics map[string]string `json:"diagnostics,omitempty"`
}

// Result is the outcome of one calculator invocation. A failed result carries the error
// message and no data.
type Result struct {
	Success  bool              `json:"success"`
	Data     map[string]string `json:"data,omitempty"`
	Error    string            `json:"error,omitempty"`
	Metadata Metadata          `json:"metadata"`

	err error
}

// Err returns the error behind a failed result, for errors.Is matching.
func (r Result) Err() error {
	return r.err
}

// Failed returns a failed result for an error raised outside a calculator, such as a
// malformed request.
func Failed(err error) Result {
	return failure(uuid.NewString(), err)
}

func failure(auditID string, err error) Result {
	return Result{Error: err.Error(), Metadata: Metadata{AuditID: auditID}, err: err}
}

// Output is what an operation handler produces.
type Output struct {
	Algorithm   string
	Data        map[string]string
	Diagnostics map[string]string
}

// Settings carries the process wide defaults calculators fall back to.
type Settings struct {
	// Random supplies PIN block fill and generated keys.
	Random io.Reader
	// DecimalizationTable is used when a request does not name one.
	DecimalizationTable string
	// ValidationData is "start,length,pad"; empty selects the rightmost 12 PAN digits
	// before the check digit.
	ValidationData string
}

type handler func(s Settings, p Params) (Output, error)

// Calculator is one calculator screen: a named set of operations.
type Calculator interface {
	Name() string
	Description() string
	Operations() []Operation
	Supports(op Operation) bool
	Execute(op Operation, params Params, logger zerolog.Logger) Result
}

type calculator struct {
	name        string
	description string
	settings    Settings
	handlers    map[Operation]handler
}

func (c *calculator) Name() string        { return c.name }
func (c *calculator) Description() string { return c.description }

func (c *calculator) Operations() []Operation {
	ops := make([]Operation, 0, len(c.handlers))
	for _, op := range operations {
		if _, ok := c.handlers[op]; ok {
			ops = append(ops, op)
		}
	}

	return ops
}

func (c *calculator) Supports(op Operation) bool {
	_, ok := c.handlers[op]

	return ok
}

// Execute runs op and logs the audit record to logger.
func (c *calculator) Execute(op Operation, params Params, logger zerolog.Logger) (res Result) {
	start := time.Now()
	auditID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("calculator", c.name).
				Str("operation", string(op)).
				Str("audit_id", auditID).
				Interface("panic", r).
				Msg("calculator panicked")
			res = failure(auditID, fmt.Errorf("%w: %v", ErrInternal, r))
		}
		logging.LogCalculation(logger, logging.CalculationEvent{
			Calculator: c.name,
			Operation:  string(op),
			Params:     params,
			Success:    res.Success,
			Algorithm:  res.Metadata.Algorithm,
			AuditID:    auditID,
			Error:      res.Error,
			Duration:   time.Since(start),
		})
	}()

	h, ok := c.handlers[op]
	if !ok {
		return failure(auditID, fmt.Errorf("%w: %s does not support %s", ErrUnsupportedOperation, c.name, op))
	}

	out, err := h(c.settings, params)
	if err != nil {
		return failure(auditID, err)
	}

	return Result{
		Success: true,
		Data:    out.Data,
		Metadata: Metadata{
			Algorithm:   out.Algorithm,
			AuditID:     auditID,
			Diagnostics: out.Diagnostics,
		},
	}
}

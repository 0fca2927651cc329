package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maskedValue = "****"

// sensitiveParams are calculator parameters that never reach the audit log in clear.
// A clear PIN block together with the logged PAN yields the PIN, and PIN offsets,
// PVVs and CVVs are verification values, so all of them are masked too.
var sensitiveParams = map[string]struct{}{
	"key":         {},
	"pin":         {},
	"pin_block":   {},
	"natural_pin": {},
	"offset":      {},
	"pvv":         {},
	"cvv":         {},
	"pdk":         {},
	"pvk":         {},
	"cvk":         {},
	"master_key":  {},
	"session_key": {},
	"source_key":  {},
	"dest_key":    {},
	"udk":         {},
}

// InitLogger initializes the zerolog logger with the specified debug mode and output format.
func InitLogger(debug, human bool) {
	initLogger(os.Stdout, debug, human)
}

func initLogger(out io.Writer, debug, human bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano           // always initialize base logger with timestamp.
	base := zerolog.New(out).With().Timestamp().Logger() // initialize base logger.
	if human {
		log.Logger = base.Output(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339Nano,
		}) // select output format.
	} else {
		log.Logger = base // use JSON logger.
	}
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel) // set debug level.
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel) // set info level.
	}
}

// CalculationEvent is the audit record of one calculator invocation.
type CalculationEvent struct {
	Calculator string
	Operation  string
	Params     map[string]string
	Success    bool
	Algorithm  string
	AuditID    string
	Error      string
	Duration   time.Duration
}

// LogCalculation writes the audit record of a calculation. Secret parameters are masked.
func LogCalculation(logger zerolog.Logger, ev CalculationEvent) {
	e := logger.Info()
	if !ev.Success {
		e = logger.Warn().Str("error", ev.Error)
	}
	e.Str("event", "calculation").
		Str("calculator", ev.Calculator).
		Str("operation", ev.Operation).
		Str("audit_id", ev.AuditID).
		Str("algorithm", ev.Algorithm).
		Bool("success", ev.Success).
		Fields(map[string]any{"params": MaskParams(ev.Params)}).
		Str("duration", ev.Duration.String()).
		Msg("calculation completed")
}

// MaskParams returns a copy of params with key material and PINs replaced by a mask.
func MaskParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if _, ok := sensitiveParams[strings.ToLower(k)]; ok {
			out[k] = maskedValue
			continue
		}
		out[k] = v
	}

	return out
}

// LogRequest logs a received calculator request with structured fields.
func LogRequest(clientIP, calculator, operation string, size, activeConns int) {
	log.Info().
		Str("event", "request_received").
		Str("client_ip", clientIP).
		Str("calculator", calculator).
		Str("operation", operation).
		Int("request_bytes", size).
		Int("active_connections", activeConns).
		Msg("received request")
}

// LogResponse logs a sent response with structured fields.
func LogResponse(clientIP, calculator, code string, size, activeConns int) {
	log.Info().
		Str("event", "response_sent").
		Str("client_ip", clientIP).
		Str("calculator", calculator).
		Str("code", code).
		Int("response_bytes", size).
		Int("active_connections", activeConns).
		Msg("sent response")
}

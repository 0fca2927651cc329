// Package server exposes the calculator registry over anet framed TCP.
// Every frame carries one JSON request and receives one JSON response.
package server

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	anetserver "github.com/andrei-cloud/anet/server"
	"github.com/andrei-cloud/go_paycalc/internal/calculator"
	"github.com/andrei-cloud/go_paycalc/internal/errorcodes"
	"github.com/andrei-cloud/go_paycalc/internal/logging"
	"github.com/rs/zerolog/log"
)

// Request is the JSON body of one frame.
type Request struct {
	Calculator string            `json:"calculator"`
	Operation  string            `json:"operation"`
	Params     map[string]string `json:"params"`
}

// Response carries the response code and the calculator result.
type Response struct {
	Code   string            `json:"code"`
	Result calculator.Result `json:"result"`
}

// logAdapter implements anet.Logger using zerolog.
type logAdapter struct{}

// Server wraps the anet TCP server and the calculator registry.
type Server struct {
	address     string
	srv         *anetserver.Server
	registry    *calculator.Registry
	activeConns int32
}

func (l logAdapter) Print(v ...any) {
	log.Info().Msg(fmt.Sprint(v...))
}

func (l logAdapter) Printf(format string, v ...any) {
	log.Info().Msgf(format, v...)
}

func (l logAdapter) Infof(format string, v ...any) {
	log.Info().Msgf(format, v...)
}

func (l logAdapter) Warnf(format string, v ...any) {
	log.Warn().Msgf(format, v...)
}

func (l logAdapter) Errorf(format string, v ...any) {
	log.Error().Msgf(format, v...)
}

// NewServer configures and returns the calculator server instance.
func NewServer(address string, registry *calculator.Registry) (*Server, error) {
	cfg := &anetserver.ServerConfig{
		MaxConns:        100,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     0 * time.Second, // disable idle connection closure.
		ShutdownTimeout: 5 * time.Second,
		Logger:          logAdapter{},
	}

	s := &Server{
		address:  address,
		registry: registry,
	}
	srv, err := anetserver.NewServer(address, anetserver.HandlerFunc(s.handle), cfg)
	if err != nil {
		return nil, fmt.Errorf("server setup failed: %w", err)
	}
	s.srv = srv

	return s, nil
}

// Start begins listening for connections.
func (s *Server) Start() error {
	log.Info().Str("address", s.address).Msg("server started")
	return s.srv.Start()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	return s.srv.Stop()
}

// Process runs one JSON request against the registry and returns the JSON response.
// Malformed requests get a failed result, never a transport error.
func (s *Server) Process(data []byte, clientIP string) []byte {
	var req Request
	var res calculator.Result

	decodeErr := json.Unmarshal(data, &req)
	logging.LogRequest(clientIP, req.Calculator, req.Operation, len(data), int(atomic.LoadInt32(&s.activeConns)))

	if decodeErr != nil {
		res = calculator.Failed(fmt.Errorf("%w: %v", calculator.ErrInvalidParam, decodeErr))
	} else if op, err := calculator.ParseOperation(req.Operation); err != nil {
		res = calculator.Failed(err)
	} else {
		logger := log.With().Str("client_ip", clientIP).Logger()
		res = s.registry.Execute(req.Calculator, op, req.Params, logger)
	}

	code := errorcodes.FromResult(res).CodeOnly()
	resp, err := json.Marshal(Response{Code: code, Result: res})
	if err != nil {
		// unreachable: Result holds only strings.
		log.Error().Err(err).Msg("failed to encode response")
		resp = []byte(`{"code":"41"}`)
	}
	logging.LogResponse(clientIP, req.Calculator, code, len(resp), int(atomic.LoadInt32(&s.activeConns)))

	return resp
}

func (s *Server) handle(conn *anetserver.ServerConn, data []byte) ([]byte, error) {
	client := conn.Conn.RemoteAddr().String()
	atomic.AddInt32(&s.activeConns, 1)
	defer atomic.AddInt32(&s.activeConns, -1)

	start := time.Now()
	resp := s.Process(data, client)

	log.Debug().
		Str("event", "handle_done").
		Str("client_ip", client).
		Str("duration", time.Since(start).String()).
		Msg("completed request handling")

	return resp, nil
}

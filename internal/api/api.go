// Package api serves the calculator registry over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/andrei-cloud/go_paycalc/internal/calculator"
	"github.com/andrei-cloud/go_paycalc/internal/errorcodes"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// API is a HTTP API for the calculator registry.
type API struct {
	registry *calculator.Registry
	logger   zerolog.Logger
}

// CalculatorInfo describes one registered calculator.
type CalculatorInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Operations  []calculator.Operation `json:"operations"`
}

func NewAPI(registry *calculator.Registry, logger zerolog.Logger) *API {
	return &API{
		registry: registry,
		logger:   logger,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/v1/calculators", func(r chi.Router) {
		r.Get("/", a.listCalculators)
		r.Post("/{name}/{operation}", a.execute)
	})
}

func (a *API) listCalculators(w http.ResponseWriter, _ *http.Request) {
	list := a.registry.List()
	out := make([]CalculatorInfo, 0, len(list))
	for _, c := range list {
		out = append(out, CalculatorInfo{
			Name:        c.Name(),
			Description: c.Description(),
			Operations:  c.Operations(),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

// execute runs one operation. The body is the parameter map; an empty body means no
// parameters.
func (a *API) execute(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var res calculator.Result
	params := calculator.Params{}
	op, err := calculator.ParseOperation(chi.URLParam(r, "operation"))
	if err == nil {
		err = decodeParams(r.Body, &params)
	}
	if err != nil {
		res = calculator.Failed(err)
	} else {
		logger := a.logger.With().Str("request_id", requestID(r.Context())).Logger()
		res = a.registry.Execute(name, op, params, logger)
	}

	w.Header().Set("X-Result-Code", errorcodes.FromResult(res).CodeOnly())
	writeJSON(w, statusOf(res), res)
}

func decodeParams(body io.Reader, params *calculator.Params) error {
	err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(params)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", calculator.ErrInvalidParam, err)
	}

	return nil
}

func statusOf(res calculator.Result) int {
	switch err := res.Err(); {
	case res.Success:
		return http.StatusOK
	case errors.Is(err, calculator.ErrUnknownCalculator):
		return http.StatusNotFound
	case errors.Is(err, calculator.ErrInternal):
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

//nolint:all // test package
package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andrei-cloud/go_paycalc/internal/api"
	"github.com/andrei-cloud/go_paycalc/internal/calculator"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() http.Handler {
	return api.NewRouter(calculator.NewRegistry(calculator.Settings{}), zerolog.Nop())
}

func post(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, calculator.Result) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var res calculator.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))

	return w, res
}

func TestLive(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestListCalculators(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/calculators/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var list []api.CalculatorInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 10)
	assert.Equal(t, "bitmap", list[0].Name)
	assert.Contains(t, list[0].Operations, calculator.OpEncode)
}

func TestExecute(t *testing.T) {
	t.Parallel()

	h := newRouter()

	w, res := post(t, h, "/v1/calculators/pinblock/encode", `{"format":"ISO0","pin":"1234","pan":"4111111111111111"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, res.Success)
	assert.Equal(t, "041225EEEEEEEEEE", res.Data["pin_block"])
	assert.Equal(t, "00", w.Header().Get("X-Result-Code"))
	assert.NotEmpty(t, res.Metadata.AuditID)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{name: "unknown calculator", path: "/v1/calculators/enigma/encrypt", body: `{}`, status: http.StatusNotFound, code: "86"},
		{name: "unknown operation", path: "/v1/calculators/kcv/explode", body: `{}`, status: http.StatusUnprocessableEntity, code: "67"},
		{name: "bad json", path: "/v1/calculators/kcv/generate", body: `{"key":`, status: http.StatusUnprocessableEntity, code: "15"},
		{name: "empty body", path: "/v1/calculators/kcv/generate", body: ``, status: http.StatusUnprocessableEntity, code: "15"},
		{
			name:   "integrity failure",
			path:   "/v1/calculators/pinblock/decode",
			body:   `{"format":"ISO0","pin_block":"041225EEEEEEEEEE","pan":"5555555555554444"}`,
			status: http.StatusUnprocessableEntity,
			code:   "20",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w, res := post(t, h, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, w.Header().Get("X-Result-Code"))
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Error)
		})
	}
}

func TestServerStartStop(t *testing.T) {
	t.Parallel()

	srv := api.NewServer("127.0.0.1:0", calculator.NewRegistry(calculator.Settings{}), zerolog.Nop())
	require.NoError(t, srv.Start())

	resp, err := http.Get("http://" + srv.Addr + "/-/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop())
}

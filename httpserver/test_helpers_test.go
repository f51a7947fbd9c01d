package httpserver_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"contactbook/httpserver"
	"contactbook/pkg/config"
)

// apiResponse mirrors httpserver.APIResponse with the result left raw.
type apiResponse struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
	Info    string          `json:"info"`
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.AppEnv = "test"
	return cfg
}

func mustNewServer(t testing.TB, opts ...httpserver.Option) *httpserver.Server {
	t.Helper()
	server, err := httpserver.New(append([]httpserver.Option{httpserver.WithConfig(testConfig())}, opts...)...)
	require.NoError(t, err)
	return server
}

func decodeAPIResponse(t testing.TB, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return resp
}

func decodeAPIResult(t testing.TB, raw json.RawMessage, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out))
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wallet-mcp/internal/tool"
)

var echoSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"x": {Type: "integer"},
	},
}

func echoTool() tool.Tool {
	return tool.Tool{
		Name:        "echo",
		Description: "returns its input",
		Schema:      echoSchema,
		Execute: func(_ context.Context, params map[string]any) (any, error) {
			return params, nil
		},
	}
}

func failTool() tool.Tool {
	return tool.Tool{
		Name:        "flaky",
		Description: "always fails",
		Execute: func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("boom")
		},
	}
}

func newTestServer(t *testing.T, tools ...tool.Tool) *Server {
	t.Helper()
	reg, err := tool.NewRegistry(tools...)
	require.NoError(t, err)
	return New(Config{}, reg)
}

func dispatch(s *Server, method string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/mcp", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCapabilities(t *testing.T) {
	s := newTestServer(t, echoTool(), failTool())

	rr := dispatch(s, http.MethodPost, []byte(`{"type":"capabilities"}`))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		ProtocolVersion string `json:"protocol_version"`
		Capabilities    struct {
			Tools []map[string]json.RawMessage `json:"tools"`
		} `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "0.1", resp.ProtocolVersion)
	require.Len(t, resp.Capabilities.Tools, 2)

	// Registration order, public fields only.
	assert.JSONEq(t, `"echo"`, string(resp.Capabilities.Tools[0]["name"]))
	assert.JSONEq(t, `"flaky"`, string(resp.Capabilities.Tools[1]["name"]))
	for _, d := range resp.Capabilities.Tools {
		assert.NotContains(t, d, "execute")
		assert.Contains(t, d, "description")
	}

	// The advertised schema is exactly the tool's declared schema.
	wantSchema, err := json.Marshal(echoSchema)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantSchema), string(resp.Capabilities.Tools[0]["parameters"]))
}

func TestToolCallSuccess(t *testing.T) {
	s := newTestServer(t, echoTool())

	rr := dispatch(s, http.MethodPost, []byte(`{"type":"tool_call","tool_name":"echo","parameters":{"x":1}}`))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"result":{"x":1}}`, rr.Body.String())
}

func TestToolCallUnknownTool(t *testing.T) {
	s := newTestServer(t, echoTool())

	rr := dispatch(s, http.MethodPost, []byte(`{"type":"tool_call","tool_name":"nope","parameters":{}}`))
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Tool not found: nope"}`, rr.Body.String())
}

func TestToolCallFailure(t *testing.T) {
	s := newTestServer(t, failTool())

	rr := dispatch(s, http.MethodPost, []byte(`{"type":"tool_call","tool_name":"flaky","parameters":{}}`))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Error executing tool flaky: boom"}`, rr.Body.String())
}

func TestOptionsPreflight(t *testing.T) {
	s := newTestServer(t)

	rr := dispatch(s, http.MethodOptions, []byte(`not even json`))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rr.Header().Get("Access-Control-Allow-Headers"))
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rr := dispatch(s, method, []byte(`{"type":"capabilities"}`))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, method)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, rr.Body.String())
	}
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)

	rr := dispatch(s, http.MethodPost, []byte(`{"type":`))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid request"}`, rr.Body.String())
}

func TestUnknownRequestType(t *testing.T) {
	s := newTestServer(t)

	rr := dispatch(s, http.MethodPost, []byte(`{"type":"subscribe"}`))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Unknown request type: subscribe"}`, rr.Body.String())
}

func TestServerSurvivesToolFailure(t *testing.T) {
	s := newTestServer(t, echoTool(), failTool())

	rr := dispatch(s, http.MethodPost, []byte(`{"type":"tool_call","tool_name":"flaky","parameters":{}}`))
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	rr = dispatch(s, http.MethodPost, []byte(`{"type":"tool_call","tool_name":"echo","parameters":{"ok":true}}`))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"result":{"ok":true}}`, rr.Body.String())
}

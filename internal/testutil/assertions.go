package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is the wire shape of every API response
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// DecodeEnvelope reads and decodes the response body
func DecodeEnvelope(t *testing.T, resp *http.Response) Envelope {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	var env Envelope
	require.NoError(t, json.Unmarshal(body, &env), "failed to unmarshal response: %s", string(body))
	return env
}

// DecodeSuccess verifies a success envelope and decodes its data into v
func DecodeSuccess(t *testing.T, resp *http.Response, v any) Envelope {
	t.Helper()

	env := DecodeEnvelope(t, resp)
	require.True(t, env.Success, "expected success envelope, got %d %q", env.StatusCode, env.Message)
	assert.Equal(t, resp.StatusCode, env.StatusCode, "envelope status mismatch")
	if v != nil {
		require.NoError(t, json.Unmarshal(env.Data, v), "failed to unmarshal data: %s", string(env.Data))
	}
	return env
}

// AssertErrorResponse verifies a failure envelope with the expected status
// and message
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) Envelope {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	env := DecodeEnvelope(t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, expectedStatus, env.StatusCode)
	assert.True(t, len(env.Data) == 0 || string(env.Data) == "null", "failure data must be null, got %s", string(env.Data))
	assert.NotEmpty(t, env.Errors, "failure errors must not be empty")
	if expectedMessage != "" {
		assert.Contains(t, env.Message, expectedMessage, "error message mismatch")
	}
	return env
}

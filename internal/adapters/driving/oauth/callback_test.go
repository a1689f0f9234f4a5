//nolint:noctx // Test file uses http.Get for convenience; context not required in tests
package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, state string) *CallbackServer {
	t.Helper()
	server := NewCallbackServer(0, state)
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Stop() })
	return server
}

func callback(t *testing.T, server *CallbackServer, params url.Values) string {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d%s?%s", server.Port(), CallbackPath, params.Encode()))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestCallbackServer_Start_PicksPort(t *testing.T) {
	server := startServer(t, "s")

	assert.NotZero(t, server.Port())
	assert.Equal(t, fmt.Sprintf("http://localhost:%d/callback", server.Port()), server.RedirectURI())
}

func TestCallbackServer_Start_PortInUse(t *testing.T) {
	first := startServer(t, "s")

	second := NewCallbackServer(first.Port(), "s")
	err := second.Start()

	assert.Error(t, err)
}

func TestCallbackServer_Success(t *testing.T) {
	server := startServer(t, "state-123")

	body := callback(t, server, url.Values{"state": {"state-123"}, "code": {"auth-code"}})
	code, err := server.WaitForCode(waitCtx(t))

	require.NoError(t, err)
	assert.Equal(t, "auth-code", code)
	assert.Contains(t, body, "Authorisation successful")
}

func TestCallbackServer_Failures(t *testing.T) {
	tests := []struct {
		name    string
		params  url.Values
		wantErr string
	}{
		{
			name:    "state mismatch",
			params:  url.Values{"state": {"other"}, "code": {"c"}},
			wantErr: "state mismatch",
		},
		{
			name:    "state is case sensitive",
			params:  url.Values{"state": {"STATE"}, "code": {"c"}},
			wantErr: "state mismatch",
		},
		{
			name:    "missing code",
			params:  url.Values{"state": {"state"}},
			wantErr: "no authorisation code",
		},
		{
			name:    "provider error",
			params:  url.Values{"error": {"access_denied"}, "error_description": {"User <denied>"}},
			wantErr: "access_denied",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := startServer(t, "state")

			body := callback(t, server, tc.params)
			_, err := server.WaitForCode(waitCtx(t))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Contains(t, body, "Authorisation failed")
			assert.NotContains(t, body, "<denied>")
		})
	}
}

func TestCallbackServer_StateMismatchSentinel(t *testing.T) {
	server := startServer(t, "state")

	callback(t, server, url.Values{"state": {"x"}, "code": {"c"}})
	_, err := server.WaitForCode(waitCtx(t))

	assert.True(t, errors.Is(err, ErrStateMismatch))
}

func TestCallbackServer_WaitForCode_ContextDone(t *testing.T) {
	server := startServer(t, "state")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := server.WaitForCode(ctx)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCallbackServer_OnlyGetIsRouted(t *testing.T) {
	server := startServer(t, "state")

	resp, err := http.Post(fmt.Sprintf("http://127.0.0.1:%d/callback", server.Port()), "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(fmt.Sprintf("http://127.0.0.1:%d/other", server.Port()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCallbackServer_StopTwice(t *testing.T) {
	server := NewCallbackServer(0, "s")
	assert.NoError(t, server.Stop())

	require.NoError(t, server.Start())
	assert.NoError(t, server.Stop())
	assert.NoError(t, server.Stop())
}

func TestFindAvailablePort(t *testing.T) {
	port, err := FindAvailablePort(18080, 18180)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, 18080)
	assert.LessOrEqual(t, port, 18180)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	busy := listener.Addr().(*net.TCPAddr).Port

	_, err = FindAvailablePort(busy, busy)
	assert.Error(t, err)
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	require.NoError(t, err)
	b, err := GenerateState()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestResultHTML_Escapes(t *testing.T) {
	page := resultHTML("Done & dusted", "<script>")

	assert.Contains(t, page, "Done &amp; dusted")
	assert.Contains(t, page, "&lt;script&gt;")
	assert.Contains(t, page, "<title>docask</title>")
}

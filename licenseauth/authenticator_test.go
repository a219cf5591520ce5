package licenseauth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	mu          sync.Mutex
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

func newLicenseServer(t *testing.T, tls bool, status int, body string) (*httptest.Server, *capturedRequest, *atomic.Int32) {
	t.Helper()
	captured := &capturedRequest{}
	hits := &atomic.Int32{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		data, _ := io.ReadAll(r.Body)
		captured.mu.Lock()
		defer captured.mu.Unlock()
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.ContentType = r.Header.Get("Content-Type")
		captured.Body = data
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
	var srv *httptest.Server
	if tls {
		srv = httptest.NewTLSServer(handler)
	} else {
		srv = httptest.NewServer(handler)
	}
	t.Cleanup(srv.Close)
	return srv, captured, hits
}

func newTestAuthenticator(t *testing.T, srv *httptest.Server, secure bool, resolver AddressResolver) *Authenticator {
	t.Helper()
	a, err := New(srv.Listener.Addr().String(),
		WithHTTPClient(srv.Client()),
		WithResolver(resolver),
		WithSecureTransport(secure),
		WithTimeout(2*time.Second),
	)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewRequiresHost(t *testing.T) {
	_, err := New("   ")
	require.Error(t, err)
}

func TestNewDefaultsToSecureTransport(t *testing.T) {
	a, err := New("licenses.example.com/")
	require.NoError(t, err)

	cfg := a.Config()
	assert.Equal(t, "licenses.example.com", cfg.Host)
	assert.True(t, cfg.UseSecureTransport)
	assert.Equal(t, "https://licenses.example.com/licenses/auth", a.endpointURL(pathAuth))
}

func TestNewLeavesCallerClientAlone(t *testing.T) {
	hc := &http.Client{Timeout: time.Minute}
	a, err := New("licenses.example.com", WithHTTPClient(hc), WithTimeout(2*time.Second))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	assert.Equal(t, time.Minute, hc.Timeout)
	assert.Equal(t, 2*time.Second, a.resty.GetClient().Timeout)
	assert.NotSame(t, hc, a.resty.GetClient())
}

func TestEnableSecureTransportChangesSchemeOnly(t *testing.T) {
	a, err := New("licenses.example.com:8443")
	require.NoError(t, err)

	a.EnableSecureTransport(false)
	assert.Equal(t, "http://licenses.example.com:8443/licenses/auth", a.endpointURL(pathAuth))
	assert.False(t, a.Config().UseSecureTransport)

	a.EnableSecureTransport(true)
	assert.Equal(t, "https://licenses.example.com:8443/licenses/auth", a.endpointURL(pathAuth))
}

func TestAuthenticateLicenseVerdict(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "valid", body: `{"valid": true}`, want: true},
		{name: "invalid", body: `{"valid": false}`, want: false},
		{name: "extra fields ignored", body: `{"success": true, "valid": true, "message": "ok"}`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newLicenseServer(t, true, http.StatusOK, tt.body)
			a := newTestAuthenticator(t, srv, true, StaticResolver("192.168.1.5"))

			got, err := a.AuthenticateLicense(context.Background(), "ABC-123")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthenticateLicenseRequestShape(t *testing.T) {
	srv, captured, _ := newLicenseServer(t, true, http.StatusOK, `{"valid": true}`)
	a := newTestAuthenticator(t, srv, true, StaticResolver("192.168.1.5"))

	_, err := a.AuthenticateLicense(context.Background(), "ABC-123")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/licenses/auth", captured.Path)
	assert.True(t, strings.HasPrefix(captured.ContentType, "application/json"))
	assert.JSONEq(t, `{"ip": "192.168.1.5", "license": "ABC-123"}`, string(captured.Body))
}

func TestAuthenticateLicenseEscapesLicense(t *testing.T) {
	srv, captured, _ := newLicenseServer(t, true, http.StatusOK, `{"valid": false}`)
	a := newTestAuthenticator(t, srv, true, StaticResolver("10.0.0.7"))

	license := `abc", "ip": "1.1.1.1`
	_, err := a.AuthenticateLicense(context.Background(), license)
	require.NoError(t, err)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(captured.Body, &sent))
	assert.Equal(t, "10.0.0.7", sent["ip"])
	assert.Equal(t, license, sent["license"])
}

func TestAuthenticateLicensePlainHTTP(t *testing.T) {
	srv, captured, _ := newLicenseServer(t, false, http.StatusOK, `{"valid": true}`)
	a := newTestAuthenticator(t, srv, true, StaticResolver("192.168.1.5"))

	a.EnableSecureTransport(false)
	valid, err := a.AuthenticateLicense(context.Background(), "ABC-123")
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, "/licenses/auth", captured.Path)
}

func TestAuthenticateLicenseResponseFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>oops</html>`},
		{name: "empty body", body: ``},
		{name: "missing valid", body: `{"success": false, "error": "Internal Server Error"}`},
		{name: "valid is string", body: `{"valid": "true"}`},
		{name: "valid is null", body: `{"valid": null}`},
		{name: "array", body: `[true]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newLicenseServer(t, true, http.StatusOK, tt.body)
			a := newTestAuthenticator(t, srv, true, StaticResolver("192.168.1.5"))

			valid, err := a.AuthenticateLicense(context.Background(), "ABC-123")
			require.Error(t, err)
			assert.False(t, valid)
			assert.True(t, IsResponseFormat(err), "got %T: %v", err, err)

			var rf *ResponseFormatError
			require.True(t, errors.As(err, &rf))
			assert.Equal(t, tt.body, rf.Body)
		})
	}
}

func TestAuthenticateLicenseResolutionFailureSendsNothing(t *testing.T) {
	srv, _, hits := newLicenseServer(t, true, http.StatusOK, `{"valid": true}`)
	failing := ResolverFunc(func(context.Context) (string, error) {
		return "", ErrNoIPv4Address
	})
	a := newTestAuthenticator(t, srv, true, failing)

	valid, err := a.AuthenticateLicense(context.Background(), "ABC-123")
	require.Error(t, err)
	assert.False(t, valid)
	assert.True(t, IsHostResolution(err))
	assert.ErrorIs(t, err, ErrNoIPv4Address)
	assert.Contains(t, err.Error(), "cannot determine local IPv4 address")
	assert.Equal(t, int32(0), hits.Load())
}

func TestAuthenticateLicenseNetworkErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv, _, _ := newLicenseServer(t, false, http.StatusOK, `{"valid": true}`)
		host := srv.Listener.Addr().String()
		srv.Close()

		a, err := New(host, WithResolver(StaticResolver("192.168.1.5")), WithSecureTransport(false))
		require.NoError(t, err)
		defer a.Close()

		_, err = a.AuthenticateLicense(context.Background(), "ABC-123")
		require.Error(t, err)
		assert.True(t, IsNetwork(err))
		assert.False(t, IsResponseFormat(err))
	})

	t.Run("tls against plain server", func(t *testing.T) {
		srv, _, _ := newLicenseServer(t, false, http.StatusOK, `{"valid": true}`)
		a := newTestAuthenticator(t, srv, true, StaticResolver("192.168.1.5"))

		_, err := a.AuthenticateLicense(context.Background(), "ABC-123")
		require.Error(t, err)
		assert.True(t, IsNetwork(err))
	})

	t.Run("server error status", func(t *testing.T) {
		srv, _, _ := newLicenseServer(t, true, http.StatusInternalServerError, `{"success":false,"error":"Internal Server Error"}`)
		a := newTestAuthenticator(t, srv, true, StaticResolver("192.168.1.5"))

		_, err := a.AuthenticateLicense(context.Background(), "ABC-123")
		require.Error(t, err)
		assert.True(t, IsNetwork(err))

		var status *StatusError
		require.True(t, errors.As(err, &status))
		assert.Equal(t, http.StatusInternalServerError, status.Code)
		assert.Contains(t, status.Body, "Internal Server Error")
	})

	t.Run("context canceled", func(t *testing.T) {
		srv, _, _ := newLicenseServer(t, true, http.StatusOK, `{"valid": true}`)
		a := newTestAuthenticator(t, srv, true, StaticResolver("192.168.1.5"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := a.AuthenticateLicense(ctx, "ABC-123")
		require.Error(t, err)
		assert.True(t, IsNetwork(err))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMaskLicense(t *testing.T) {
	assert.Equal(t, "", maskLicense(""))
	assert.Equal(t, "***", maskLicense("abc"))
	assert.Equal(t, "****", maskLicense("abcd"))
	assert.Equal(t, "***-123", maskLicense("ABC-123"))
}

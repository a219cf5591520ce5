// Package licenseauth checks a license key against a remote licensing
// server. The server binds a license to the IPv4 address it is first used
// from, so every check sends the caller's address along with the key.
package licenseauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	pathAuth = "/licenses/auth"

	DefaultTimeout = 10 * time.Second

	maxErrorBody = 1024
)

// Config is the immutable part of an Authenticator's setup.
type Config struct {
	Host               string
	UseSecureTransport bool
}

type authRequest struct {
	IP      string `json:"ip"`
	License string `json:"license"`
}

type authResponse struct {
	Valid *bool `json:"valid"`
}

type Option func(*Authenticator)

// WithHTTPClient makes the Authenticator send requests through a copy of
// hc. The caller keeps ownership of hc and its transport; Close leaves
// them alone.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *Authenticator) {
		a.httpClient = hc
	}
}

func WithResolver(r AddressResolver) Option {
	return func(a *Authenticator) {
		a.resolver = r
	}
}

func WithTimeout(d time.Duration) Option {
	return func(a *Authenticator) {
		a.timeout = d
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *Authenticator) {
		a.log = l
	}
}

func WithSecureTransport(enabled bool) Option {
	return func(a *Authenticator) {
		a.secure.Store(enabled)
	}
}

// Authenticator validates licenses against one licensing host. It is safe
// for concurrent use; EnableSecureTransport only affects calls that start
// after it returns.
type Authenticator struct {
	host       string
	secure     atomic.Bool
	resolver   AddressResolver
	timeout    time.Duration
	log        zerolog.Logger
	httpClient *http.Client
	resty      *resty.Client
}

func New(host string, opts ...Option) (*Authenticator, error) {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return nil, errors.New("license host is required")
	}

	a := &Authenticator{
		host:    host,
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	a.secure.Store(true)
	for _, opt := range opts {
		opt(a)
	}
	if a.resolver == nil {
		a.resolver = NewHostnameResolver()
	}

	var client *resty.Client
	if a.httpClient != nil {
		hc := *a.httpClient
		client = resty.NewWithClient(&hc)
	} else {
		client = resty.New()
	}
	a.resty = client.
		SetTimeout(a.timeout).
		SetLogger(restyLogger{log: a.log})
	return a, nil
}

// Config returns a snapshot of the current configuration.
func (a *Authenticator) Config() Config {
	return Config{
		Host:               a.host,
		UseSecureTransport: a.secure.Load(),
	}
}

func (a *Authenticator) EnableSecureTransport(enabled bool) {
	a.secure.Store(enabled)
}

// Close releases idle connections held by the Authenticator's own HTTP
// client. A client passed with WithHTTPClient is not touched.
func (a *Authenticator) Close() error {
	if a.httpClient == nil {
		a.resty.GetClient().CloseIdleConnections()
	}
	return nil
}

func (a *Authenticator) endpointURL(path string) string {
	scheme := "https"
	if !a.secure.Load() {
		scheme = "http"
	}
	return scheme + "://" + a.host + path
}

// AuthenticateLicense reports whether the license is valid for this
// machine's IPv4 address.
func (a *Authenticator) AuthenticateLicense(ctx context.Context, license string) (bool, error) {
	ip, err := a.resolver.ResolveIPv4(ctx)
	if err != nil {
		return false, &HostResolutionError{Err: err}
	}

	url := a.endpointURL(pathAuth)
	a.log.Debug().
		Str("url", url).
		Str("ip", ip).
		Str("license", maskLicense(license)).
		Msg("authenticating license")

	resp, err := a.resty.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(&authRequest{IP: ip, License: license}).
		Post(url)
	if err != nil {
		return false, &NetworkError{URL: url, Err: err}
	}
	if !resp.IsSuccess() {
		body := resp.Body()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return false, &NetworkError{URL: url, Err: &StatusError{
			Code: resp.StatusCode(),
			Body: strings.TrimSpace(string(body)),
		}}
	}

	valid, err := parseVerdict(resp.Body())
	if err != nil {
		return false, err
	}

	a.log.Debug().
		Str("license", maskLicense(license)).
		Bool("valid", valid).
		Msg("license verdict")
	return valid, nil
}

func parseVerdict(body []byte) (bool, error) {
	var out authResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return false, &ResponseFormatError{Body: string(body), Err: err}
	}
	if out.Valid == nil {
		return false, &ResponseFormatError{Body: string(body), Err: errors.New(`missing "valid" field`)}
	}
	return *out.Valid, nil
}

// maskLicense keeps the last four characters of a key for log correlation.
func maskLicense(license string) string {
	const visible = 4
	if len(license) <= visible {
		return strings.Repeat("*", len(license))
	}
	return strings.Repeat("*", len(license)-visible) + license[len(license)-visible:]
}

type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug().Msgf(strings.TrimSpace(format), v...)
}

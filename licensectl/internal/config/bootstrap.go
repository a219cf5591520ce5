package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"licensegate/licenseauth"
)

const DefaultTimeout = licenseauth.DefaultTimeout

// Input holds raw flag values; empty fields fall back to the environment.
type Input struct {
	Host     string
	Insecure bool
	Resolver string
	Token    string
	Timeout  time.Duration
}

type Bootstrap struct {
	Host     string
	Secure   bool
	Resolver string
	Token    string
	Timeout  time.Duration
}

func (b Bootstrap) BaseURL() string {
	scheme := "https"
	if !b.Secure {
		scheme = "http"
	}
	return scheme + "://" + b.Host
}

func Load(input Input) (Bootstrap, error) {
	host := firstNonEmpty(input.Host, os.Getenv("LICENSE_HOST"))
	host = strings.TrimRight(host, "/")
	if host == "" {
		return Bootstrap{}, errors.New("license host is required (--host or LICENSE_HOST)")
	}
	if strings.Contains(host, "://") {
		return Bootstrap{}, errors.New("license host must not include a scheme; use --insecure for plain http")
	}

	insecure := input.Insecure
	if !insecure {
		if v := os.Getenv("LICENSE_INSECURE"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Bootstrap{}, errors.New("LICENSE_INSECURE must be a boolean")
			}
			insecure = b
		}
	}

	timeout := input.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return Bootstrap{
		Host:     host,
		Secure:   !insecure,
		Resolver: ResolverName(input.Resolver),
		Token:    firstNonEmpty(input.Token, os.Getenv("LICENSE_TOKEN")),
		Timeout:  timeout,
	}, nil
}

// ResolverName picks the address resolver from the flag, then
// LICENSE_RESOLVER, then the hostname default.
func ResolverName(flag string) string {
	return strings.ToLower(firstNonEmpty(flag, os.Getenv("LICENSE_RESOLVER"), licenseauth.ResolverHostname))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

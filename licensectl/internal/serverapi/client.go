package serverapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	pathAmount        = "/licenses/amount"
	pathCreateLicense = "/licenses/createLicense"
	pathSuspend       = "/licenses/suspend"
	pathDelete        = "/licenses/delete"
	pathClaim         = "/licenses/claim"
	pathActive        = "/licenses/active"
	pathCreateUser    = "/users/createUser"
	pathUserRank      = "/users/getUserRank"
	pathLogin         = "/users/login"
)

// RefusedError is a request the server understood and declined, such as a
// non-admin creating licenses or claiming a license twice.
type RefusedError struct {
	Msg string
}

func (e *RefusedError) Error() string {
	if e.Msg == "" {
		return "request refused"
	}
	return e.Msg
}

func IsRefused(err error) bool {
	var r *RefusedError
	return errors.As(err, &r)
}

type Client struct {
	resty *resty.Client
}

type envelope struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Error    string `json:"error"`
	License  string `json:"license"`
	Licenses int64  `json:"licenses"`
	Token    string `json:"token"`
	Rank     int    `json:"rank"`
	Active   bool   `json:"active"`
}

func New(baseURL string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{resty: client}
}

func (c *Client) CountLicenses(ctx context.Context) (int64, error) {
	env, err := c.do(ctx, http.MethodGet, pathAmount, nil)
	if err != nil {
		return 0, err
	}
	return env.Licenses, nil
}

func (c *Client) CreateLicense(ctx context.Context, token string, durationDays int) (string, error) {
	env, err := c.do(ctx, http.MethodPost, pathCreateLicense, map[string]any{
		"authToken": token,
		"duration":  durationDays,
	})
	if err != nil {
		return "", err
	}
	return env.License, nil
}

func (c *Client) SuspendLicense(ctx context.Context, token, license string) error {
	_, err := c.do(ctx, http.MethodPost, pathSuspend, map[string]any{
		"authToken": token,
		"license":   license,
	})
	return err
}

func (c *Client) DeleteLicense(ctx context.Context, token, license string) error {
	_, err := c.do(ctx, http.MethodDelete, pathDelete, map[string]any{
		"authToken": token,
		"license":   license,
	})
	return err
}

func (c *Client) ClaimLicense(ctx context.Context, license, ownerID string) error {
	_, err := c.do(ctx, http.MethodPost, pathClaim, map[string]any{
		"license": license,
		"owner":   ownerID,
	})
	return err
}

func (c *Client) LicenseActive(ctx context.Context, license string) (bool, error) {
	env, err := c.do(ctx, http.MethodPost, pathActive, map[string]any{"license": license})
	if err != nil {
		return false, err
	}
	return env.Active, nil
}

func (c *Client) CreateUser(ctx context.Context, username, email, password string) (string, error) {
	env, err := c.do(ctx, http.MethodPost, pathCreateUser, map[string]any{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	return env.Token, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	env, err := c.do(ctx, http.MethodPost, pathLogin, map[string]any{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	return env.Token, nil
}

func (c *Client) UserRank(ctx context.Context, token string) (int, error) {
	env, err := c.do(ctx, http.MethodPost, pathUserRank, map[string]any{"token": token})
	if err != nil {
		return 0, err
	}
	return env.Rank, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (envelope, error) {
	var ok, failed envelope
	req := c.resty.R().
		SetContext(ctx).
		SetResult(&ok).
		SetError(&failed)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return envelope{}, err
	}
	if resp.IsError() {
		if failed.Error != "" {
			return envelope{}, fmt.Errorf("license server %s: %s", resp.Status(), failed.Error)
		}
		return envelope{}, fmt.Errorf("license server %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}
	if !ok.Success {
		return envelope{}, &RefusedError{Msg: firstNonEmpty(ok.Message, ok.Error)}
	}
	return ok, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
